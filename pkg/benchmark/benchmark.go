package benchmark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"math-agent-be/pkg/dataset"
)

var (
	optionPattern   = regexp.MustCompile(`(?i)The correct option is:\s*(\d)`)
	trailingPattern = regexp.MustCompile(`\b[1-4]\b$`)
)

// ParseFinalAnswer extracts the chosen option from an answer. It prefers the
// "The correct option is: N" line and falls back to a lone 1-4 at the very end.
func ParseFinalAnswer(text string) string {
	if text == "" {
		return ""
	}
	if m := optionPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return trailingPattern.FindString(strings.TrimSpace(text))
}

type Question struct {
	Text          string
	CorrectOption string
}

// Questions maps dataset records to questions, accepting both snake_case and
// the "Question Text"/"Correct Option" column names.
func Questions(records []dataset.Record) []Question {
	out := make([]Question, 0, len(records))
	for _, r := range records {
		q := Question{
			Text:          r.String("question", "Question Text"),
			CorrectOption: r.String("correct_option", "Correct Option"),
		}
		if q.Text == "" {
			continue
		}
		out = append(out, q)
	}
	return out
}

type Outcome struct {
	Question Question
	Answer   string
	Parsed   string
	Correct  bool
	Err      error
}

type Report struct {
	Total   int
	Correct int
}

func (r Report) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total) * 100
}

// Client sends questions to a running agent.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type queryEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Answer string `json:"answer"`
	} `json:"data"`
}

func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	body, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/query", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var env queryEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, string(raw))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, env.Message)
	}
	return env.Data.Answer, nil
}

// Run asks every question in order. onOutcome is called after each one.
// A failed request counts as incorrect.
func Run(ctx context.Context, client *Client, questions []Question, onOutcome func(int, Outcome)) Report {
	report := Report{Total: len(questions)}
	for i, q := range questions {
		if ctx.Err() != nil {
			break
		}
		o := Outcome{Question: q}
		o.Answer, o.Err = client.Ask(ctx, q.Text)
		if o.Err == nil {
			o.Parsed = ParseFinalAnswer(o.Answer)
			o.Correct = o.Parsed != "" && q.CorrectOption != "" && o.Parsed == q.CorrectOption
		}
		if o.Correct {
			report.Correct++
		}
		if onOutcome != nil {
			onOutcome(i, o)
		}
	}
	return report
}
