package state

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Stage is a step of the answering pipeline.
type Stage string

const (
	StageStart      Stage = "START"
	StageRetrieveKB Stage = "RETRIEVE_KB"
	StageWebSearch  Stage = "WEB_SEARCH"
	StageGenerate   Stage = "GENERATE"
	StageDone       Stage = "DONE"
	StageFailed     Stage = "FAILED"
)

// Terminal reports whether no further transition is possible from s.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

// Source records where the context used for an answer came from.
type Source int

const (
	SourceNone Source = iota
	SourceKnowledgeBase
	SourceWebSearch
)

var sourceNames = map[Source]string{
	SourceNone:          "N/A",
	SourceKnowledgeBase: "Knowledge Base",
	SourceWebSearch:     "Web Search",
}

func (s Source) String() string {
	if name, ok := sourceNames[s]; ok {
		return name
	}
	return sourceNames[SourceNone]
}

func (s Source) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Source) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseSource(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func ParseSource(name string) (Source, error) {
	for src, n := range sourceNames {
		if n == name {
			return src, nil
		}
	}
	return SourceNone, fmt.Errorf("unknown source %q", name)
}

// ConversationState is the per-request record threaded through the pipeline.
// It is never shared between requests.
type ConversationState struct {
	originalQuestion string

	Context string
	Source  Source
	Answer  string
	Error   string
	Stage   Stage
}

func New(question string) *ConversationState {
	return &ConversationState{
		originalQuestion: question,
		Source:           SourceNone,
		Stage:            StageStart,
	}
}

func (s *ConversationState) OriginalQuestion() string {
	return s.originalQuestion
}

// ApplyContext records retrieved context. Whitespace-only text is stored as no context.
// A knowledge base source is only kept with non-empty context; a web source is kept
// for any successful search. A non-empty context is never replaced.
func (s *ConversationState) ApplyContext(text string, src Source) {
	if s.HasContext() {
		return
	}
	s.Context = strings.TrimSpace(text)
	if s.Context == "" && src == SourceKnowledgeBase {
		src = SourceNone
	}
	s.Source = src
}

func (s *ConversationState) HasContext() bool {
	return strings.TrimSpace(s.Context) != ""
}

// SetAnswer is ignored once the state has failed.
func (s *ConversationState) SetAnswer(answer string) {
	if s.Failed() {
		return
	}
	s.Answer = answer
}

func (s *ConversationState) Fail(msg string) {
	if msg == "" {
		msg = "unknown error"
	}
	s.Error = msg
	s.Answer = ""
	s.Stage = StageFailed
}

func (s *ConversationState) Failed() bool {
	return s.Error != ""
}
