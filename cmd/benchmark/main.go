package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"math-agent-be/pkg/benchmark"
	"math-agent-be/pkg/dataset"

	"github.com/fatih/color"
)

func main() {
	path := flag.String("file", "data/benchmark.jsonl", "JSON Lines file of {question, correct_option}")
	baseURL := flag.String("url", "http://localhost:5000", "agent base URL")
	limit := flag.Int("limit", 50, "number of questions to ask, 0 for all")
	timeout := flag.Duration("timeout", 120*time.Second, "per question timeout")
	flag.Parse()

	f, err := os.Open(*path)
	if err != nil {
		color.Red("Failed to open dataset: %v", err)
		os.Exit(1)
	}
	records, err := dataset.Load(f)
	f.Close()
	if err != nil {
		color.Red("Failed to read dataset: %v", err)
		os.Exit(1)
	}

	questions := benchmark.Questions(records)
	if *limit > 0 && len(questions) > *limit {
		questions = questions[:*limit]
	}
	if len(questions) == 0 {
		color.Yellow("Dataset is empty.")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	header := color.New(color.FgCyan, color.Bold)
	header.Printf("Starting benchmark with %d questions...\n", len(questions))

	report := benchmark.Run(ctx, benchmark.NewClient(*baseURL, *timeout), questions, func(i int, o benchmark.Outcome) {
		header.Printf("\n--- Question #%d/%d ---\n", i+1, len(questions))
		fmt.Printf("Query: %s\n", o.Question.Text)
		switch {
		case o.Err != nil:
			color.Yellow("API call failed: %v", o.Err)
		case o.Correct:
			color.Green("Result: CORRECT")
		default:
			color.Red("Result: INCORRECT (Agent: '%s', Truth: '%s')", o.Parsed, o.Question.CorrectOption)
		}
	})

	header.Println("\n--- Benchmark Complete ---")
	fmt.Printf("Total Questions: %d\n", report.Total)
	fmt.Printf("Correct Answers: %d\n", report.Correct)
	fmt.Printf("Accuracy: %.2f%%\n", report.Accuracy())
}
