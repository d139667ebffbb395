// Package ragerr holds the error values shared by the pipeline, the service layer and the HTTP layer.
package ragerr

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrOutOfScope     = errors.New("This agent only answers math-related questions.")
	ErrNoConversation = errors.New("No active conversation to give feedback on.")
	ErrEmptyFeedback  = errors.New("feedback must not be empty")

	// ErrConversationChanged means a newer question replaced the conversation being refined.
	ErrConversationChanged = errors.New("A newer question replaced this conversation. Please send the feedback again.")
)

// CollaboratorFailure wraps an error raised by an external collaborator
// (embedding model, vector store, web search, LLM) during a pipeline stage.
type CollaboratorFailure struct {
	Stage string
	Err   error
}

func (e *CollaboratorFailure) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, Sanitize(e.Err.Error()))
}

func (e *CollaboratorFailure) Unwrap() error {
	return e.Err
}

func Collaborator(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &CollaboratorFailure{Stage: stage, Err: err}
}

// PipelineFailure is returned when the answering pipeline ends in FAILED.
// Message is the stage error recorded on the conversation state.
type PipelineFailure struct {
	Message string
}

func (e *PipelineFailure) Error() string {
	return e.Message
}

// IsUsageError reports whether err is caused by the caller rather than by a collaborator.
func IsUsageError(err error) bool {
	return errors.Is(err, ErrOutOfScope) ||
		errors.Is(err, ErrNoConversation) ||
		errors.Is(err, ErrEmptyFeedback)
}

var (
	secretParam = regexp.MustCompile(`(?i)((?:api_?key|key|token)=)[^&\s"]+`)
	secretField = regexp.MustCompile(`(?i)("(?:api_?key|key|token)"\s*:\s*")(?:[^"\\]|\\.)*"`)
)

// Sanitize redacts credentials that providers sometimes echo back in URLs or JSON bodies.
func Sanitize(msg string) string {
	msg = secretParam.ReplaceAllString(msg, "${1}REDACTED")
	return secretField.ReplaceAllString(msg, `${1}REDACTED"`)
}
