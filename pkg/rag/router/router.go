package router

import (
	"math-agent-be/pkg/rag/state"
)

// Route is the branch taken after knowledge base retrieval.
type Route string

const (
	RouteGenerate  Route = "GENERATE"
	RouteWebSearch Route = "WEB_SEARCH"
)

// Outcome is what a stage reports back to the state machine.
type Outcome string

const (
	OutcomeOK        Outcome = "OK"
	OutcomeContext   Outcome = "CONTEXT"
	OutcomeNoContext Outcome = "NO_CONTEXT"
	OutcomeError     Outcome = "ERROR"
)

type transitionKey struct {
	stage   state.Stage
	outcome Outcome
}

// transitions is the whole pipeline. A web search that succeeds with no results
// still proceeds to generation; the solver answers from its own knowledge.
var transitions = map[transitionKey]state.Stage{
	{state.StageStart, OutcomeOK}: state.StageRetrieveKB,

	{state.StageRetrieveKB, OutcomeContext}:   state.StageGenerate,
	{state.StageRetrieveKB, OutcomeNoContext}: state.StageWebSearch,
	{state.StageRetrieveKB, OutcomeError}:     state.StageFailed,

	{state.StageWebSearch, OutcomeContext}:   state.StageGenerate,
	{state.StageWebSearch, OutcomeNoContext}: state.StageGenerate,
	{state.StageWebSearch, OutcomeError}:     state.StageFailed,

	{state.StageGenerate, OutcomeOK}:    state.StageDone,
	{state.StageGenerate, OutcomeError}: state.StageFailed,
}

// Decide picks the branch after retrieval. It looks at nothing but the trimmed context.
func Decide(s *state.ConversationState) Route {
	if s.HasContext() {
		return RouteGenerate
	}
	return RouteWebSearch
}

// ContextOutcome converts the presence of context into a stage outcome.
func ContextOutcome(s *state.ConversationState) Outcome {
	if Decide(s) == RouteGenerate {
		return OutcomeContext
	}
	return OutcomeNoContext
}

// Next looks up the stage following (stage, outcome). ok is false for pairs
// the pipeline never produces, including anything out of a terminal stage.
func Next(stage state.Stage, outcome Outcome) (state.Stage, bool) {
	next, ok := transitions[transitionKey{stage, outcome}]
	return next, ok
}
