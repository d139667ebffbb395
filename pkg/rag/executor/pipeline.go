package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"math-agent-be/internal/pkg/logger"
	"math-agent-be/pkg/metrics"
	"math-agent-be/pkg/rag/ragerr"
	"math-agent-be/pkg/rag/router"
	"math-agent-be/pkg/rag/search"
	"math-agent-be/pkg/rag/state"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const module = "RAG-PIPELINE"

type Solver interface {
	Solve(ctx context.Context, question, context string) (string, error)
}

type Config struct {
	// FailOnKBError ends the request when the knowledge base cannot be reached.
	// When false the error is logged and the pipeline falls back to web search.
	FailOnKBError bool
}

// PipelineExecutor runs START -> RETRIEVE_KB -> [WEB_SEARCH ->] GENERATE -> DONE,
// or stops in FAILED at the first stage error. Transitions come from router.Next.
type PipelineExecutor struct {
	knowledge search.ContextSource
	web       search.ContextSource
	solver    Solver
	config    Config
	metrics   *metrics.Recorder
	logger    logger.ILogger
}

func NewPipelineExecutor(
	knowledge search.ContextSource,
	web search.ContextSource,
	solver Solver,
	config Config,
	recorder *metrics.Recorder,
	logger logger.ILogger,
) *PipelineExecutor {
	return &PipelineExecutor{
		knowledge: knowledge,
		web:       web,
		solver:    solver,
		config:    config,
		metrics:   recorder,
		logger:    logger,
	}
}

// Execute always returns a state in DONE or FAILED. Failures are reported
// through state.Error, never as a Go error.
func (p *PipelineExecutor) Execute(ctx context.Context, question string) *state.ConversationState {
	s := state.New(question)
	visited := make(map[state.Stage]bool)

	ctx, span := otel.Tracer("math-agent/pipeline").Start(ctx, "pipeline.execute")
	defer span.End()

	for !s.Stage.Terminal() {
		stage := s.Stage
		if visited[stage] {
			s.Fail(fmt.Sprintf("stage %s entered twice", stage))
			break
		}
		visited[stage] = true

		started := time.Now()
		outcome, failure := p.runStage(ctx, s)
		p.metrics.ObserveStage(string(stage), string(outcome), time.Since(started))

		next, ok := router.Next(stage, outcome)
		if !ok {
			s.Fail(fmt.Sprintf("no transition from %s on %s", stage, outcome))
			break
		}

		if next == state.StageFailed {
			s.Fail(failure)
			break
		}
		s.Stage = next
	}

	span.SetAttributes(
		attribute.String("pipeline.stage", string(s.Stage)),
		attribute.String("pipeline.source", s.Source.String()),
	)
	if s.Failed() {
		span.SetStatus(codes.Error, s.Error)
		p.logger.Error(module, "Pipeline failed", map[string]interface{}{
			"error": s.Error,
		})
	} else {
		p.logger.Info(module, "Pipeline completed", map[string]interface{}{
			"source":        s.Source.String(),
			"answer_length": len(s.Answer),
		})
	}
	p.metrics.RecordResult(string(s.Stage), s.Source.String())

	return s
}

func (p *PipelineExecutor) runStage(ctx context.Context, s *state.ConversationState) (router.Outcome, string) {
	switch s.Stage {
	case state.StageStart:
		p.logger.Debug(module, "Starting pipeline", map[string]interface{}{
			"question": truncate(s.OriginalQuestion(), 80),
		})
		return router.OutcomeOK, ""

	case state.StageRetrieveKB:
		return p.retrieveKnowledge(ctx, s)

	case state.StageWebSearch:
		return p.searchWeb(ctx, s)

	case state.StageGenerate:
		return p.generate(ctx, s)
	}

	return router.OutcomeError, fmt.Sprintf("unknown stage %s", s.Stage)
}

func (p *PipelineExecutor) retrieveKnowledge(ctx context.Context, s *state.ConversationState) (router.Outcome, string) {
	ctx, span := otel.Tracer("math-agent/pipeline").Start(ctx, "pipeline.retrieve_kb")
	defer span.End()

	text, src, err := p.knowledge.Retrieve(ctx, s.OriginalQuestion())
	if err != nil {
		span.RecordError(err)
		if p.config.FailOnKBError {
			return router.OutcomeError, "Knowledge base retrieval failed: " + describe(err)
		}
		p.logger.Warn(module, "Knowledge base unavailable, falling back to web search", map[string]interface{}{
			"error": describe(err),
		})
		text, src = "", state.SourceNone
	}

	s.ApplyContext(text, src)

	route := router.Decide(s)
	p.metrics.RecordRoute(string(route))
	p.logger.Debug(module, "Route decided", map[string]interface{}{
		"route": string(route),
	})

	return router.ContextOutcome(s), ""
}

func (p *PipelineExecutor) searchWeb(ctx context.Context, s *state.ConversationState) (router.Outcome, string) {
	ctx, span := otel.Tracer("math-agent/pipeline").Start(ctx, "pipeline.web_search")
	defer span.End()

	text, src, err := p.web.Retrieve(ctx, s.OriginalQuestion())
	if err != nil {
		span.RecordError(err)
		return router.OutcomeError, "Web search failed: " + describe(err)
	}

	s.ApplyContext(text, src)
	return router.ContextOutcome(s), ""
}

func (p *PipelineExecutor) generate(ctx context.Context, s *state.ConversationState) (router.Outcome, string) {
	ctx, span := otel.Tracer("math-agent/pipeline").Start(ctx, "pipeline.generate")
	defer span.End()

	answer, err := p.solver.Solve(ctx, s.OriginalQuestion(), s.Context)
	if err != nil {
		span.RecordError(err)
		return router.OutcomeError, "Generation failed: " + describe(err)
	}

	s.SetAnswer(answer)
	return router.OutcomeOK, ""
}

// describe returns the underlying failure text with credentials redacted.
func describe(err error) string {
	var cf *ragerr.CollaboratorFailure
	if errors.As(err, &cf) {
		return ragerr.Sanitize(cf.Err.Error())
	}
	return ragerr.Sanitize(err.Error())
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
