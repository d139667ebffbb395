package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"math-agent-be/internal/dto"
	"math-agent-be/internal/pkg/logger"
	"math-agent-be/internal/repository/memory"
	"math-agent-be/pkg/events"
	"math-agent-be/pkg/metrics"
	"math-agent-be/pkg/rag/guardrail"
	"math-agent-be/pkg/rag/ragerr"
	"math-agent-be/pkg/rag/state"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGuardrail struct {
	inScope bool
	err     error
}

func (f *fakeGuardrail) Precheck(ctx context.Context, question string) (bool, error) {
	return f.inScope, f.err
}

func (f *fakeGuardrail) Postcheck(answer string) string {
	return guardrail.Postcheck(answer)
}

type fakePipeline struct {
	answer  string
	source  state.Source
	failure string
	calls   int
}

func (f *fakePipeline) Execute(ctx context.Context, question string) *state.ConversationState {
	f.calls++
	s := state.New(question)
	if f.failure != "" {
		s.Fail(f.failure)
		return s
	}
	s.Source = f.source
	s.SetAnswer(f.answer)
	s.Stage = state.StageDone
	return s
}

type fakeRefiner struct {
	answer string
	err    error
	calls  int
	prior  string
	during func()
}

func (f *fakeRefiner) Refine(ctx context.Context, question, priorAnswer, feedback string) (string, error) {
	f.calls++
	f.prior = priorAnswer
	if f.during != nil {
		f.during()
	}
	return f.answer, f.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type agentFixture struct {
	guard     *fakeGuardrail
	pipeline  *fakePipeline
	refiner   *fakeRefiner
	repo      *memory.ConversationRepository
	publisher *recordingPublisher
	metrics   *metrics.Recorder
	service   IAgentService
}

func newAgentFixture() *agentFixture {
	f := &agentFixture{
		guard:     &fakeGuardrail{inScope: true},
		pipeline:  &fakePipeline{answer: "**Step 1**: x = 2", source: state.SourceKnowledgeBase},
		refiner:   &fakeRefiner{answer: "## Better\nx = 2 because 2+2=4"},
		repo:      memory.NewConversationRepository(),
		publisher: &recordingPublisher{},
		metrics:   metrics.New(prometheus.NewRegistry()),
	}
	f.service = NewAgentService(f.guard, f.pipeline, f.refiner, f.repo, f.publisher, f.metrics, logger.NewNopLogger())
	return f
}

func TestQueryAnswersAndRemembersConversation(t *testing.T) {
	f := newAgentFixture()

	res, err := f.service.Query(context.Background(), &dto.QueryRequest{Question: "  solve x+2=4 "})
	require.NoError(t, err)

	assert.Equal(t, "Step 1: x = 2", res.Answer)
	assert.Equal(t, state.SourceKnowledgeBase, res.Source)
	assert.True(t, res.FeedbackNeeded)

	conv, err := f.repo.Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Equal(t, "solve x+2=4", conv.Question)
	assert.Equal(t, "Step 1: x = 2", conv.Answer)
	assert.Equal(t, []string{events.TypeQueryAnswered}, f.publisher.types())
}

func TestQueryOutOfScopeSkipsPipeline(t *testing.T) {
	f := newAgentFixture()
	f.guard.inScope = false

	_, err := f.service.Query(context.Background(), &dto.QueryRequest{Question: "who won the world cup"})
	assert.ErrorIs(t, err, ragerr.ErrOutOfScope)
	assert.Equal(t, 0, f.pipeline.calls)

	conv, _ := f.repo.Get(context.Background())
	assert.Nil(t, conv)
}

func TestQueryClassifierFailureIsNotAcceptance(t *testing.T) {
	f := newAgentFixture()
	f.guard.err = ragerr.Collaborator("classification", errors.New("503"))

	_, err := f.service.Query(context.Background(), &dto.QueryRequest{Question: "2+2"})

	var cf *ragerr.CollaboratorFailure
	assert.ErrorAs(t, err, &cf)
	assert.Equal(t, 0, f.pipeline.calls)
}

func TestQueryPipelineFailure(t *testing.T) {
	f := newAgentFixture()
	f.pipeline.failure = "Web search failed: timeout"

	_, err := f.service.Query(context.Background(), &dto.QueryRequest{Question: "integrate sin x"})

	var pf *ragerr.PipelineFailure
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, "Web search failed: timeout", pf.Message)
	assert.Equal(t, []string{events.TypeQueryFailed}, f.publisher.types())

	conv, _ := f.repo.Get(context.Background())
	assert.Nil(t, conv, "failed queries are not remembered")
}

func TestQueryPublishFailureDoesNotFailRequest(t *testing.T) {
	f := newAgentFixture()
	f.publisher.err = errors.New("nats down")

	res, err := f.service.Query(context.Background(), &dto.QueryRequest{Question: "2+2"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Answer)
}

func TestFeedbackWithoutConversation(t *testing.T) {
	f := newAgentFixture()

	_, err := f.service.Feedback(context.Background(), &dto.FeedbackRequest{Feedback: "explain more"})
	assert.ErrorIs(t, err, ragerr.ErrNoConversation)
	assert.Equal(t, 0, f.refiner.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Feedback.WithLabelValues("rejected")))
}

func TestFeedbackEmpty(t *testing.T) {
	f := newAgentFixture()
	_, err := f.service.Query(context.Background(), &dto.QueryRequest{Question: "2+2"})
	require.NoError(t, err)

	_, err = f.service.Feedback(context.Background(), &dto.FeedbackRequest{Feedback: "   "})
	assert.ErrorIs(t, err, ragerr.ErrEmptyFeedback)
	assert.Equal(t, 0, f.refiner.calls)
}

func TestFeedbackRefinesLastAnswer(t *testing.T) {
	f := newAgentFixture()
	_, err := f.service.Query(context.Background(), &dto.QueryRequest{Question: "solve x+2=4"})
	require.NoError(t, err)

	res, err := f.service.Feedback(context.Background(), &dto.FeedbackRequest{Feedback: "show the check"})
	require.NoError(t, err)

	assert.Equal(t, "Feedback received and answer updated.", res.Message)
	assert.Equal(t, "Better\nx = 2 because 2+2=4", res.RefinedAnswer)
	assert.Equal(t, "Step 1: x = 2", f.refiner.prior)

	conv, err := f.repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, res.RefinedAnswer, conv.Answer)
	assert.Equal(t, "solve x+2=4", conv.Question)
	assert.Equal(t, []string{events.TypeQueryAnswered, events.TypeAnswerRefined}, f.publisher.types())
}

func TestFeedbackRefinementFailureKeepsPriorAnswer(t *testing.T) {
	f := newAgentFixture()
	_, err := f.service.Query(context.Background(), &dto.QueryRequest{Question: "solve x+2=4"})
	require.NoError(t, err)
	f.refiner.err = ragerr.Collaborator("refinement", errors.New("model overloaded"))

	_, err = f.service.Feedback(context.Background(), &dto.FeedbackRequest{Feedback: "more detail"})
	assert.Error(t, err)

	conv, _ := f.repo.Get(context.Background())
	assert.Equal(t, "Step 1: x = 2", conv.Answer)
}

func TestFeedbackDoesNotRefineNewerQuestion(t *testing.T) {
	f := newAgentFixture()
	ctx := context.Background()
	_, err := f.service.Query(ctx, &dto.QueryRequest{Question: "solve x+2=4"})
	require.NoError(t, err)

	f.refiner.during = func() {
		f.pipeline.answer = "The derivative is 2x."
		_, err := f.service.Query(ctx, &dto.QueryRequest{Question: "derivative of x^2"})
		require.NoError(t, err)
	}

	_, err = f.service.Feedback(ctx, &dto.FeedbackRequest{Feedback: "show the check"})
	assert.ErrorIs(t, err, ragerr.ErrConversationChanged)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Feedback.WithLabelValues("conflict")))

	conv, err := f.repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "derivative of x^2", conv.Question)
	assert.Equal(t, "The derivative is 2x.", conv.Answer)
	assert.NotContains(t, f.publisher.types(), events.TypeAnswerRefined)
}

func TestLastConversation(t *testing.T) {
	f := newAgentFixture()

	res, err := f.service.LastConversation(context.Background())
	require.NoError(t, err)
	assert.Nil(t, res)

	_, err = f.service.Query(context.Background(), &dto.QueryRequest{Question: "2+2"})
	require.NoError(t, err)

	res, err = f.service.LastConversation(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "2+2", res.Question)
	assert.Equal(t, state.SourceKnowledgeBase, res.Source)
}
