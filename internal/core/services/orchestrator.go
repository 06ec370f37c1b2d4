package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/logger"
)

const tracerName = "github.com/custodia-labs/coursemate/internal/core/services"

// loopState names the phases of one query.
type loopState string

const (
	stateAwaitingModel loopState = "awaiting_model"
	stateToolDecision  loopState = "tool_decision"
	stateToolExecuting loopState = "tool_executing"
	stateAwaitingFinal loopState = "awaiting_model_final"
	stateDone          loopState = "done"
)

// Turn is the outcome of one orchestrated query.
type Turn struct {
	// Text is the final answer.
	Text string

	// Citations back the answer; empty when no search produced rows.
	Citations []domain.Citation

	// ModelCalls is 1 for direct answers and 2 when tools ran.
	ModelCalls int

	// ToolCalls is the number of tool invocations executed.
	ToolCalls int
}

// Orchestrator binds model reasoning to at most one retrieval round-trip.
type Orchestrator struct {
	model  driven.ModelClient
	tracer trace.Tracer
}

// NewOrchestrator creates an orchestrator over the given model client.
func NewOrchestrator(model driven.ModelClient) *Orchestrator {
	return &Orchestrator{
		model:  model,
		tracer: otel.Tracer(tracerName),
	}
}

// BuildSystemDirective appends rendered conversation history to the base directive.
func BuildSystemDirective(base, history string) string {
	if history == "" {
		return base
	}
	return base + "\n\nPrevious conversation:\n" + history
}

// Run answers query. The first model call offers every tool in tools; when
// the model requests tools, every invocation is executed in order and a
// second call without tool definitions produces the answer. Model failures
// and tool dependency faults are returned as errors.
func (o *Orchestrator) Run(ctx context.Context, tools *ToolRegistry, system, query string) (*Turn, error) {
	if o.model == nil {
		return nil, domain.ErrLLMUnavailable
	}

	ctx, span := o.tracer.Start(ctx, "orchestrator.run",
		trace.WithAttributes(attribute.String("model", o.model.ModelName())))
	defer span.End()

	logger.Section("Query Orchestration")
	logger.Debug("Query: %q", query)

	turn, err := o.run(ctx, span, tools, system, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("model_calls", turn.ModelCalls),
		attribute.Int("tool_calls", turn.ToolCalls),
	)
	return turn, nil
}

func (o *Orchestrator) run(
	ctx context.Context, span trace.Span, tools *ToolRegistry, system, query string,
) (*Turn, error) {
	state := stateAwaitingModel
	transition := func(next loopState) {
		logger.Transition("query", string(state), string(next))
		span.AddEvent(string(next))
		state = next
	}

	userTurn := domain.UserText(query)
	first := domain.ModelRequest{
		System:   system,
		Messages: []domain.Message{userTurn},
	}
	if tools != nil && tools.Len() > 0 {
		first.Tools = tools.Definitions()
	}

	resp, err := o.call(ctx, first, 1)
	if err != nil {
		return nil, err
	}
	turn := &Turn{ModelCalls: 1}

	transition(stateToolDecision)
	if !resp.WantsTools() || tools == nil {
		transition(stateDone)
		turn.Text = resp.Text()
		return turn, nil
	}

	transition(stateToolExecuting)
	invocations := resp.ToolInvocations()
	results := make([]domain.ContentBlock, 0, len(invocations))
	var citations []domain.Citation

	for _, inv := range invocations {
		out, err := o.execute(ctx, tools, inv)
		if err != nil {
			tools.ResetCitations()
			return nil, err
		}
		if len(out.Citations) > 0 {
			citations = out.Citations
		}
		results = append(results, domain.ToolResultBlock(inv.ID, out.Text))
	}
	turn.ToolCalls = len(invocations)

	transition(stateAwaitingFinal)
	final := domain.ModelRequest{
		System: system,
		Messages: []domain.Message{
			userTurn,
			{Role: domain.RoleAssistant, Content: resp.Content},
			{Role: domain.RoleUser, Content: results},
		},
	}

	resp, err = o.call(ctx, final, 2)
	tools.ResetCitations()
	if err != nil {
		return nil, err
	}
	turn.ModelCalls = 2

	transition(stateDone)
	turn.Text = resp.Text()
	turn.Citations = citations
	return turn, nil
}

func (o *Orchestrator) call(ctx context.Context, req domain.ModelRequest, n int) (*domain.ModelResponse, error) {
	ctx, span := o.tracer.Start(ctx, "model.call", trace.WithAttributes(
		attribute.Int("call", n),
		attribute.Int("tools", len(req.Tools)),
	))
	defer span.End()

	logger.Debug("Model call %d: %d messages, %d tools", n, len(req.Messages), len(req.Tools))
	resp, err := o.model.Call(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("model call %d: %w", n, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("model call %d: empty response", n)
	}
	span.SetAttributes(attribute.String("stop_reason", string(resp.StopReason)))
	return resp, nil
}

func (o *Orchestrator) execute(
	ctx context.Context, tools *ToolRegistry, inv domain.ToolInvocation,
) (domain.ToolOutput, error) {
	ctx, span := o.tracer.Start(ctx, "tool.execute", trace.WithAttributes(
		attribute.String("tool", inv.Name),
		attribute.String("tool_use_id", inv.ID),
	))
	defer span.End()

	logger.Debug("Executing tool %s (%s)", inv.Name, inv.ID)
	out, err := tools.Execute(ctx, inv.Name, inv.Arguments)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.ToolOutput{}, fmt.Errorf("tool %s: %w", inv.Name, err)
	}
	return out, nil
}
