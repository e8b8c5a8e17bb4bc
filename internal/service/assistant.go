package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"egile/internal/config"
	"egile/internal/engine"
	"egile/internal/metrics"
	"egile/internal/model"
)

// Source labels for ChatResponse.Source.
const (
	SourcePrimary  = "primary"
	SourceFallback = "fallback"
)

// InterpretSink records classification outcomes for later analysis. The
// Postgres repository implements it; nil disables logging.
type InterpretSink interface {
	LogInterpretation(ctx context.Context, entry model.InterpretLog) error
}

// Assistant orchestrates one chat turn: classify the message with the AI
// when available, fall back to the rule engine when it is not (or when its
// answer cannot be trusted), dispatch actionable intents against the catalog
// and render the reply.
type Assistant struct {
	ai         AIClient // nil or disabled means fallback-only
	engine     *engine.Engine
	resolver   engine.ProductResolver
	dispatcher *Dispatcher
	sink       InterpretSink
	cfg        config.EngineConfig
}

// NewAssistant wires the orchestrator. ai and sink may be nil.
func NewAssistant(ai AIClient, eng *engine.Engine, resolver engine.ProductResolver, dispatcher *Dispatcher, sink InterpretSink, cfg config.EngineConfig) *Assistant {
	if cfg.PrimaryMinConfidence == 0 {
		cfg.PrimaryMinConfidence = 0.7
	}
	return &Assistant{
		ai:         ai,
		engine:     eng,
		resolver:   resolver,
		dispatcher: dispatcher,
		sink:       sink,
		cfg:        cfg,
	}
}

// ProcessMessage runs one full turn and always produces a response: every
// classification failure mode ends in the rule engine, which cannot fail.
func (a *Assistant) ProcessMessage(ctx context.Context, message string) *model.ChatResponse {
	started := time.Now()

	intent, source := a.classify(ctx, message)

	var result *model.ActionResult
	if intent.RequiresAction {
		result = a.dispatcher.Dispatch(ctx, intent)
	}
	reply := RenderReply(intent, result)

	took := time.Since(started)
	metrics.ObserveChatTurn(source, took)

	resp := &model.ChatResponse{
		Reply:     reply,
		Intent:    intent,
		Source:    source,
		Result:    result,
		RequestID: uuid.NewString(),
		Took:      took.Milliseconds(),
	}
	a.record(ctx, message, resp)
	return resp
}

// ProcessMessageStream is ProcessMessage with progress events: "thinking"
// for reasoning deltas from the AI, "typing" once work starts, "intent" when
// classification lands and "result" after dispatch. The returned response is
// the same one a non-streaming call would produce.
func (a *Assistant) ProcessMessageStream(ctx context.Context, message string, emit func(event string, data any) error) (*model.ChatResponse, error) {
	started := time.Now()

	if err := emit("typing", map[string]any{"message": "Processing your request..."}); err != nil {
		return nil, err
	}

	var (
		intent *model.IntentResult
		source string
	)
	if a.aiReady() {
		aiResp, err := a.ai.AnalyzeIntentStream(ctx, message, func(thinking, _ string) error {
			if thinking == "" {
				return nil
			}
			return emit("thinking", map[string]any{"content": thinking})
		})
		if err != nil {
			metrics.IncPrimaryFallback("error")
			log.Printf("⚠️ AI classification failed, using rule engine: %v", err)
		} else {
			intent, source = a.acceptAI(ctx, aiResp)
		}
	}
	if intent == nil {
		intent = a.engine.Interpret(ctx, message)
		source = SourceFallback
	} else {
		metrics.IncClassification(SourcePrimary, string(intent.Action))
	}

	if err := emit("intent", intent); err != nil {
		return nil, err
	}

	var result *model.ActionResult
	if intent.RequiresAction {
		result = a.dispatcher.Dispatch(ctx, intent)
		if err := emit("result", result); err != nil {
			return nil, err
		}
	}

	took := time.Since(started)
	metrics.ObserveChatTurn(source, took)

	resp := &model.ChatResponse{
		Reply:     RenderReply(intent, result),
		Intent:    intent,
		Source:    source,
		Result:    result,
		RequestID: uuid.NewString(),
		Took:      took.Milliseconds(),
	}
	a.record(ctx, message, resp)
	return resp, nil
}

func (a *Assistant) aiReady() bool {
	return a.ai != nil && a.ai.IsEnabled()
}

// classify tries the AI first and falls back to the rule engine on any
// error, incomplete response or low-confidence answer.
func (a *Assistant) classify(ctx context.Context, message string) (*model.IntentResult, string) {
	if a.aiReady() {
		aiResp, err := a.ai.AnalyzeIntent(ctx, message)
		if err != nil {
			metrics.IncPrimaryFallback("error")
			log.Printf("⚠️ AI classification failed, using rule engine: %v", err)
		} else if intent, source := a.acceptAI(ctx, aiResp); intent != nil {
			metrics.IncClassification(SourcePrimary, string(intent.Action))
			return intent, source
		}
	}
	return a.engine.Interpret(ctx, message), SourceFallback
}

// acceptAI validates an AI classification and finishes it: product mentions
// still need resolving against the catalog, and unresolved mentions force
// the same help downgrade the fallback scorer applies. A nil return means
// the answer was rejected and the rule engine decides instead.
func (a *Assistant) acceptAI(ctx context.Context, resp *AIIntentResponse) (*model.IntentResult, string) {
	if !resp.Complete() {
		metrics.IncPrimaryFallback("incomplete")
		return nil, ""
	}
	if *resp.Confidence < a.cfg.PrimaryMinConfidence {
		metrics.IncPrimaryFallback("low_confidence")
		return nil, ""
	}
	action, ok := model.ParseAction(*resp.Action)
	if !ok {
		metrics.IncPrimaryFallback("invalid_action")
		return nil, ""
	}

	var params model.Params
	if resp.Parameters != nil {
		params = *resp.Parameters
	}
	if a.resolver != nil {
		if params.ProductMention != nil && params.ProductID == nil {
			if id, found := a.resolver.Resolve(ctx, *params.ProductMention); found {
				params.ProductID = &id
			}
		}
		if len(params.Items) > 0 {
			params.Items = a.resolver.ResolveItems(ctx, params.Items)
		}
	}

	intent := &model.IntentResult{
		Action:         action,
		Intent:         *resp.Intent,
		Confidence:     *resp.Confidence,
		Parameters:     params,
		RequiresAction: *resp.RequiresAction && !action.IsHelp(),
	}

	if unresolved := countUnresolvedParams(params); unresolved > 0 {
		intent.Confidence = intent.Confidence - a.cfg.PenaltyUnresolved*float64(unresolved)
		if intent.Confidence < 0 {
			intent.Confidence = 0
		}
		intent.RequiresAction = false
		if downgraded, ok := engine.DowngradeToHelp(action); ok {
			intent.Action = downgraded
		}
	}

	return intent, SourcePrimary
}

func countUnresolvedParams(p model.Params) int {
	n := 0
	if p.ProductMention != nil && p.ProductID == nil {
		n++
	}
	for _, it := range p.Items {
		if !it.Resolved() {
			n++
		}
	}
	return n
}

// record writes the turn to the interpret log, if a sink is configured.
func (a *Assistant) record(ctx context.Context, message string, resp *model.ChatResponse) {
	if a.sink == nil {
		return
	}
	entry := model.InterpretLog{
		RequestID:      resp.RequestID,
		Message:        message,
		Source:         resp.Source,
		Action:         string(resp.Intent.Action),
		Intent:         resp.Intent.Intent,
		Confidence:     resp.Intent.Confidence,
		RequiresAction: resp.Intent.RequiresAction,
		Parameters:     resp.Intent.Parameters,
		TookMs:         resp.Took,
	}
	if err := a.sink.LogInterpretation(ctx, entry); err != nil {
		log.Printf("⚠️ Failed to log interpretation %s: %v", resp.RequestID, err)
	}
}
