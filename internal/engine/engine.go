package engine

import (
	"context"

	"egile/internal/config"
	"egile/internal/metrics"
	"egile/internal/model"
)

// ProductResolver matches free-text product mentions to catalog ids. The
// engine treats it as optional: without one, mentions stay unresolved, which
// keeps requires_action off for any action that needs a catalog id.
type ProductResolver interface {
	Resolve(ctx context.Context, mention string) (string, bool)
	ResolveItems(ctx context.Context, items []model.LineItem) []model.LineItem
}

// helpDowngrades maps an action that cannot run as requested to the help
// action covering the same topic. Actions without an entry keep their value
// and signal the gap through requires_action=false.
var helpDowngrades = map[model.Action]model.Action{
	model.ActionCreateOrder:    model.ActionHelpCreateOrder,
	model.ActionCreateCustomer: model.ActionHelpCreateCustomer,
	model.ActionCreateProduct:  model.ActionHelpCreateProduct,
	model.ActionGetCustomer:    model.ActionHelpChooseCustomerContact,
}

// DowngradeToHelp returns the help action covering the same topic as a, and
// whether such a downgrade exists. The AI classification path uses it to
// apply the same downgrade rules as the fallback scorer.
func DowngradeToHelp(a model.Action) (model.Action, bool) {
	h, ok := helpDowngrades[a]
	return h, ok
}

// Engine classifies user messages against the template library and scores
// the outcome. It holds no per-message state and is safe for concurrent use.
type Engine struct {
	library  *Library
	resolver ProductResolver
	cfg      config.EngineConfig
}

// New builds an engine over the default template library. Zero-valued
// config fields fall back to the documented defaults so a partially filled
// config stays usable.
func New(resolver ProductResolver, cfg config.EngineConfig) *Engine {
	if cfg.MinActionConfidence == 0 {
		cfg.MinActionConfidence = 0.6
	}
	if cfg.PenaltyMissingParam == 0 {
		cfg.PenaltyMissingParam = 0.15
	}
	if cfg.PenaltyUnresolved == 0 {
		cfg.PenaltyUnresolved = 0.2
	}
	if cfg.UnknownConfidence == 0 {
		cfg.UnknownConfidence = 0.3
	}
	return &Engine{
		library:  DefaultLibrary(),
		resolver: resolver,
		cfg:      cfg,
	}
}

// Interpret classifies one user message. It always returns a well-formed
// result and never fails: input nothing matches classifies as unknown, and
// resolution problems surface as requires_action=false rather than as
// errors. Cancellation of ctx only cuts resolution short.
func (e *Engine) Interpret(ctx context.Context, text string) *model.IntentResult {
	m := newMessage(text)
	t := e.library.Match(m)

	var params model.Params
	if t.Extract != nil {
		params = t.Extract(m)
	}
	e.resolveParams(ctx, &params)

	result := e.score(t, params)
	metrics.IncClassification("fallback", string(result.Action))
	return result
}

func (e *Engine) resolveParams(ctx context.Context, p *model.Params) {
	if e.resolver == nil {
		return
	}
	if p.ProductMention != nil && p.ProductID == nil {
		if id, ok := e.resolver.Resolve(ctx, *p.ProductMention); ok {
			p.ProductID = &id
		}
	}
	if len(p.Items) > 0 {
		p.Items = e.resolver.ResolveItems(ctx, p.Items)
	}
}

// score turns a matched template and its extracted parameters into the
// final result. Each missing required parameter and each failed product
// resolution subtracts a fixed penalty from the template's base confidence;
// requires_action turns on only when nothing is missing, nothing failed to
// resolve and the penalized confidence still clears the action threshold.
func (e *Engine) score(t *Template, p model.Params) *model.IntentResult {
	missing := t.missingRequired(p)
	unresolved := countUnresolved(p)

	confidence := t.BaseConfidence -
		e.cfg.PenaltyMissingParam*float64(len(missing)) -
		e.cfg.PenaltyUnresolved*float64(unresolved)
	confidence = clamp01(confidence)
	if t.ID == unknownTemplate.ID {
		confidence = e.cfg.UnknownConfidence
	}

	action := t.Action
	requires := !action.IsHelp() &&
		confidence >= e.cfg.MinActionConfidence &&
		len(missing) == 0 &&
		unresolved == 0

	if !requires {
		if downgraded, ok := helpDowngrades[action]; ok {
			action = downgraded
		}
	}

	return &model.IntentResult{
		Action:         action,
		Intent:         t.Intent,
		Confidence:     confidence,
		Parameters:     p,
		RequiresAction: requires,
	}
}

func countUnresolved(p model.Params) int {
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

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
