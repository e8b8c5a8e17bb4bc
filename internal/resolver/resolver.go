// Package resolver matches free-text product mentions against the catalog.
// Four strategies run in order and short-circuit on the first hit: verified
// identifier lookup, exact folded-name match, deterministic rewrites retried
// exact, keyword search, and finally a scored full-catalog scan. The
// resolver never guesses: anything below the similarity threshold resolves
// to nothing, and catalog errors or timeouts read as "no candidate" for the
// strategy that hit them.
package resolver

import (
	"context"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"egile/internal/cache"
	"egile/internal/config"
	"egile/internal/metrics"
	"egile/internal/model"
)

// Catalog is the slice of the catalog capability the resolver needs.
type Catalog interface {
	SearchProducts(ctx context.Context, req model.SearchProductsRequest) ([]model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
}

var (
	productIDPattern = regexp.MustCompile(`^prod_\d+$`)
	skuPattern       = regexp.MustCompile(`^[A-Za-z0-9]+(?:-[A-Za-z0-9]+)+$`)
)

// Resolver matches product mentions to catalog ids.
type Resolver struct {
	catalog Catalog
	cache   cache.Cache // nil disables caching

	timeout       time.Duration // per catalog query
	minSimilarity float64
	maxConcurrent int
}

// New creates a resolver over the given catalog. The cache may be nil.
func New(cat Catalog, c cache.Cache, cfg config.EngineConfig) *Resolver {
	timeout := time.Duration(cfg.ResolverTimeout) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	minSim := cfg.ResolverMinSimilarity
	if minSim <= 0 {
		minSim = 0.55
	}
	return &Resolver{
		catalog:       cat,
		cache:         c,
		timeout:       timeout,
		minSimilarity: minSim,
		maxConcurrent: 4,
	}
}

// Resolve matches one mention against the catalog. The boolean reports
// whether a product was found; errors and timeouts read as not found.
func (r *Resolver) Resolve(ctx context.Context, mention string) (string, bool) {
	started := time.Now()
	id, strategy := r.resolve(ctx, mention)

	outcome := "hit"
	if id == "" {
		outcome = "miss"
	}
	metrics.IncResolution(strategy, outcome)
	metrics.ObserveResolution(outcome, time.Since(started))

	return id, id != ""
}

// ResolveItems resolves every line item concurrently and returns them in
// the original order. Items whose mention could not be matched come back
// with an empty ProductID; cancelling ctx aborts the remaining lookups.
func (r *Resolver) ResolveItems(ctx context.Context, items []model.LineItem) []model.LineItem {
	if len(items) == 0 {
		return nil
	}

	out := make([]model.LineItem, len(items))
	copy(out, items)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxConcurrent)
	for i := range out {
		g.Go(func() error {
			if out[i].ProductID != "" {
				return nil
			}
			if id, ok := r.Resolve(gctx, out[i].ProductMention); ok {
				out[i].ProductID = id
			}
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (r *Resolver) resolve(ctx context.Context, raw string) (id, strategy string) {
	mention := foldName(raw)
	if mention == "" {
		return "", "none"
	}

	// Identifier-shaped mentions resolve by direct lookup only; an unknown
	// id or SKU must not fuzzy-match some other product.
	if token := strings.TrimSpace(raw); isIdentifier(token) {
		if found, ok := r.lookupIdentifier(ctx, token); ok {
			return found, "id"
		}
		return "", "id"
	}

	if r.cache != nil {
		if cached, ok := r.cache.Get(ctx, mention); ok {
			return cached, "cache"
		}
	}

	if found, ok := r.exactLookup(ctx, mention); ok {
		return found, "exact"
	}

	for _, variant := range rewriteVariants(mention) {
		if found, ok := r.exactLookup(ctx, variant); ok {
			return found, "rewrite"
		}
	}

	if found, ok := r.keywordLookup(ctx, mention); ok {
		return found, "keyword"
	}

	if found, ok := r.scanCatalog(ctx, mention); ok {
		if r.cache != nil {
			r.cache.Set(ctx, mention, found)
		}
		return found, "scan"
	}

	return "", "none"
}

func isIdentifier(token string) bool {
	if productIDPattern.MatchString(token) {
		return true
	}
	return skuPattern.MatchString(token) && strings.ContainsAny(token, "0123456789")
}

// lookupIdentifier verifies a product id or SKU against the catalog.
func (r *Resolver) lookupIdentifier(ctx context.Context, token string) (string, bool) {
	qctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if productIDPattern.MatchString(token) {
		p, err := r.catalog.GetProduct(qctx, token)
		if err != nil || p == nil {
			return "", false
		}
		return p.ID, true
	}

	p, err := r.catalog.GetProductBySKU(qctx, token)
	if err != nil || p == nil {
		return "", false
	}
	return p.ID, true
}

// exactLookup searches the catalog with the folded text and accepts only a
// candidate whose folded name is identical.
func (r *Resolver) exactLookup(ctx context.Context, text string) (string, bool) {
	qctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	products, err := r.catalog.SearchProducts(qctx, model.SearchProductsRequest{Query: text})
	if err != nil {
		return "", false
	}

	for _, p := range products {
		if foldName(p.Name) == text {
			return p.ID, true
		}
	}
	return "", false
}

// keywordLookup searches with the longest significant token and accepts the
// shortest-named candidate containing every significant token.
func (r *Resolver) keywordLookup(ctx context.Context, mention string) (string, bool) {
	toks := significantTokens(mention)
	if len(toks) == 0 {
		return "", false
	}

	query := toks[0]
	for _, t := range toks[1:] {
		if len(t) > len(query) {
			query = t
		}
	}

	qctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	products, err := r.catalog.SearchProducts(qctx, model.SearchProductsRequest{Query: query})
	if err != nil {
		return "", false
	}

	bestID := ""
	bestLen := 0
	for _, p := range products {
		name := foldName(p.Name)
		if !containsAllTokens(name, toks) {
			continue
		}
		if bestID == "" || len(name) < bestLen {
			bestID = p.ID
			bestLen = len(name)
		}
	}
	return bestID, bestID != ""
}

func containsAllTokens(foldedName string, toks []string) bool {
	nameToks := make(map[string]struct{})
	for _, t := range strings.Fields(foldedName) {
		nameToks[t] = struct{}{}
	}
	for _, t := range toks {
		if _, ok := nameToks[t]; !ok {
			return false
		}
	}
	return true
}

// scanCatalog scores the mention against every active product name and
// accepts the best candidate at or above the similarity threshold.
func (r *Resolver) scanCatalog(ctx context.Context, mention string) (string, bool) {
	qctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	products, err := r.catalog.ListProducts(qctx)
	if err != nil {
		return "", false
	}

	candidates := make([]Candidate, 0, len(products))
	for _, p := range products {
		name := foldName(p.Name)
		if name == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			CatalogID:   p.ID,
			DisplayName: p.Name,
			Score:       similarity(mention, name),
		})
	}

	best, ok := bestCandidate(candidates, r.minSimilarity)
	if !ok {
		return "", false
	}
	return best.CatalogID, true
}
