package resolver

import "strings"

// tokenAliases maps common shorthand to the vocabulary catalog names use.
// Applied token-wise during the rewrite strategy.
var tokenAliases = map[string]string{
	"mic":       "microphone",
	"mics":      "microphones",
	"tv":        "television",
	"tvs":       "televisions",
	"notebook":  "laptop",
	"notebooks": "laptops",
	"cam":       "camera",
	"cams":      "cameras",
	"phone":     "smartphone",
	"cup":       "mug",
}

// stopTokens never count as significant mention words.
var stopTokens = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "of": {}, "for": {},
	"to": {}, "me": {}, "my": {}, "some": {}, "please": {},
}

// rewriteVariants returns deterministic spelling variants of a folded
// mention, most likely first: two-word order swap, singular/plural, then
// alias substitution. Underscore and punctuation variants need no entry
// here because foldName already collapses them.
func rewriteVariants(mention string) []string {
	seen := map[string]struct{}{mention: {}}
	var out []string
	add := func(s string) {
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	words := strings.Fields(mention)
	if len(words) == 2 {
		add(words[1] + " " + words[0])
	}

	if strings.HasSuffix(mention, "s") {
		add(strings.TrimSuffix(mention, "s"))
	} else {
		add(mention + "s")
	}

	if aliased, changed := applyAliases(words); changed {
		add(aliased)
		aliasWords := strings.Fields(aliased)
		if len(aliasWords) == 2 {
			add(aliasWords[1] + " " + aliasWords[0])
		}
	}

	return out
}

// applyAliases substitutes shorthand tokens and reports whether anything
// changed.
func applyAliases(words []string) (string, bool) {
	changed := false
	out := make([]string, len(words))
	for i, w := range words {
		if alias, ok := tokenAliases[w]; ok {
			out[i] = alias
			changed = true
			continue
		}
		out[i] = w
	}
	return strings.Join(out, " "), changed
}

// significantTokens drops stop words from a folded mention.
func significantTokens(mention string) []string {
	var out []string
	for _, t := range strings.Fields(mention) {
		if _, stop := stopTokens[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}
