package engine

import (
	"regexp"
	"strconv"
	"strings"

	"egile/internal/model"
)

// numberWords maps the spelled-out quantities the extractor accepts. Larger
// spelled numbers are rare in chat and fall back to digits.
var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

const qtyAlt = `\d+|one|two|three|four|five|six|seven|eight|nine|ten`

var (
	emailPattern      = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern      = regexp.MustCompile(`\+?\d[\d\s().-]{6,}\d`)
	productIDPattern  = regexp.MustCompile(`\bprod_\d+\b`)
	customerIDPattern = regexp.MustCompile(`\bcust_\d+\b`)
	orderIDPattern    = regexp.MustCompile(`\border_\d+\b`)
	skuTokenPattern   = regexp.MustCompile(`\b[A-Za-z0-9]+(?:-[A-Za-z0-9]+)+\b`)

	priceBetweenPattern = regexp.MustCompile(`(?:between|from)\s+\$?(\d+(?:\.\d+)?)\s+(?:and|to)\s+\$?(\d+(?:\.\d+)?)`)
	priceUpperPattern   = regexp.MustCompile(`(?:under|below|less than|cheaper than|at most|up to)\s+\$?(\d+(?:\.\d+)?)`)
	priceLowerPattern   = regexp.MustCompile(`(?:over|above|more than|at least)\s+\$?(\d+(?:\.\d+)?)`)

	limitPattern     = regexp.MustCompile(`(?:top|first)\s+(\d+)\b|(\d+)\s+(?:most|best)\b`)
	thresholdPattern = regexp.MustCompile(`(?:below|under|less than)\s+(\d+)\b`)

	createProductArgsPattern = regexp.MustCompile(`(?i)create\s+product\s+"([^"]+)"\s+(\d+(?:\.\d+)?)\s+(\S+)\s+(\S+)\s+(\d+)`)

	stockByPattern      = regexp.MustCompile(`(?:by|plus)\s+(` + qtyAlt + `)\b`)
	stockAddPattern     = regexp.MustCompile(`\badd\s+(` + qtyAlt + `)\s+(?:units?\s+)?to\b`)
	stockLevelPattern   = regexp.MustCompile(`(?:to|at)\s+(\d+)\b`)
	stockOfPattern      = regexp.MustCompile(`(?:of|for)\s+(.+?)(?:\s+(?:by|to|plus|at)\b.*)?$`)
	stockVerbPattern    = regexp.MustCompile(`(?:update|increase|decrease|change|set)\s+(.+?)\s+stock`)
	stockAddTailPattern = regexp.MustCompile(`\badd\s+(?:` + qtyAlt + `)\s+(?:units?\s+)?to\s+(?:the\s+)?(.+)$`)

	orderTailPattern     = regexp.MustCompile(`(?:create|place|make|new)\s+(?:an?\s+)?(?:new\s+)?order\s*(.*)$`)
	orderItemsFirst      = regexp.MustCompile(`^for\s+((?:` + qtyAlt + `)\b.*)$`)
	orderCustomerItems   = regexp.MustCompile(`^for\s+(\S+)\s+for\s+(.*)$`)
	orderCustomerOnly    = regexp.MustCompile(`^for\s+(\S+)\s*$`)
	orderSegmentSplit    = regexp.MustCompile(`\s*,\s*|\s+and\s+`)
	orderItemPattern     = regexp.MustCompile(`^(` + qtyAlt + `)\s+(?:x\s+|of\s+)?(.+)$`)
	customerAfterPattern = regexp.MustCompile(`customer\s+(.+)$`)
)

// parseQuantity turns a digit run or a spelled-out number word into an int.
func parseQuantity(tok string) (int, bool) {
	if n, ok := numberWords[tok]; ok {
		return n, true
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, false
	}
	return n, true
}

// cleanMention trims quotes, filler edges and trailing punctuation from a
// free-text product reference.
func cleanMention(s string) string {
	s = strings.Trim(s, `"' `)
	s = strings.Trim(s, ".,!?;:")
	words := strings.Fields(s)
	for len(words) > 0 {
		switch words[0] {
		case "the", "a", "an", "of", "my", "our", "some":
			words = words[1:]
		default:
			return strings.Join(words, " ")
		}
	}
	return ""
}

// hasIdentifier reports whether the message carries a canonical product
// reference: a prod_ id or an SKU-shaped token that contains a digit.
func hasIdentifier(m *message) bool {
	if productIDPattern.MatchString(m.norm) {
		return true
	}
	if tok := skuTokenPattern.FindString(m.norm); tok != "" {
		return strings.ContainsAny(tok, "0123456789")
	}
	return false
}

func extractPriceBounds(norm string, p *model.Params) {
	if m := priceBetweenPattern.FindStringSubmatch(norm); m != nil {
		lo, err1 := strconv.ParseFloat(m[1], 64)
		hi, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil {
			if lo > hi {
				lo, hi = hi, lo
			}
			p.PriceMin = &lo
			p.PriceMax = &hi
		}
		return
	}
	if m := priceUpperPattern.FindStringSubmatch(norm); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			p.PriceMax = &v
		}
	}
	if m := priceLowerPattern.FindStringSubmatch(norm); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			p.PriceMin = &v
		}
	}
}

// searchFiller lists words stripped from a message when the leftover text
// becomes the search query.
var searchFiller = map[string]bool{
	"search": true, "find": true, "look": true, "looking": true, "show": true,
	"me": true, "for": true, "a": true, "an": true, "the": true, "some": true,
	"any": true, "all": true, "please": true, "product": true, "products": true,
	"item": true, "items": true, "that": true, "cost": true, "costing": true,
	"priced": true, "in": true, "stock": true, "available": true, "can": true,
	"you": true, "i": true, "want": true, "need": true, "buy": true,
}

func extractSearch(m *message) model.Params {
	var p model.Params
	extractPriceBounds(m.norm, &p)
	if strings.Contains(m.norm, "in stock") {
		p.InStockOnly = true
	}

	if len(m.quoted) > 0 {
		q := m.quoted[0]
		p.Query = &q
		return p
	}

	rest := priceBetweenPattern.ReplaceAllString(m.norm, " ")
	rest = priceUpperPattern.ReplaceAllString(rest, " ")
	rest = priceLowerPattern.ReplaceAllString(rest, " ")
	var kept []string
	for _, w := range strings.Fields(rest) {
		if !searchFiller[strings.Trim(w, ".,!?")] {
			kept = append(kept, strings.Trim(w, ".,!?"))
		}
	}
	if len(kept) > 0 {
		q := strings.Join(kept, " ")
		p.Query = &q
	}
	return p
}

func extractStock(m *message) model.Params {
	var p model.Params

	if len(m.quoted) > 0 {
		mention := m.quoted[0]
		p.ProductMention = &mention
	} else if id := productIDPattern.FindString(m.norm); id != "" {
		p.ProductID = &id
	} else if sm := stockOfPattern.FindStringSubmatch(m.norm); sm != nil {
		if mention := cleanMention(sm[1]); mention != "" {
			p.ProductMention = &mention
		}
	} else if sm := stockAddTailPattern.FindStringSubmatch(m.norm); sm != nil {
		if mention := cleanMention(sm[1]); mention != "" {
			p.ProductMention = &mention
		}
	} else if sm := stockVerbPattern.FindStringSubmatch(m.norm); sm != nil {
		if mention := cleanMention(sm[1]); mention != "" {
			p.ProductMention = &mention
		}
	}

	// "by N" and "add N" are relative changes, "to N" is an absolute level.
	if sm := stockByPattern.FindStringSubmatch(m.norm); sm != nil {
		if n, ok := parseQuantity(sm[1]); ok {
			if m.containsAny("decrease", "reduce", "lower", "remove", "subtract") {
				n = -n
			}
			p.Delta = &n
		}
	} else if sm := stockAddPattern.FindStringSubmatch(m.norm); sm != nil {
		if n, ok := parseQuantity(sm[1]); ok {
			p.Delta = &n
		}
	} else if sm := stockLevelPattern.FindStringSubmatch(m.norm); sm != nil {
		if n, ok := parseQuantity(sm[1]); ok && n >= 0 {
			p.StockLevel = &n
		}
	}
	return p
}

func extractOrder(m *message) model.Params {
	var p model.Params

	tail := ""
	if sm := orderTailPattern.FindStringSubmatch(m.norm); sm != nil {
		tail = strings.TrimSpace(sm[1])
	} else if idx := strings.Index(m.norm, "order"); idx >= 0 {
		tail = strings.TrimSpace(m.norm[idx+len("order"):])
	}

	itemsPart := ""
	switch {
	case tail == "":
	case orderItemsFirst.MatchString(tail):
		itemsPart = orderItemsFirst.FindStringSubmatch(tail)[1]
	case orderCustomerItems.MatchString(tail):
		sm := orderCustomerItems.FindStringSubmatch(tail)
		customer := sm[1]
		p.Customer = &customer
		itemsPart = sm[2]
	case orderCustomerOnly.MatchString(tail):
		customer := orderCustomerOnly.FindStringSubmatch(tail)[1]
		p.Customer = &customer
	default:
		itemsPart = tail
	}

	for _, seg := range orderSegmentSplit.Split(itemsPart, -1) {
		seg = strings.TrimSpace(strings.TrimPrefix(seg, "for "))
		if seg == "" {
			continue
		}
		qty := 1
		mention := seg
		if sm := orderItemPattern.FindStringSubmatch(seg); sm != nil {
			if n, ok := parseQuantity(sm[1]); ok && n >= 1 {
				qty = n
			}
			mention = sm[2]
		}
		// A trailing "for <name>" on the last segment names the customer,
		// not the product.
		if idx := strings.Index(mention, " for "); idx >= 0 {
			if p.Customer == nil {
				customer := strings.TrimSpace(mention[idx+len(" for "):])
				if customer != "" {
					p.Customer = &customer
				}
			}
			mention = mention[:idx]
		}
		mention = cleanMention(mention)
		if mention == "" {
			continue
		}
		p.Items = append(p.Items, model.LineItem{ProductMention: mention, Quantity: qty})
	}

	if p.Customer == nil {
		if email := emailPattern.FindString(m.norm); email != "" {
			p.Customer = &email
		}
	}
	return p
}

// createCustomerFiller lists trigger and glue words dropped before the
// leftover tokens are read as first and last name.
var createCustomerFiller = map[string]bool{
	"create": true, "add": true, "new": true, "register": true, "customer": true,
	"a": true, "an": true, "the": true, "with": true, "named": true, "name": true,
	"called": true, "email": true, "phone": true, "number": true, "please": true,
	"for": true, "and": true,
}

func extractCreateCustomer(m *message) model.Params {
	var p model.Params

	rest := m.norm
	if email := emailPattern.FindString(rest); email != "" {
		p.Email = &email
		rest = strings.Replace(rest, email, " ", 1)
	}
	if phone := phonePattern.FindString(rest); phone != "" {
		cleaned := strings.TrimSpace(phone)
		p.Phone = &cleaned
		rest = strings.Replace(rest, phone, " ", 1)
	}

	var names []string
	for _, w := range strings.Fields(rest) {
		w = strings.Trim(w, ".,!?")
		if w == "" || createCustomerFiller[w] {
			continue
		}
		names = append(names, w)
	}
	if len(names) > 0 {
		first := names[0]
		p.FirstName = &first
	}
	if len(names) > 1 {
		last := strings.Join(names[1:], " ")
		p.LastName = &last
	}
	return p
}

func extractCreateProduct(m *message) model.Params {
	var p model.Params

	if sm := createProductArgsPattern.FindStringSubmatch(m.raw); sm != nil {
		name := sm[1]
		price, err := strconv.ParseFloat(sm[2], 64)
		stock, err2 := strconv.Atoi(sm[5])
		if err == nil && err2 == nil {
			sku := sm[3]
			category := strings.ToLower(sm[4])
			description := name + " - " + category
			p.Name = &name
			p.Description = &description
			p.Price = &price
			p.SKU = &sku
			p.Category = &category
			p.StockQuantity = &stock
			return p
		}
	}

	if len(m.quoted) > 0 {
		name := m.quoted[0]
		p.Name = &name
	}
	return p
}

func extractGetCustomer(m *message) model.Params {
	var p model.Params
	if email := emailPattern.FindString(m.norm); email != "" {
		p.Email = &email
		return p
	}
	if id := customerIDPattern.FindString(m.norm); id != "" {
		p.CustomerID = &id
		return p
	}
	if sm := customerAfterPattern.FindStringSubmatch(m.norm); sm != nil {
		if ref := cleanMention(sm[1]); ref != "" {
			p.Customer = &ref
		}
	}
	return p
}

func extractGetProduct(m *message) model.Params {
	var p model.Params
	if id := productIDPattern.FindString(m.norm); id != "" {
		p.ProductID = &id
		return p
	}
	if tok := skuTokenPattern.FindString(m.raw); tok != "" && strings.ContainsAny(tok, "0123456789") {
		sku := strings.ToUpper(tok)
		p.SKU = &sku
	}
	return p
}

func extractGetOrder(m *message) model.Params {
	var p model.Params
	if id := orderIDPattern.FindString(m.norm); id != "" {
		p.OrderID = &id
	}
	return p
}

func extractLimit(m *message) model.Params {
	var p model.Params
	if sm := limitPattern.FindStringSubmatch(m.norm); sm != nil {
		raw := sm[1]
		if raw == "" {
			raw = sm[2]
		}
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.Limit = &n
		}
	}
	return p
}

func extractThreshold(m *message) model.Params {
	var p model.Params
	if sm := thresholdPattern.FindStringSubmatch(m.norm); sm != nil {
		if n, err := strconv.Atoi(sm[1]); err == nil && n >= 0 {
			p.Threshold = &n
		}
	}
	return p
}
