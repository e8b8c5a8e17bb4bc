package engine

import (
	"fmt"
	"regexp"
	"strings"

	"egile/internal/model"
)

// Template is one declarative classification rule. A template carries its
// trigger (phrase list, regex, guard or any combination), the action and
// intent label it classifies to, its base confidence and the extraction rule
// for its parameters.
//
// Templates are evaluated in library order and the first match wins, so the
// order IS the contract: specific rules must sit above general ones. Adding
// a rule means choosing its position, not tuning weights.
type Template struct {
	ID             string
	Action         model.Action
	Intent         string
	BaseConfidence float64

	// Phrases trigger on substring containment in the normalized text.
	// Pattern triggers on regex match, against the raw text when MatchRaw
	// is set. When acts as a guard for the other triggers, or as the sole
	// trigger if it is the only one defined.
	Phrases  []string
	Pattern  *regexp.Regexp
	MatchRaw bool
	When     func(m *message) bool

	Extract        func(m *message) model.Params
	RequiredParams []string
}

func (t *Template) matches(m *message) bool {
	if t.When != nil && !t.When(m) {
		return false
	}
	if len(t.Phrases) > 0 && m.containsAny(t.Phrases...) {
		return true
	}
	if t.Pattern != nil {
		target := m.norm
		if t.MatchRaw {
			target = m.raw
		}
		if t.Pattern.MatchString(target) {
			return true
		}
	}
	return len(t.Phrases) == 0 && t.Pattern == nil && t.When != nil
}

// requirementChecks maps a required-parameter name to its presence test.
// Compound names accept any of the fields a dispatcher could act on.
var requirementChecks = map[string]func(p model.Params) bool{
	"product": func(p model.Params) bool {
		return p.ProductMention != nil || p.ProductID != nil || p.SKU != nil
	},
	"stock_change": func(p model.Params) bool {
		return p.Delta != nil || p.StockLevel != nil
	},
	"customer": func(p model.Params) bool {
		return p.Customer != nil || p.CustomerID != nil || p.Email != nil
	},
	"items":          func(p model.Params) bool { return len(p.Items) > 0 },
	"email":          func(p model.Params) bool { return p.Email != nil },
	"first_name":     func(p model.Params) bool { return p.FirstName != nil },
	"last_name":      func(p model.Params) bool { return p.LastName != nil },
	"name":           func(p model.Params) bool { return p.Name != nil },
	"price":          func(p model.Params) bool { return p.Price != nil },
	"sku":            func(p model.Params) bool { return p.SKU != nil },
	"category":       func(p model.Params) bool { return p.Category != nil },
	"stock_quantity": func(p model.Params) bool { return p.StockQuantity != nil },
	"order_id":       func(p model.Params) bool { return p.OrderID != nil },
}

// missingRequired returns the names of required parameters absent from p, in
// declaration order.
func (t *Template) missingRequired(p model.Params) []string {
	var missing []string
	for _, name := range t.RequiredParams {
		if !requirementChecks[name](p) {
			missing = append(missing, name)
		}
	}
	return missing
}

// unknownTemplate is the sentinel for messages no rule matched. It never
// sits in the ordered table; Match falls back to it.
var unknownTemplate = Template{
	ID:             "unknown",
	Action:         model.ActionUnknown,
	Intent:         "general_conversation",
	BaseConfidence: 0.3,
}

// Library is an ordered template table. The zero value is unusable; build
// one with DefaultLibrary.
type Library struct {
	templates []Template
}

// Match returns the first template whose trigger fires on the message, or
// the unknown sentinel when none does.
func (l *Library) Match(m *message) *Template {
	for i := range l.templates {
		if l.templates[i].matches(m) {
			return &l.templates[i]
		}
	}
	return &unknownTemplate
}

// validate rejects tables that could misbehave at classification time:
// duplicate or empty IDs, actions outside the closed set, confidences out of
// range, templates with no trigger at all and required-parameter names
// without a presence check.
func (l *Library) validate() error {
	seen := make(map[string]bool, len(l.templates))
	for i := range l.templates {
		t := &l.templates[i]
		if t.ID == "" {
			return fmt.Errorf("template %d: empty id", i)
		}
		if seen[t.ID] {
			return fmt.Errorf("template %q: duplicate id", t.ID)
		}
		seen[t.ID] = true
		if !t.Action.IsValid() {
			return fmt.Errorf("template %q: invalid action %q", t.ID, t.Action)
		}
		if t.BaseConfidence <= 0 || t.BaseConfidence > 1 {
			return fmt.Errorf("template %q: base confidence %v out of range", t.ID, t.BaseConfidence)
		}
		if t.Intent == "" {
			return fmt.Errorf("template %q: empty intent label", t.ID)
		}
		if len(t.Phrases) == 0 && t.Pattern == nil && t.When == nil {
			return fmt.Errorf("template %q: no trigger", t.ID)
		}
		for _, name := range t.RequiredParams {
			if _, ok := requirementChecks[name]; ok {
				continue
			}
			return fmt.Errorf("template %q: unknown required parameter %q", t.ID, name)
		}
	}
	return nil
}

var (
	stockAddTrigger    = regexp.MustCompile(`\badd\s+(?:` + qtyAlt + `)\s+(?:units?\s+)?to\b`)
	orderBareTrigger   = regexp.MustCompile(`^order\s+(?:` + qtyAlt + `)\b`)
	priceCueTrigger    = regexp.MustCompile(`(?:between|from|under|below|less than|cheaper than|at most|up to|over|above|more than|at least)\s+\$?\d`)
	customerRefTrigger = regexp.MustCompile(`\bcust_\d+\b|[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

// DefaultLibrary returns the built-in template table. It panics when the
// table fails validation, so a bad rule kills the process at startup rather
// than misclassifying messages at runtime.
func DefaultLibrary() *Library {
	l := &Library{templates: []Template{
		{
			ID:             "update_stock",
			Action:         model.ActionUpdateStock,
			Intent:         "stock_update",
			BaseConfidence: 0.85,
			Phrases: []string{
				"update stock", "set stock", "change stock", "adjust stock",
				"increase stock", "decrease stock", "reduce stock", "add stock",
				"restock",
			},
			Pattern:        stockAddTrigger,
			Extract:        extractStock,
			RequiredParams: []string{"product", "stock_change"},
		},
		{
			ID:             "help_create_order",
			Action:         model.ActionHelpCreateOrder,
			Intent:         "order_creation_help",
			BaseConfidence: 0.85,
			Phrases: []string{
				"how to create an order", "how do i create an order",
				"how to place an order", "how do i place an order",
				"how to order", "how do i order", "how can i order",
				"help me create an order", "help me place an order",
				"help creating an order", "help me order",
			},
		},
		{
			ID:             "create_order",
			Action:         model.ActionCreateOrder,
			Intent:         "order_creation",
			BaseConfidence: 0.85,
			Phrases: []string{
				"create order", "create an order", "place order",
				"place an order", "new order", "make an order",
			},
			Pattern:        orderBareTrigger,
			Extract:        extractOrder,
			RequiredParams: []string{"customer", "items"},
		},
		{
			ID:             "help_create_customer",
			Action:         model.ActionHelpCreateCustomer,
			Intent:         "customer_creation_help",
			BaseConfidence: 0.85,
			Phrases: []string{
				"how to create a customer", "how do i create a customer",
				"how can i create a customer", "how to add a customer",
				"how do i add a customer", "how to register a customer",
				"help me create a customer", "help creating a customer",
				"help me add a customer",
			},
		},
		{
			ID:             "create_customer",
			Action:         model.ActionCreateCustomer,
			Intent:         "customer_creation",
			BaseConfidence: 0.8,
			Phrases: []string{
				"create customer", "create a customer", "create a new customer",
				"add customer", "add a customer", "add new customer",
				"new customer", "register customer", "register a customer",
			},
			Extract:        extractCreateCustomer,
			RequiredParams: []string{"email", "first_name", "last_name"},
		},
		{
			ID:             "help_create_product",
			Action:         model.ActionHelpCreateProduct,
			Intent:         "product_creation_help",
			BaseConfidence: 0.85,
			Phrases: []string{
				"how to create a product", "how do i create a product",
				"how to add a product", "how do i add a product",
				"help me create a product", "help creating a product",
				"help me add a product",
			},
		},
		{
			ID:             "create_product",
			Action:         model.ActionCreateProduct,
			Intent:         "product_creation",
			BaseConfidence: 0.8,
			Phrases: []string{
				"create product", "create a product", "add product",
				"add a product", "new product", "add new product",
			},
			Pattern:        createProductArgsPattern,
			MatchRaw:       true,
			Extract:        extractCreateProduct,
			RequiredParams: []string{"name", "price", "sku", "category", "stock_quantity"},
		},
		{
			ID:             "low_stock",
			Action:         model.ActionGetLowStockProducts,
			Intent:         "low_stock_check",
			BaseConfidence: 0.9,
			Phrases: []string{
				"low stock", "running low", "stock levels", "inventory levels",
				"what's low", "whats low", "low inventory", "need to reorder",
				"stock shortage", "out of stock soon",
			},
			Extract: extractThreshold,
		},
		{
			ID:             "best_customer",
			Action:         model.ActionGetBestCustomer,
			Intent:         "best_customer_report",
			BaseConfidence: 0.9,
			Phrases: []string{
				"best customer", "top customer", "biggest customer",
				"most valuable customer", "highest spending customer",
			},
		},
		{
			ID:             "most_sold",
			Action:         model.ActionGetMostSoldProducts,
			Intent:         "top_sellers_report",
			BaseConfidence: 0.9,
			Phrases: []string{
				"most sold", "best selling", "best-selling", "top selling",
				"top sellers", "most popular product",
			},
			Extract: extractLimit,
		},
		{
			ID:             "expensive_products",
			Action:         model.ActionGetExpensiveProducts,
			Intent:         "price_report",
			BaseConfidence: 0.9,
			Phrases: []string{
				"most expensive", "priciest", "highest priced", "highest price",
			},
			Extract: extractLimit,
		},
		{
			ID:             "price_search",
			Action:         model.ActionSearchProducts,
			Intent:         "product_search",
			BaseConfidence: 0.85,
			Pattern:        priceCueTrigger,
			When: func(m *message) bool {
				return m.containsAny("product", "item", "price", "cost",
					"cheap", "show", "find", "search", "buy", "sell")
			},
			Extract: extractSearch,
		},
		{
			ID:             "contact_choice",
			Action:         model.ActionHelpChooseCustomerContact,
			Intent:         "customer_contact_help",
			BaseConfidence: 0.8,
			Phrases: []string{
				"email or phone", "phone or email", "contact method",
				"how should i contact", "how do i contact", "how to contact",
				"best way to contact", "best way to reach",
			},
			Extract: extractGetCustomer,
		},
		{
			ID:             "get_customer",
			Action:         model.ActionGetCustomer,
			Intent:         "customer_lookup",
			BaseConfidence: 0.85,
			Phrases: []string{
				"get customer", "show customer", "find customer",
				"lookup customer", "look up customer", "customer details",
			},
			Pattern:        customerRefTrigger,
			Extract:        extractGetCustomer,
			RequiredParams: []string{"customer"},
		},
		{
			ID:             "get_product",
			Action:         model.ActionGetProduct,
			Intent:         "product_lookup",
			BaseConfidence: 0.85,
			When:           hasIdentifier,
			Extract:        extractGetProduct,
			RequiredParams: []string{"product"},
		},
		{
			ID:             "get_order",
			Action:         model.ActionGetOrder,
			Intent:         "order_lookup",
			BaseConfidence: 0.85,
			When: func(m *message) bool {
				return orderIDPattern.MatchString(m.norm)
			},
			Extract:        extractGetOrder,
			RequiredParams: []string{"order_id"},
		},
		{
			ID:             "list_products",
			Action:         model.ActionListProducts,
			Intent:         "product_list",
			BaseConfidence: 0.9,
			Phrases: []string{
				"what are my products", "show me products", "list products",
				"show products", "what products do", "products available",
				"show all products", "list all products", "what's in stock",
				"whats in stock", "what do i have", "my inventory",
				"show inventory", "what items", "what do we have",
				"product list", "all products", "product catalog",
			},
		},
		{
			ID:             "list_customers",
			Action:         model.ActionListCustomers,
			Intent:         "customer_list",
			BaseConfidence: 0.9,
			Phrases: []string{
				"show customers", "list customers", "who are my customers",
				"customer list", "show me customers", "all customers",
				"customer base", "my clients",
			},
		},
		{
			ID:             "list_orders",
			Action:         model.ActionListOrders,
			Intent:         "order_list",
			BaseConfidence: 0.9,
			Phrases: []string{
				"show orders", "list orders", "order history", "recent orders",
				"what orders", "show me orders", "all orders", "order list",
			},
		},
		{
			ID:             "search_products",
			Action:         model.ActionSearchProducts,
			Intent:         "product_search",
			BaseConfidence: 0.8,
			When: func(m *message) bool {
				if strings.HasPrefix(m.norm, "search ") ||
					strings.HasPrefix(m.norm, "find ") ||
					strings.HasPrefix(m.norm, "look for ") {
					return true
				}
				if !m.containsAny("search", "find", "look for", "looking for") {
					return false
				}
				return m.containsAny("product", "item", " for ")
			},
			Extract: extractSearch,
		},
	}}
	if err := l.validate(); err != nil {
		panic(fmt.Sprintf("engine: invalid template library: %v", err))
	}
	return l
}
