package model

// Action identifies a backend operation the assistant can perform on behalf
// of the user. The set is closed: every value produced by the rule engine or
// accepted from the AI classifier must be one of these constants, and the
// dispatcher switches over them exhaustively. New operations get new
// constants; existing names never change.
type Action string

const (
	ActionSearchProducts       Action = "search_products"
	ActionGetProduct           Action = "get_product"
	ActionListProducts         Action = "list_products"
	ActionCreateProduct        Action = "create_product"
	ActionGetCustomer          Action = "get_customer"
	ActionListCustomers        Action = "list_customers"
	ActionCreateCustomer       Action = "create_customer"
	ActionCreateOrder          Action = "create_order"
	ActionGetOrder             Action = "get_order"
	ActionListOrders           Action = "list_orders"
	ActionUpdateStock          Action = "update_stock"
	ActionGetLowStockProducts  Action = "get_low_stock_products"
	ActionGetBestCustomer      Action = "get_best_customer"
	ActionGetExpensiveProducts Action = "get_expensive_products"
	ActionGetMostSoldProducts  Action = "get_most_sold_products"

	// Help actions answer "how do I ..." questions and under-specified
	// requests. They never reach the backend.
	ActionHelpCreateCustomer        Action = "help_create_customer"
	ActionHelpCreateOrder           Action = "help_create_order"
	ActionHelpCreateProduct         Action = "help_create_product"
	ActionHelpChooseCustomerContact Action = "help_choose_customer_contact"

	// ActionUnknown is the terminal fallback for messages nothing matched.
	ActionUnknown Action = "unknown"
)

// Actions lists every member of the closed action set.
var Actions = []Action{
	ActionSearchProducts,
	ActionGetProduct,
	ActionListProducts,
	ActionCreateProduct,
	ActionGetCustomer,
	ActionListCustomers,
	ActionCreateCustomer,
	ActionCreateOrder,
	ActionGetOrder,
	ActionListOrders,
	ActionUpdateStock,
	ActionGetLowStockProducts,
	ActionGetBestCustomer,
	ActionGetExpensiveProducts,
	ActionGetMostSoldProducts,
	ActionHelpCreateCustomer,
	ActionHelpCreateOrder,
	ActionHelpCreateProduct,
	ActionHelpChooseCustomerContact,
	ActionUnknown,
}

var validActions = func() map[Action]struct{} {
	m := make(map[Action]struct{}, len(Actions))
	for _, a := range Actions {
		m[a] = struct{}{}
	}
	return m
}()

// ParseAction maps a raw string to a member of the closed action set.
// Unrecognized values return (ActionUnknown, false).
func ParseAction(s string) (Action, bool) {
	a := Action(s)
	if _, ok := validActions[a]; ok {
		return a, true
	}
	return ActionUnknown, false
}

// IsValid reports whether the action is a member of the closed set.
func (a Action) IsValid() bool {
	_, ok := validActions[a]
	return ok
}

// IsHelp reports whether the action is informational only (help_* or
// unknown). Informational actions never require backend execution.
func (a Action) IsHelp() bool {
	switch a {
	case ActionHelpCreateCustomer, ActionHelpCreateOrder, ActionHelpCreateProduct,
		ActionHelpChooseCustomerContact, ActionUnknown:
		return true
	}
	return false
}

// IntentResult is the classification outcome for a single user message.
// A result is built fresh per message and never mutated after it is returned.
type IntentResult struct {
	Action         Action  `json:"action"`
	Intent         string  `json:"intent"`
	Confidence     float64 `json:"confidence"`
	Parameters     Params  `json:"parameters"`
	RequiresAction bool    `json:"requires_action"`
}

// Params carries the extracted parameters of an intent. Every field is
// optional; absent parameters are omitted from JSON entirely, so callers
// test presence rather than null.
type Params struct {
	Query          *string    `json:"query,omitempty"`
	Category       *string    `json:"category,omitempty"`
	PriceMin       *float64   `json:"price_min,omitempty"`
	PriceMax       *float64   `json:"price_max,omitempty"`
	InStockOnly    bool       `json:"in_stock_only,omitempty"`
	ProductMention *string    `json:"product_mention,omitempty"`
	ProductID      *string    `json:"product_id,omitempty"`
	SKU            *string    `json:"sku,omitempty"`
	Name           *string    `json:"name,omitempty"`
	Description    *string    `json:"description,omitempty"`
	Price          *float64   `json:"price,omitempty"`
	StockQuantity  *int       `json:"stock_quantity,omitempty"`
	Quantity       *int       `json:"quantity,omitempty"`
	Delta          *int       `json:"delta,omitempty"`       // relative stock change
	StockLevel     *int       `json:"stock_level,omitempty"` // absolute stock target
	Items          []LineItem `json:"items,omitempty"`
	Customer       *string    `json:"customer,omitempty"` // raw customer reference from the message
	CustomerID     *string    `json:"customer_id,omitempty"`
	Email          *string    `json:"email,omitempty"`
	FirstName      *string    `json:"first_name,omitempty"`
	LastName       *string    `json:"last_name,omitempty"`
	Phone          *string    `json:"phone,omitempty"`
	OrderID        *string    `json:"order_id,omitempty"`
	Limit          *int       `json:"limit,omitempty"`
	Threshold      *int       `json:"threshold,omitempty"`
}

// LineItem is one "quantity of product" group extracted from an order
// request. ProductID is filled in by the resolver; an empty ProductID means
// the mention could not be matched to the catalog.
type LineItem struct {
	ProductMention string `json:"product_mention"`
	ProductID      string `json:"product_id,omitempty"`
	Quantity       int    `json:"quantity"`
}

// Resolved reports whether the line item has been matched to a catalog
// product.
func (li LineItem) Resolved() bool {
	return li.ProductID != ""
}
