package service

import (
	"context"
	"fmt"
	"strings"

	"egile/internal/catalog"
	"egile/internal/metrics"
	"egile/internal/model"
)

// Dispatcher turns a scored intent into the concrete catalog call it asks
// for. The switch over the action enum is exhaustive: every member of the
// closed set has a branch, so an action without a handler is a compile-time
// review item rather than a runtime lookup failure.
type Dispatcher struct {
	store             catalog.Store
	defaultCustomer   string // email of the demo customer used when none is named
	lowStockThreshold int
}

// NewDispatcher creates a dispatcher over the given catalog store.
func NewDispatcher(store catalog.Store, defaultCustomerEmail string, lowStockThreshold int) *Dispatcher {
	if defaultCustomerEmail == "" {
		defaultCustomerEmail = catalog.DemoCustomerEmail
	}
	if lowStockThreshold <= 0 {
		lowStockThreshold = 10
	}
	return &Dispatcher{
		store:             store,
		defaultCustomer:   defaultCustomerEmail,
		lowStockThreshold: lowStockThreshold,
	}
}

// Dispatch executes the backend operation an intent calls for and wraps the
// outcome in an ActionResult. Informational actions (help_*, unknown) never
// touch the backend and come back successful with no data.
func (d *Dispatcher) Dispatch(ctx context.Context, intent *model.IntentResult) *model.ActionResult {
	result := d.dispatch(ctx, intent)

	outcome := "success"
	if !result.Success {
		outcome = "error"
	}
	metrics.IncDispatch(string(intent.Action), outcome)
	return result
}

func (d *Dispatcher) dispatch(ctx context.Context, intent *model.IntentResult) *model.ActionResult {
	p := intent.Parameters

	switch intent.Action {
	case model.ActionSearchProducts:
		req := model.SearchProductsRequest{
			Category:    p.Category,
			PriceMin:    p.PriceMin,
			PriceMax:    p.PriceMax,
			InStockOnly: p.InStockOnly,
		}
		if p.Query != nil {
			req.Query = *p.Query
		}
		products, err := d.store.SearchProducts(ctx, req)
		if err != nil {
			return failure(err)
		}
		return success(products, fmt.Sprintf("found %d product(s)", len(products)))

	case model.ActionGetProduct:
		return d.getProduct(ctx, p)

	case model.ActionListProducts:
		products, err := d.store.ListProducts(ctx)
		if err != nil {
			return failure(err)
		}
		return success(products, fmt.Sprintf("%d product(s) in catalog", len(products)))

	case model.ActionCreateProduct:
		req := model.CreateProductRequest{}
		if p.Name != nil {
			req.Name = *p.Name
		}
		if p.Description != nil {
			req.Description = *p.Description
		}
		if p.Price != nil {
			req.Price = *p.Price
		}
		if p.SKU != nil {
			req.SKU = *p.SKU
		}
		if p.Category != nil {
			req.Category = *p.Category
		}
		if p.StockQuantity != nil {
			req.StockQuantity = *p.StockQuantity
		}
		product, err := d.store.CreateProduct(ctx, req)
		if err != nil {
			return failure(err)
		}
		return success(product, fmt.Sprintf("created product %s (%s)", product.Name, product.ID))

	case model.ActionGetCustomer:
		return d.getCustomer(ctx, p)

	case model.ActionListCustomers:
		customers, err := d.store.ListCustomers(ctx)
		if err != nil {
			return failure(err)
		}
		return success(customers, fmt.Sprintf("%d customer(s)", len(customers)))

	case model.ActionCreateCustomer:
		req := model.CreateCustomerRequest{Phone: p.Phone}
		if p.Email != nil {
			req.Email = *p.Email
		}
		if p.FirstName != nil {
			req.FirstName = *p.FirstName
		}
		if p.LastName != nil {
			req.LastName = *p.LastName
		}
		customer, err := d.store.CreateCustomer(ctx, req)
		if err != nil {
			return failure(err)
		}
		return success(customer, fmt.Sprintf("created customer %s (%s)", customer.FullName(), customer.ID))

	case model.ActionCreateOrder:
		return d.createOrder(ctx, p)

	case model.ActionGetOrder:
		if p.OrderID == nil {
			return failureMsg("no order id given")
		}
		order, err := d.store.GetOrder(ctx, *p.OrderID)
		if err != nil {
			return failure(err)
		}
		if order == nil {
			return failureMsg(fmt.Sprintf("order %s not found", *p.OrderID))
		}
		return success(order, fmt.Sprintf("order %s: %s", order.ID, order.Status))

	case model.ActionListOrders:
		orders, err := d.store.ListOrders(ctx)
		if err != nil {
			return failure(err)
		}
		return success(orders, fmt.Sprintf("%d order(s)", len(orders)))

	case model.ActionUpdateStock:
		return d.updateStock(ctx, p)

	case model.ActionGetLowStockProducts:
		threshold := d.lowStockThreshold
		if p.Threshold != nil {
			threshold = *p.Threshold
		}
		products, err := d.store.LowStockProducts(ctx, threshold)
		if err != nil {
			return failure(err)
		}
		return success(products, fmt.Sprintf("%d product(s) at or below %d units", len(products), threshold))

	case model.ActionGetBestCustomer:
		best, err := d.store.BestCustomer(ctx)
		if err != nil {
			return failure(err)
		}
		if best == nil {
			return success(nil, "no orders yet")
		}
		return success(best, fmt.Sprintf("best customer: %s", best.FullName()))

	case model.ActionGetExpensiveProducts:
		limit := 5
		if p.Limit != nil {
			limit = *p.Limit
		}
		products, err := d.store.MostExpensiveProducts(ctx, limit)
		if err != nil {
			return failure(err)
		}
		return success(products, fmt.Sprintf("top %d by price", len(products)))

	case model.ActionGetMostSoldProducts:
		limit := 5
		if p.Limit != nil {
			limit = *p.Limit
		}
		sales, err := d.store.MostSoldProducts(ctx, limit)
		if err != nil {
			return failure(err)
		}
		return success(sales, fmt.Sprintf("top %d by units sold", len(sales)))

	case model.ActionHelpCreateCustomer, model.ActionHelpCreateOrder,
		model.ActionHelpCreateProduct, model.ActionHelpChooseCustomerContact,
		model.ActionUnknown:
		// Informational: the caller renders guidance from the intent alone.
		return &model.ActionResult{Success: true}

	default:
		// Unreachable while the action set stays closed; kept so a new
		// constant without a branch fails loudly in tests.
		return failureMsg(fmt.Sprintf("no handler for action %s", intent.Action))
	}
}

func (d *Dispatcher) getProduct(ctx context.Context, p model.Params) *model.ActionResult {
	switch {
	case p.ProductID != nil:
		product, err := d.store.GetProduct(ctx, *p.ProductID)
		if err != nil {
			return failure(err)
		}
		if product == nil {
			return failureMsg(fmt.Sprintf("product %s not found", *p.ProductID))
		}
		return success(product, product.Name)
	case p.SKU != nil:
		product, err := d.store.GetProductBySKU(ctx, *p.SKU)
		if err != nil {
			return failure(err)
		}
		if product == nil {
			return failureMsg(fmt.Sprintf("no product with sku %s", *p.SKU))
		}
		return success(product, product.Name)
	default:
		return failureMsg("no product id or sku given")
	}
}

func (d *Dispatcher) getCustomer(ctx context.Context, p model.Params) *model.ActionResult {
	switch {
	case p.Email != nil:
		customer, err := d.store.GetCustomerByEmail(ctx, *p.Email)
		if err != nil {
			return failure(err)
		}
		if customer == nil {
			return failureMsg(fmt.Sprintf("no customer with email %s", *p.Email))
		}
		return success(customer, customer.FullName())
	case p.CustomerID != nil:
		customer, err := d.store.GetCustomer(ctx, *p.CustomerID)
		if err != nil {
			return failure(err)
		}
		if customer == nil {
			return failureMsg(fmt.Sprintf("customer %s not found", *p.CustomerID))
		}
		return success(customer, customer.FullName())
	default:
		return failureMsg("no customer email or id given")
	}
}

// createOrder resolves the customer reference, wraps a bare product+quantity
// pair into a one-element item list if needed and places the order.
func (d *Dispatcher) createOrder(ctx context.Context, p model.Params) *model.ActionResult {
	customer, err := d.resolveCustomer(ctx, p)
	if err != nil {
		return failure(err)
	}
	if customer == nil {
		return failureMsg("could not determine which customer the order is for")
	}

	items := make([]model.OrderItemRequest, 0, len(p.Items))
	for _, it := range p.Items {
		if !it.Resolved() {
			return failureMsg(fmt.Sprintf("product %q not found in catalog", it.ProductMention))
		}
		items = append(items, model.OrderItemRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	if len(items) == 0 && p.ProductID != nil {
		qty := 1
		if p.Quantity != nil {
			qty = *p.Quantity
		}
		items = append(items, model.OrderItemRequest{ProductID: *p.ProductID, Quantity: qty})
	}
	if len(items) == 0 {
		return failureMsg("the order has no items")
	}

	order, err := d.store.CreateOrder(ctx, model.CreateOrderRequest{
		CustomerID: customer.ID,
		Items:      items,
	})
	if err != nil {
		return failure(err)
	}
	return success(order, fmt.Sprintf("created order %s for %s, total %.2f %s",
		order.ID, customer.FullName(), order.TotalAmount, order.Currency))
}

// resolveCustomer maps the extracted customer reference to an account. A
// bare "demo" (or no reference at all) falls back to the seeded demo
// customer, matching the chat examples.
func (d *Dispatcher) resolveCustomer(ctx context.Context, p model.Params) (*model.Customer, error) {
	if p.CustomerID != nil {
		return d.store.GetCustomer(ctx, *p.CustomerID)
	}
	if p.Email != nil {
		return d.store.GetCustomerByEmail(ctx, *p.Email)
	}
	if p.Customer != nil {
		ref := strings.TrimSpace(*p.Customer)
		if strings.Contains(ref, "@") {
			return d.store.GetCustomerByEmail(ctx, ref)
		}
		if strings.HasPrefix(ref, "cust_") {
			return d.store.GetCustomer(ctx, ref)
		}
		if !strings.EqualFold(ref, "demo") {
			// Display-name references match against the customer list.
			customers, err := d.store.ListCustomers(ctx)
			if err != nil {
				return nil, err
			}
			for _, c := range customers {
				if strings.EqualFold(c.FullName(), ref) || strings.EqualFold(c.FirstName, ref) {
					return &c, nil
				}
			}
			return nil, nil
		}
	}
	return d.store.GetCustomerByEmail(ctx, d.defaultCustomer)
}

// updateStock converts the extracted delta or absolute level into the stock
// operation the catalog understands: delta maps to add (or subtract for a
// negative delta), stock_level maps to set.
func (d *Dispatcher) updateStock(ctx context.Context, p model.Params) *model.ActionResult {
	if p.ProductID == nil {
		if p.ProductMention != nil {
			return failureMsg(fmt.Sprintf("product %q not found in catalog", *p.ProductMention))
		}
		return failureMsg("no product given for the stock update")
	}

	var (
		qty int
		op  model.StockOp
	)
	switch {
	case p.Delta != nil && *p.Delta >= 0:
		qty, op = *p.Delta, model.StockOpAdd
	case p.Delta != nil:
		qty, op = -*p.Delta, model.StockOpSubtract
	case p.StockLevel != nil:
		qty, op = *p.StockLevel, model.StockOpSet
	default:
		return failureMsg("no stock change given")
	}

	product, err := d.store.UpdateStock(ctx, *p.ProductID, qty, op)
	if err != nil {
		return failure(err)
	}
	return success(product, fmt.Sprintf("%s now has %d units in stock", product.Name, product.StockQuantity))
}

func success(data interface{}, message string) *model.ActionResult {
	return &model.ActionResult{Success: true, Data: data, Message: message}
}

func failure(err error) *model.ActionResult {
	return &model.ActionResult{Success: false, Error: err.Error()}
}

func failureMsg(msg string) *model.ActionResult {
	return &model.ActionResult{Success: false, Error: msg}
}
