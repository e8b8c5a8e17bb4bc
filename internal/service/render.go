package service

import (
	"fmt"
	"strings"

	"egile/internal/model"
)

// helpReplies are the guidance texts for informational actions. Each echoes
// the recognized topic and shows an example phrasing, per the original
// assistant's behavior: a vague request gets instructions, never an error.
var helpReplies = map[model.Action]string{
	model.ActionHelpCreateCustomer: "To create a customer I need an email and a name. For example:\n" +
		`  "create customer jane@example.com Jane Doe"` + "\n" +
		"You can add a phone number at the end.",
	model.ActionHelpCreateOrder: "To place an order, tell me the customer and what they want. For example:\n" +
		`  "create order for demo for 2 microphone Egile and 1 Test Laptop"` + "\n" +
		"I match product names against the catalog, so close spellings work.",
	model.ActionHelpCreateProduct: "To create a product I need its details in this form:\n" +
		`  create product "Gaming Headset" 89.99 HEAD-GAME-001 electronics 25` + "\n" +
		"That is: name in quotes, price, SKU, category and starting stock.",
	model.ActionHelpChooseCustomerContact: "Look the customer up first, for example " +
		`"get customer jane@example.com"` + ". Email is the reliable channel; " +
		"use phone only when a number is on file.",
	model.ActionUnknown: "I can help with your store. Try \"list products\", " +
		"\"show customers\", \"check low stock items\" or \"create order for demo for 2 microphone Egile\".",
}

const maxListedRows = 5

// RenderReply produces the user-facing reply for one classified intent and
// its backend outcome. It needs nothing beyond the intent and the result, so
// any transport can render the same text.
func RenderReply(intent *model.IntentResult, result *model.ActionResult) string {
	if reply, ok := helpReplies[intent.Action]; ok {
		return reply
	}
	if result == nil {
		// Actionable intent the caller chose not to execute.
		return fmt.Sprintf("Understood: %s.", intent.Intent)
	}
	if !result.Success {
		return fmt.Sprintf("Sorry, that didn't work: %s", result.Error)
	}

	switch intent.Action {
	case model.ActionListProducts, model.ActionSearchProducts:
		products, _ := result.Data.([]model.Product)
		if len(products) == 0 {
			return "No products found. Would you like to create some?"
		}
		var b strings.Builder
		fmt.Fprintf(&b, "I found %d product(s):\n", len(products))
		for i, p := range products {
			if i == maxListedRows {
				fmt.Fprintf(&b, "... and %d more.", len(products)-maxListedRows)
				break
			}
			fmt.Fprintf(&b, "- %s (%s) $%.2f, stock %d\n", p.Name, p.SKU, p.Price, p.StockQuantity)
		}
		return strings.TrimRight(b.String(), "\n")

	case model.ActionGetProduct:
		p, ok := result.Data.(*model.Product)
		if !ok {
			return result.Message
		}
		return fmt.Sprintf("%s (%s): $%.2f %s, %d in stock, category %s.",
			p.Name, p.SKU, p.Price, p.Currency, p.StockQuantity, p.Category)

	case model.ActionListCustomers:
		customers, _ := result.Data.([]model.Customer)
		if len(customers) == 0 {
			return "No customers yet. Ready to add your first customer?"
		}
		var b strings.Builder
		fmt.Fprintf(&b, "I found %d customer(s):\n", len(customers))
		for i, c := range customers {
			if i == maxListedRows {
				fmt.Fprintf(&b, "... and %d more.", len(customers)-maxListedRows)
				break
			}
			fmt.Fprintf(&b, "- %s <%s>\n", c.FullName(), c.Email)
		}
		return strings.TrimRight(b.String(), "\n")

	case model.ActionGetCustomer:
		c, ok := result.Data.(*model.Customer)
		if !ok {
			return result.Message
		}
		reply := fmt.Sprintf("%s <%s>, customer id %s.", c.FullName(), c.Email, c.ID)
		if c.Phone != nil {
			reply += fmt.Sprintf(" Phone: %s.", *c.Phone)
		}
		return reply

	case model.ActionCreateCustomer, model.ActionCreateProduct:
		return "Done! " + result.Message + "."

	case model.ActionCreateOrder:
		order, ok := result.Data.(*model.Order)
		if !ok {
			return "Done! " + result.Message + "."
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Order %s placed, total %.2f %s:\n", order.ID, order.TotalAmount, order.Currency)
		for _, it := range order.Items {
			fmt.Fprintf(&b, "- %d x %s at $%.2f\n", it.Quantity, it.ProductID, it.UnitPrice)
		}
		return strings.TrimRight(b.String(), "\n")

	case model.ActionGetOrder:
		order, ok := result.Data.(*model.Order)
		if !ok {
			return result.Message
		}
		return fmt.Sprintf("Order %s for customer %s: %d item(s), total %.2f %s, status %s.",
			order.ID, order.CustomerID, len(order.Items), order.TotalAmount, order.Currency, order.Status)

	case model.ActionListOrders:
		orders, _ := result.Data.([]model.Order)
		if len(orders) == 0 {
			return "No orders yet."
		}
		var b strings.Builder
		fmt.Fprintf(&b, "I found %d order(s):\n", len(orders))
		for i, o := range orders {
			if i == maxListedRows {
				fmt.Fprintf(&b, "... and %d more.", len(orders)-maxListedRows)
				break
			}
			fmt.Fprintf(&b, "- %s: %.2f %s, %s\n", o.ID, o.TotalAmount, o.Currency, o.Status)
		}
		return strings.TrimRight(b.String(), "\n")

	case model.ActionUpdateStock:
		return "Stock updated: " + result.Message + "."

	case model.ActionGetLowStockProducts:
		products, _ := result.Data.([]model.Product)
		if len(products) == 0 {
			return "Great news, all products are well stocked."
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%d product(s) are running low:\n", len(products))
		for _, p := range products {
			fmt.Fprintf(&b, "- %s: only %d left\n", p.Name, p.StockQuantity)
		}
		return strings.TrimRight(b.String(), "\n")

	case model.ActionGetBestCustomer:
		best, ok := result.Data.(*model.CustomerSpend)
		if !ok {
			return "No orders yet, so no best customer to report."
		}
		return fmt.Sprintf("Your best customer is %s <%s> with %d order(s) totalling %.2f.",
			best.FullName(), best.Email, best.OrderCount, best.TotalSpent)

	case model.ActionGetExpensiveProducts:
		products, _ := result.Data.([]model.Product)
		if len(products) == 0 {
			return "No products in the catalog yet."
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Most expensive products:\n")
		for _, p := range products {
			fmt.Fprintf(&b, "- %s: $%.2f\n", p.Name, p.Price)
		}
		return strings.TrimRight(b.String(), "\n")

	case model.ActionGetMostSoldProducts:
		sales, _ := result.Data.([]model.ProductSales)
		if len(sales) == 0 {
			return "No sales recorded yet."
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Best sellers:\n")
		for _, s := range sales {
			fmt.Fprintf(&b, "- %s: %d unit(s) sold\n", s.Name, s.UnitsSold)
		}
		return strings.TrimRight(b.String(), "\n")
	}

	if result.Message != "" {
		return "Done! " + result.Message + "."
	}
	return "Done!"
}
