package domain

import "strings"

// FilterAll is the sentinel label that selects every order. Matching is
// case-sensitive: only the exact label bypasses status filtering.
const FilterAll = "All"

// FilterLabels is the label set offered to the view, in display order.
var FilterLabels = []string{
	FilterAll,
	"Order Confirmed",
	"Processing",
	"Shipped",
	"Out for Delivery",
	"Delivered",
	"Cancelled",
	"Returned",
	"Refund Initiated",
	"Refund Completed",
}

// NormalizeFilterLabel converts a human-readable filter label into a status
// code: lower-cased, whitespace runs collapsed to a single underscore.
// "Out for Delivery" -> "out_for_delivery".
func NormalizeFilterLabel(label string) OrderStatus {
	fields := strings.Fields(strings.ToLower(label))
	return OrderStatus(strings.Join(fields, "_"))
}

// VisibleOrders derives the subset of orders matching the given filter label.
// The FilterAll sentinel returns the input unchanged. Any other label is
// normalized to a status code and matched exactly, preserving relative order.
// A label matching no order yields an empty slice, not an error.
func VisibleOrders(orders []Order, label string) []Order {
	if label == FilterAll {
		return orders
	}

	status := NormalizeFilterLabel(label)
	visible := make([]Order, 0, len(orders))
	for _, order := range orders {
		if order.Status == status {
			visible = append(visible, order)
		}
	}
	return visible
}
