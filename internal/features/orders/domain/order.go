package domain

import (
	"errors"
	"strings"
	"time"
)

// OrderStatus is a lifecycle code reported by the commerce backend.
// The set below is closed on the backend side, but codes outside it are
// carried verbatim and rendered through the fallback in StatusDisplay.
type OrderStatus string

const (
	// OrderStatusConfirmed indicates the order has been accepted by the store.
	OrderStatusConfirmed OrderStatus = "order_confirmed"
	// OrderStatusProcessing indicates the order is being prepared.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped indicates the order has been handed to the carrier.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusOutForDelivery indicates the order is on its final leg.
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	// OrderStatusDelivered indicates the order has reached the customer.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled indicates the order was cancelled.
	OrderStatusCancelled OrderStatus = "cancelled"
	// OrderStatusReturned indicates the order was sent back by the customer.
	OrderStatusReturned OrderStatus = "returned"
	// OrderStatusRefundInitiated indicates a refund is in progress.
	OrderStatusRefundInitiated OrderStatus = "refund_initiated"
	// OrderStatusRefundCompleted indicates the refund has been paid out.
	OrderStatusRefundCompleted OrderStatus = "refund_completed"
)

// Fetch error kinds. The commerce adapter wraps every failure with exactly
// one of these so callers can classify without inspecting message text.
var (
	// ErrUnauthenticated is returned when the credential store holds no
	// usable token or customer identity. No network call is made.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrNetworkFailure is returned on transport-level errors.
	ErrNetworkFailure = errors.New("network failure")
	// ErrServerRejected is returned on a non-2xx status or a non-success
	// response envelope.
	ErrServerRejected = errors.New("server rejected request")
	// ErrMalformedResponse is returned when the payload cannot be decoded
	// or fails boundary validation.
	ErrMalformedResponse = errors.New("malformed response")
)

// Order represents a single entry in the customer's order history.
// Orders are immutable once fetched; a refresh replaces the whole list.
type Order struct {
	// ID is the backend's opaque identifier for the order.
	ID string `json:"id"`
	// OrderID is the human-facing order number, used as the list key.
	OrderID string `json:"order_id"`
	// Status is the lifecycle code (see OrderStatus constants).
	Status OrderStatus `json:"status"`
	// TotalAmount is the order total, two-decimal currency precision.
	TotalAmount float64 `json:"total_amount"`
	// Products are the line items. Never nil: a fetched order without
	// products carries an empty slice.
	Products []Product `json:"products"`
	// DeliveryAddress is the shipping destination.
	DeliveryAddress Address `json:"delivery_address"`
	// PaymentMethod is the payment code (cash, upi, card, wallet, ...).
	PaymentMethod string `json:"payment_method"`
	// CreatedAt is the placement timestamp. Display only; the server's
	// ordering of the list is preserved as-is.
	CreatedAt time.Time `json:"created_at"`
}

// Product is a single line item within an order.
type Product struct {
	// Name is the product's display name.
	Name string `json:"name"`
	// Price is the unit price.
	Price float64 `json:"price"`
	// Quantity is the number of units ordered.
	Quantity int `json:"quantity"`
	// Images are absolute image URLs, possibly empty.
	Images []string `json:"images"`
}

// Address is the structured postal address an order ships to.
type Address struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	Country      string `json:"country"`
}

// statusDisplay maps known lifecycle codes to their display text.
var statusDisplay = map[OrderStatus]string{
	OrderStatusConfirmed:       "Order Confirmed",
	OrderStatusProcessing:      "Processing",
	OrderStatusShipped:         "Shipped",
	OrderStatusOutForDelivery:  "Out for Delivery",
	OrderStatusDelivered:       "Delivered",
	OrderStatusCancelled:       "Cancelled",
	OrderStatusReturned:        "Returned",
	OrderStatusRefundInitiated: "Refund Initiated",
	OrderStatusRefundCompleted: "Refund Completed",
}

// paymentDisplay maps known payment codes to their display text.
var paymentDisplay = map[string]string{
	"cash":   "Cash on Delivery",
	"upi":    "UPI",
	"card":   "Card",
	"wallet": "Wallet",
}

// StatusDisplay returns the display text for a lifecycle code. Unknown codes
// are never dropped: they fall back to a title-cased form of the code.
func StatusDisplay(status OrderStatus) string {
	if text, ok := statusDisplay[status]; ok {
		return text
	}
	return titleFromCode(string(status))
}

// PaymentMethodDisplay returns the display text for a payment code, with the
// same title-cased fallback for codes outside the known set.
func PaymentMethodDisplay(code string) string {
	if text, ok := paymentDisplay[strings.ToLower(code)]; ok {
		return text
	}
	return titleFromCode(code)
}

// titleFromCode turns a snake_case code into display text, e.g.
// "refund_initiated" -> "Refund Initiated".
func titleFromCode(code string) string {
	words := strings.Split(strings.ToLower(strings.TrimSpace(code)), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
