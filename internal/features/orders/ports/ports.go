package ports

import (
	"context"

	"order-history/internal/features/orders/domain"
)

// Credentials is what the credential store yields for an authenticated
// customer session.
type Credentials struct {
	// Token is the bearer token attached to every backend call.
	Token string
	// CustomerID identifies the customer whose orders are fetched.
	CustomerID string
}

// CredentialStore provides read-only access to the persisted session
// credentials. This is a Secondary Port (Driven Port).
type CredentialStore interface {
	// Credentials returns the stored token and customer identity.
	// Returns domain.ErrUnauthenticated when either is missing.
	Credentials(ctx context.Context) (Credentials, error)
}

// OrderProvider retrieves and mutates order state on the commerce backend.
// This is a Secondary Port (Driven Port).
type OrderProvider interface {
	// FetchOrders retrieves the customer's full order history, normalized.
	// The returned slice preserves the backend's ordering.
	FetchOrders(ctx context.Context, creds Credentials) ([]domain.Order, error)
	// UpdateOrderStatus sets a new lifecycle status on a single order.
	UpdateOrderStatus(ctx context.Context, creds Credentials, orderID string, status domain.OrderStatus) error
}

// OrderSource is the fetch trigger the refresh scheduler drives. The order
// service is the production implementation.
type OrderSource interface {
	// FetchOrders returns the current order history for the stored session.
	FetchOrders(ctx context.Context) ([]domain.Order, error)
}
