package service

import (
	"context"
	"fmt"

	"order-history/internal/features/orders/domain"
	"order-history/internal/features/orders/ports"
)

// OrderService handles the business logic for retrieving the customer's
// order history and acting on individual orders. Credentials are resolved
// on every call: the fetch is gated on the store before the provider is
// touched, so an unauthenticated session never reaches the network.
type OrderService struct {
	// provider is the interface for order data on the commerce backend.
	provider ports.OrderProvider
	// credentials is the read-only session credential source.
	credentials ports.CredentialStore
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(provider ports.OrderProvider, credentials ports.CredentialStore) *OrderService {
	return &OrderService{
		provider:    provider,
		credentials: credentials,
	}
}

// FetchOrders retrieves the full order history for the stored session.
// The returned slice preserves the backend's ordering; filtering is a pure
// view derivation and never happens here.
func (s *OrderService) FetchOrders(ctx context.Context) ([]domain.Order, error) {
	creds, err := s.credentials.Credentials(ctx)
	if err != nil {
		return nil, err
	}

	orders, err := s.provider.FetchOrders(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, nil
}

// CancelOrder asks the backend to mark an order cancelled. The local order
// list is never mutated here; callers trigger a refresh after success so the
// list is replaced wholesale by the backend's view.
func (s *OrderService) CancelOrder(ctx context.Context, orderID string) error {
	creds, err := s.credentials.Credentials(ctx)
	if err != nil {
		return err
	}

	if err := s.provider.UpdateOrderStatus(ctx, creds, orderID, domain.OrderStatusCancelled); err != nil {
		return fmt.Errorf("failed to cancel order %s: %w", orderID, err)
	}

	return nil
}
