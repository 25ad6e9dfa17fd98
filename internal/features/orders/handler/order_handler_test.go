package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"order-history/internal/features/orders/domain"
	"order-history/internal/features/orders/poller"
	"order-history/internal/features/orders/ports"
	"order-history/internal/features/orders/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider is a hand-rolled OrderProvider for handler tests.
type stubProvider struct {
	mu          sync.Mutex
	orders      []domain.Order
	fetchErr    error
	cancelErr   error
	cancelledID string
}

func (s *stubProvider) FetchOrders(ctx context.Context, creds ports.Credentials) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.orders, nil
}

func (s *stubProvider) UpdateOrderStatus(ctx context.Context, creds ports.Credentials, orderID string, status domain.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelErr != nil {
		return s.cancelErr
	}
	s.cancelledID = orderID
	return nil
}

// stubCredentials is a hand-rolled CredentialStore for handler tests.
type stubCredentials struct {
	creds ports.Credentials
	err   error
}

func (s *stubCredentials) Credentials(ctx context.Context) (ports.Credentials, error) {
	if s.err != nil {
		return ports.Credentials{}, s.err
	}
	return s.creds, nil
}

func newTestApp(provider *stubProvider, credStore *stubCredentials) (*fiber.App, *poller.Poller) {
	svc := service.NewOrderService(provider, credStore)
	p := poller.New(svc, time.Hour)
	h := NewOrderHandler(svc, p)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("requestid", "test-ray-id")
		return c.Next()
	})
	app.Get("/orders", h.GetOrders)
	app.Post("/orders/refresh", h.Refresh)
	app.Put("/orders/filter", h.SetFilter)
	app.Post("/orders/:id/cancel", h.CancelOrder)

	return app, p
}

func authedCreds() *stubCredentials {
	return &stubCredentials{creds: ports.Credentials{Token: "tok", CustomerID: "cust-1"}}
}

// TestOrderHandler_GetOrders verifies the snapshot endpoint.
func TestOrderHandler_GetOrders(t *testing.T) {
	app, _ := newTestApp(&stubProvider{}, authedCreds())

	req := httptest.NewRequest("GET", "/orders", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var view poller.View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, domain.FilterAll, view.Filter)
	assert.NotNil(t, view.Orders)
	assert.Empty(t, view.Orders)
	assert.Equal(t, domain.FilterLabels, view.FilterLabels)
}

// TestOrderHandler_Refresh_Success verifies a manual refresh returns the new
// snapshot.
func TestOrderHandler_Refresh_Success(t *testing.T) {
	provider := &stubProvider{orders: []domain.Order{
		{OrderID: "ORD-1", Status: domain.OrderStatusProcessing, Products: []domain.Product{}},
	}}
	app, _ := newTestApp(provider, authedCreds())

	req := httptest.NewRequest("POST", "/orders/refresh", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var view poller.View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	require.Len(t, view.Orders, 1)
	assert.Equal(t, "ORD-1", view.Orders[0].OrderID)
	assert.Empty(t, view.Error)
}

// TestOrderHandler_Refresh_Unauthenticated verifies the 401 mapping when no
// credentials are stored.
func TestOrderHandler_Refresh_Unauthenticated(t *testing.T) {
	credStore := &stubCredentials{err: fmt.Errorf("%w: no token stored", domain.ErrUnauthenticated)}
	app, _ := newTestApp(&stubProvider{}, credStore)

	req := httptest.NewRequest("POST", "/orders/refresh", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Contains(t, errResp.Message, "no token stored")
	assert.Equal(t, "test-ray-id", errResp.RayID)
}

// TestOrderHandler_Refresh_BackendDown verifies the 504 mapping on a
// transport failure.
func TestOrderHandler_Refresh_BackendDown(t *testing.T) {
	provider := &stubProvider{fetchErr: fmt.Errorf("%w: connection refused", domain.ErrNetworkFailure)}
	app, _ := newTestApp(provider, authedCreds())

	req := httptest.NewRequest("POST", "/orders/refresh", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusGatewayTimeout, resp.StatusCode)
}

// TestOrderHandler_SetFilter verifies filter selection and validation.
func TestOrderHandler_SetFilter(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		provider := &stubProvider{orders: []domain.Order{
			{OrderID: "ORD-1", Status: domain.OrderStatusProcessing},
			{OrderID: "ORD-2", Status: domain.OrderStatusDelivered},
		}}
		app, p := newTestApp(provider, authedCreds())
		require.NoError(t, p.Refresh(context.Background()))

		req := httptest.NewRequest("PUT", "/orders/filter", strings.NewReader(`{"label": "Delivered"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var view poller.View
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
		assert.Equal(t, "Delivered", view.Filter)
		require.Len(t, view.Orders, 1)
		assert.Equal(t, "ORD-2", view.Orders[0].OrderID)
	})

	t.Run("MissingLabel", func(t *testing.T) {
		app, _ := newTestApp(&stubProvider{}, authedCreds())

		req := httptest.NewRequest("PUT", "/orders/filter", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var errResp ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
		assert.Contains(t, errResp.Message, "filter label is required")
	})

	t.Run("BadBody", func(t *testing.T) {
		app, _ := newTestApp(&stubProvider{}, authedCreds())

		req := httptest.NewRequest("PUT", "/orders/filter", strings.NewReader(`not json`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

// TestOrderHandler_CancelOrder verifies cancellation plus the follow-up
// refresh.
func TestOrderHandler_CancelOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		provider := &stubProvider{orders: []domain.Order{
			{OrderID: "ORD-1", Status: domain.OrderStatusCancelled},
		}}
		app, _ := newTestApp(provider, authedCreds())

		req := httptest.NewRequest("POST", "/orders/ORD-1/cancel", nil)
		resp, err := app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "ORD-1", provider.cancelledID)

		// The response snapshot reflects the post-cancel refresh.
		var view poller.View
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
		require.Len(t, view.Orders, 1)
		assert.Equal(t, domain.OrderStatusCancelled, view.Orders[0].Status)
	})

	t.Run("Rejected", func(t *testing.T) {
		provider := &stubProvider{cancelErr: fmt.Errorf("%w: order already delivered", domain.ErrServerRejected)}
		app, _ := newTestApp(provider, authedCreds())

		req := httptest.NewRequest("POST", "/orders/ORD-1/cancel", nil)
		resp, err := app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

		var errResp ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
		assert.Contains(t, errResp.Message, "already delivered")
		assert.Equal(t, "test-ray-id", errResp.RayID)
	})
}
