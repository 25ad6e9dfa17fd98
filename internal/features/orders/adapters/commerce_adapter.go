package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"order-history/internal/core/config"
	"order-history/internal/core/httpclient"
	"order-history/internal/core/locator"
	"order-history/internal/core/logger"
	"order-history/internal/features/orders/domain"
	"order-history/internal/features/orders/ports"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// CommerceAdapter implements the OrderProvider interface against the
// commerce backend's REST API.
type CommerceAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// locator resolves endpoint and image URLs.
	locator locator.Locator
	// validate rejects malformed wire payloads at the boundary.
	validate *validator.Validate
}

// NewCommerceAdapter creates a new instance of CommerceAdapter.
func NewCommerceAdapter(cfg config.CommerceConfig) *CommerceAdapter {
	return &CommerceAdapter{
		client:   httpclient.NewClient(cfg.HTTPTimeout()),
		locator:  locator.New(cfg.APIURL, cfg.ImageOrigin),
		validate: validator.New(),
	}
}

// FetchOrders retrieves the customer's order history and maps it to domain
// entities. Exactly one GET is issued; there is no retry and no backoff.
// Every failure is wrapped with one of the domain fetch error kinds.
func (a *CommerceAdapter) FetchOrders(ctx context.Context, creds ports.Credentials) ([]domain.Order, error) {
	url := a.locator.CustomerOrdersURL(creds.CustomerID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", domain.ErrNetworkFailure, err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.Token)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	var envelope ordersEnvelope
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// Best effort: surface the server's own error text when it sent one.
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		if envelope.Error != "" {
			return nil, fmt.Errorf("%w: %s (status %d)", domain.ErrServerRejected, envelope.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: status %d", domain.ErrServerRejected, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	if !envelope.Success {
		if envelope.Error != "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrServerRejected, envelope.Error)
		}
		return nil, fmt.Errorf("%w: success flag not set", domain.ErrServerRejected)
	}

	orders := make([]domain.Order, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		if err := a.validate.Struct(raw); err != nil {
			return nil, fmt.Errorf("%w: order %q: %v", domain.ErrMalformedResponse, raw.OrderID, err)
		}
		orders = append(orders, a.mapToDomain(raw))
	}

	return orders, nil
}

// UpdateOrderStatus sets a new lifecycle status on a single order, e.g. a
// customer-initiated cancellation. The local order list is not touched here;
// callers refresh after a successful update.
func (a *CommerceAdapter) UpdateOrderStatus(ctx context.Context, creds ports.Credentials, orderID string, status domain.OrderStatus) error {
	url := a.locator.StatusUpdateURL(orderID)

	body, err := json.Marshal(statusUpdateRequest{Status: string(status)})
	if err != nil {
		return fmt.Errorf("%w: failed to encode request: %v", domain.ErrMalformedResponse, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", domain.ErrNetworkFailure, err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	var envelope ordersEnvelope
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		if envelope.Error != "" {
			return fmt.Errorf("%w: %s (status %d)", domain.ErrServerRejected, envelope.Error, resp.StatusCode)
		}
		return fmt.Errorf("%w: status %d", domain.ErrServerRejected, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if !envelope.Success {
		if envelope.Error != "" {
			return fmt.Errorf("%w: %s", domain.ErrServerRejected, envelope.Error)
		}
		return fmt.Errorf("%w: success flag not set", domain.ErrServerRejected)
	}

	return nil
}

// HealthCheck verifies that the commerce backend is reachable. Any HTTP
// response counts as reachable; only transport failures are reported.
func (a *CommerceAdapter) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.locator.APIBaseURL, nil)
	if err != nil {
		return fmt.Errorf("health check failed to create request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check request failed: %w", err)
	}
	resp.Body.Close()

	return nil
}

// mapToDomain converts a raw backend order record into a domain Order.
// All fields pass through from the wire format; the only defaulting is the
// products slice, which is never nil downstream, and image references, which
// are resolved to absolute URLs.
func (a *CommerceAdapter) mapToDomain(raw rawOrder) domain.Order {
	products := make([]domain.Product, 0, len(raw.Products))
	for _, p := range raw.Products {
		images := make([]string, 0, len(p.Images))
		for _, ref := range p.Images {
			images = append(images, a.locator.ResolveImageURL(ref))
		}
		products = append(products, domain.Product{
			Name:     p.Name,
			Price:    p.Price,
			Quantity: p.Quantity,
			Images:   images,
		})
	}

	createdAt := time.Time(raw.CreatedAt)
	if createdAt.IsZero() {
		createdAt = time.Time(raw.OrderDate)
	}

	return domain.Order{
		ID:          raw.ID,
		OrderID:     raw.OrderID,
		Status:      domain.OrderStatus(raw.Status),
		TotalAmount: raw.TotalAmount,
		Products:    products,
		DeliveryAddress: domain.Address{
			Name:         raw.DeliveryAddress.Name,
			Phone:        raw.DeliveryAddress.Phone,
			AddressLine1: raw.DeliveryAddress.AddressLine1,
			AddressLine2: raw.DeliveryAddress.AddressLine2,
			City:         raw.DeliveryAddress.City,
			State:        raw.DeliveryAddress.State,
			Pincode:      raw.DeliveryAddress.Pincode,
			Country:      raw.DeliveryAddress.Country,
		},
		PaymentMethod: raw.PaymentMethod,
		CreatedAt:     createdAt,
	}
}

// internal structs for mapping

// ordersEnvelope is the backend's response wrapper convention.
type ordersEnvelope struct {
	// Success indicates whether the request was served.
	Success bool `json:"success"`
	// Data carries the raw order records on success.
	Data []rawOrder `json:"data"`
	// Error carries the server's error text on failure.
	Error string `json:"error"`
}

// statusUpdateRequest is the body of the status-update endpoint.
type statusUpdateRequest struct {
	Status string `json:"status"`
}

// rawOrder represents the JSON structure of an order from the commerce API.
type rawOrder struct {
	// ID is the backend's opaque order identifier.
	ID string `json:"_id"`
	// OrderID is the human-facing order number.
	OrderID string `json:"orderId" validate:"required"`
	// Status is the lifecycle code. Unknown codes are preserved verbatim.
	Status string `json:"status" validate:"required"`
	// TotalAmount is the order total.
	TotalAmount float64 `json:"totalAmount" validate:"gte=0"`
	// Products are the line items; may be absent on the wire.
	Products []rawProduct `json:"products" validate:"omitempty,dive"`
	// DeliveryAddress is the shipping destination.
	DeliveryAddress rawAddress `json:"deliveryAddress"`
	// PaymentMethod is the payment code.
	PaymentMethod string `json:"paymentMethod"`
	// CreatedAt is the placement timestamp.
	CreatedAt apiTime `json:"createdAt"`
	// OrderDate is the backend's alternate name for the placement timestamp.
	OrderDate apiTime `json:"orderDate"`
}

// rawProduct represents a line item on the wire.
type rawProduct struct {
	// Name is the product name.
	Name string `json:"name" validate:"required"`
	// Price is the unit price.
	Price float64 `json:"price" validate:"gte=0"`
	// Quantity is the number of units ordered.
	Quantity int `json:"quantity" validate:"gt=0"`
	// Images holds image references, possibly relative.
	Images []string `json:"images"`
}

// rawAddress represents the shipping address on the wire.
type rawAddress struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	Country      string `json:"country"`
}

// apiTime handles the backend's timestamp formats.
type apiTime time.Time

// UnmarshalJSON parses RFC3339 timestamps, falling back to the backend's
// zone-less variant. Absent or unparsable values decode to the zero time
// rather than failing the whole list.
func (t *apiTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), "\"")
	if s == "null" || s == "" {
		*t = apiTime(time.Time{})
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		parsed, err = time.Parse("2006-01-02T15:04:05", s)
	}
	if err != nil {
		logger.Get().Warn("failed to parse order date", zap.String("date", s), zap.Error(err))
		*t = apiTime(time.Time{})
		return nil
	}
	*t = apiTime(parsed)
	return nil
}
