package locator

import (
	"fmt"
	"net/url"
	"strings"
)

// Locator resolves commerce backend endpoints and rewrites image references
// into absolute URLs the client can load.
type Locator struct {
	// APIBaseURL is the root of the commerce API, without trailing slash.
	APIBaseURL string
	// ImageOrigin is the production origin used for image URLs, replacing
	// any localhost origin the backend leaks into image paths.
	ImageOrigin string
}

// New creates a Locator, trimming trailing slashes so endpoint joining is
// uniform regardless of how the URLs were configured.
func New(apiBaseURL, imageOrigin string) Locator {
	return Locator{
		APIBaseURL:  strings.TrimRight(apiBaseURL, "/"),
		ImageOrigin: strings.TrimRight(imageOrigin, "/"),
	}
}

// CustomerOrdersURL returns the endpoint listing a customer's orders.
func (l Locator) CustomerOrdersURL(customerID string) string {
	return fmt.Sprintf("%s/api/orders/customer/%s", l.APIBaseURL, customerID)
}

// StatusUpdateURL returns the endpoint that updates a single order's status.
func (l Locator) StatusUpdateURL(orderID string) string {
	return fmt.Sprintf("%s/api/orders/admin/update-status/%s", l.APIBaseURL, orderID)
}

// ResolveImageURL turns a possibly-relative image reference into an absolute
// URL on the image origin. Rules, in order:
//   - empty reference stays empty;
//   - an absolute URL pointing at localhost/127.0.0.1 keeps its path but is
//     moved onto the image origin; other absolute URLs pass through;
//   - references starting with "/uploads/" or "uploads/" are joined to the
//     origin with a single leading slash;
//   - anything else is assumed to be a bare filename under /uploads/.
func (l Locator) ResolveImageURL(ref string) string {
	if ref == "" {
		return ""
	}

	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		parsed, err := url.Parse(ref)
		if err != nil {
			return ref
		}
		if isLocalHost(parsed.Hostname()) {
			return l.ImageOrigin + parsed.RequestURI()
		}
		return ref
	}

	if strings.HasPrefix(ref, "/uploads/") {
		return l.ImageOrigin + ref
	}
	if strings.HasPrefix(ref, "uploads/") {
		return l.ImageOrigin + "/" + ref
	}

	return l.ImageOrigin + "/uploads/" + strings.TrimPrefix(ref, "/")
}

// isLocalHost reports whether a hostname refers to a local development origin.
func isLocalHost(host string) bool {
	return host == "localhost" || host == "127.0.0.1"
}
