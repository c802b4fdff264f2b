package billing

import (
	"fmt"
	"net/url"
	"strconv"
)

// URLBuilder implements CheckoutURLBuilder by appending the manager id to
// a provider-hosted checkout base URL's custom-fields query parameter
// (spec §7: "a freshly generated checkout URL carrying the manager ID in
// the custom-fields channel").
type URLBuilder struct {
	BaseURL string
}

func NewURLBuilder(baseURL string) *URLBuilder {
	return &URLBuilder{BaseURL: baseURL}
}

func (b *URLBuilder) BuildCheckoutURL(managerID int64) (string, error) {
	if b.BaseURL == "" {
		return "", fmt.Errorf("checkout base URL not configured")
	}
	u, err := url.Parse(b.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse checkout base URL: %w", err)
	}
	q := u.Query()
	q.Set("checkout[custom][manager_id]", strconv.FormatInt(managerID, 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
