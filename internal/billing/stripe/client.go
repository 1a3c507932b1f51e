package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mentorlane/mentorlane/internal/billing/domain"
)

const apiBaseURL = "https://api.stripe.com/v1"

// Client talks to the Stripe REST API with form-encoded requests. It
// implements domain.ProviderClient.
type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(secretKey string, log *zap.Logger) *Client {
	return &Client{
		secretKey: strings.TrimSpace(secretKey),
		baseURL:   apiBaseURL,
		httpClient: &http.Client{
			Timeout: 12 * time.Second,
		},
		log: log.Named("billing.stripe"),
	}
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (c *Client) doRequest(ctx context.Context, method, path string, form url.Values, idempotencyKey string, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr apiErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error.Message != "" {
			c.log.Warn("provider request rejected",
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
				zap.String("error_type", apiErr.Error.Type),
				zap.String("error_code", apiErr.Error.Code),
			)
			return fmt.Errorf("%w: %s", domain.ErrProviderFailure, apiErr.Error.Message)
		}
		return fmt.Errorf("%w: status %d", domain.ErrProviderFailure, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrProviderFailure, err)
	}
	return nil
}

type checkoutSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (c *Client) CreateCheckoutSession(ctx context.Context, params domain.CheckoutSessionParams) (*domain.CheckoutSessionResult, error) {
	form := url.Values{}
	form.Set("mode", params.Mode)
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set("line_items[0][quantity]", "1")

	if params.PriceID != "" {
		form.Set("line_items[0][price]", params.PriceID)
	} else {
		form.Set("line_items[0][price_data][currency]", params.Currency)
		form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(params.UnitAmount, 10))
		form.Set("line_items[0][price_data][product_data][name]", params.ProductName)
		if params.ProductDesc != "" {
			form.Set("line_items[0][price_data][product_data][description]", params.ProductDesc)
		}
	}

	if params.CustomerEmail != "" {
		form.Set("customer_email", params.CustomerEmail)
	}
	for key, value := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}
	for key, value := range params.SubscriptionMetadata {
		form.Set(fmt.Sprintf("subscription_data[metadata][%s]", key), value)
	}

	var resp checkoutSessionResponse
	if err := c.doRequest(ctx, http.MethodPost, "/checkout/sessions", form, params.IdempotencyKey, &resp); err != nil {
		return nil, err
	}
	return &domain.CheckoutSessionResult{ID: resp.ID, URL: resp.URL}, nil
}

func (c *Client) RetrieveSubscription(ctx context.Context, id string) (*domain.SubscriptionSnapshot, error) {
	var sub stripeSubscription
	path := "/subscriptions/" + url.PathEscape(id)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, "", &sub); err != nil {
		return nil, err
	}
	return subscriptionSnapshot(sub), nil
}

func (c *Client) UpdateSubscription(ctx context.Context, id string, cancelAtPeriodEnd bool) (*domain.SubscriptionSnapshot, error) {
	form := url.Values{}
	form.Set("cancel_at_period_end", strconv.FormatBool(cancelAtPeriodEnd))

	var sub stripeSubscription
	path := "/subscriptions/" + url.PathEscape(id)
	if err := c.doRequest(ctx, http.MethodPost, path, form, "", &sub); err != nil {
		return nil, err
	}
	return subscriptionSnapshot(sub), nil
}

type objectIDResponse struct {
	ID string `json:"id"`
}

func (c *Client) CreateProduct(ctx context.Context, params domain.ProductParams) (string, error) {
	form := url.Values{}
	form.Set("name", params.Name)
	if params.Description != "" {
		form.Set("description", params.Description)
	}
	for key, value := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	var resp objectIDResponse
	if err := c.doRequest(ctx, http.MethodPost, "/products", form, "", &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *Client) CreatePrice(ctx context.Context, params domain.PriceParams) (string, error) {
	form := url.Values{}
	form.Set("product", params.ProductID)
	form.Set("currency", params.Currency)
	form.Set("unit_amount", strconv.FormatInt(params.UnitAmount, 10))
	if params.Interval != "" {
		form.Set("recurring[interval]", params.Interval)
	}
	for key, value := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	var resp objectIDResponse
	if err := c.doRequest(ctx, http.MethodPost, "/prices", form, "", &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

var _ domain.ProviderClient = (*Client)(nil)
