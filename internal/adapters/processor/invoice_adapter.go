package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/kevin07696/settlement-reconciler/internal/domain"
	"github.com/kevin07696/settlement-reconciler/internal/domain/ports"
	"github.com/kevin07696/settlement-reconciler/pkg/observability"
	"github.com/kevin07696/settlement-reconciler/pkg/resilience"
)

const (
	invoicesPath    = "/v1/invoices"
	maxResponseSize = 4 << 20
)

// Config contains configuration for the invoice adapter
type Config struct {
	BaseURL string // e.g., "https://api.stripe.com"
	APIKey  string

	// RequestsPerSecond paces lookups; zero or less disables pacing
	RequestsPerSecond float64
	// MaxRetries bounds retries of 429 and 5xx responses and transport errors
	MaxRetries int
	// Backoff between retries; nil means resilience.ProcessorBackoff
	Backoff resilience.BackoffStrategy

	CircuitBreaker CircuitBreakerConfig
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:           "https://api.stripe.com",
		RequestsPerSecond: 20,
		MaxRetries:        3,
		CircuitBreaker:    DefaultCircuitBreakerConfig(),
	}
}

// InvoiceAdapter looks up customers' latest invoices on the processor's REST API.
// It implements ports.InvoiceLookup.
type InvoiceAdapter struct {
	config     Config
	httpClient ports.HTTPClient
	limiter    *rate.Limiter
	breaker    *CircuitBreaker
	backoff    resilience.BackoffStrategy
	logger     ports.Logger
}

var _ ports.InvoiceLookup = (*InvoiceAdapter)(nil)

// NewInvoiceAdapter creates a new invoice adapter
func NewInvoiceAdapter(config Config, httpClient ports.HTTPClient, logger ports.Logger) *InvoiceAdapter {
	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}

	backoff := config.Backoff
	if backoff == nil {
		backoff = resilience.ProcessorBackoff()
	}

	cbConfig := config.CircuitBreaker
	if cbConfig.MaxFailures == 0 {
		cbConfig = DefaultCircuitBreakerConfig()
	}
	cbConfig.IsFailure = isTransient

	breaker := NewCircuitBreaker(cbConfig)
	breaker.OnStateChange(func(from, to CircuitState) {
		logger.Warn("Processor circuit breaker state changed",
			ports.String("from", from.String()),
			ports.String("to", to.String()),
		)
	})

	return &InvoiceAdapter{
		config:     config,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
		breaker:    breaker,
		backoff:    backoff,
		logger:     logger,
	}
}

// Processor API response structures
type invoiceListResponse struct {
	Data []invoiceObject `json:"data"`
}

type invoiceObject struct {
	ID       string `json:"id"`
	Customer string `json:"customer"`
	Lines    struct {
		Data []invoiceLineObject `json:"data"`
	} `json:"lines"`
}

type invoiceLineObject struct {
	Amount   int64  `json:"amount"`
	Quantity *int64 `json:"quantity"`
	Price    *struct {
		Product string `json:"product"`
	} `json:"price"`
	Plan *struct {
		Product string `json:"product"`
	} `json:"plan"`
}

// apiError is a non-200 response from the processor
type apiError struct {
	StatusCode int
	Body       string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("processor returned status %d: %s", e.StatusCode, e.Body)
}

// LatestInvoice returns the customer's most recent invoice, or nil when the
// customer has none. Transient failures are retried with backoff.
func (a *InvoiceAdapter) LatestInvoice(ctx context.Context, customerID string) (*domain.Invoice, error) {
	var invoice *domain.Invoice

	err := resilience.Retry(ctx, a.config.MaxRetries, a.backoff, func(attempt int) (bool, error) {
		if attempt > 0 {
			observability.RecordProcessorRetry(invoicesPath)
			a.logger.Debug("Retrying invoice lookup",
				ports.String("customer_id", customerID),
				ports.Int("attempt", attempt),
			)
		}
		if err := a.limiter.Wait(ctx); err != nil {
			return false, err
		}

		err := a.breaker.Call(func() error {
			var fetchErr error
			invoice, fetchErr = a.fetchLatest(ctx, customerID)
			return fetchErr
		})
		return isTransient(err), err
	})
	if err != nil {
		if domain.IsDomainError(err, domain.ErrorCodeInvoiceMalformed) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrorCodeInvoiceLookupFailed, "invoice lookup failed", err).
			WithDetail("customer_id", customerID)
	}

	return invoice, nil
}

func (a *InvoiceAdapter) fetchLatest(ctx context.Context, customerID string) (*domain.Invoice, error) {
	reqURL, err := url.Parse(strings.TrimRight(a.config.BaseURL, "/") + invoicesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse endpoint URL: %w", err)
	}
	query := reqURL.Query()
	query.Set("customer", customerID)
	query.Set("limit", "1")
	reqURL.RawQuery = query.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.config.APIKey)

	startTime := time.Now()
	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		observability.RecordProcessorRequest(invoicesPath, 0, startTime)
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()
	observability.RecordProcessorRequest(invoicesPath, resp.StatusCode, startTime)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	a.logger.Debug("Processor invoice response",
		ports.String("customer_id", customerID),
		ports.Int("status_code", resp.StatusCode),
		ports.String("elapsed", time.Since(startTime).String()),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, &apiError{StatusCode: resp.StatusCode, Body: truncate(string(body), 512)}
	}

	var list invoiceListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeInvoiceMalformed, "failed to parse invoice response", err).
			WithDetail("customer_id", customerID)
	}
	if len(list.Data) == 0 {
		return nil, nil
	}

	return toDomainInvoice(customerID, list.Data[0])
}

// toDomainInvoice converts line amounts from minor units to major units
func toDomainInvoice(customerID string, obj invoiceObject) (*domain.Invoice, error) {
	invoice := &domain.Invoice{
		ID:         obj.ID,
		CustomerID: obj.Customer,
		Lines:      make([]domain.InvoiceLine, 0, len(obj.Lines.Data)),
	}
	if invoice.CustomerID == "" {
		invoice.CustomerID = customerID
	}

	for i, line := range obj.Lines.Data {
		var quantity int64
		if line.Quantity != nil {
			quantity = *line.Quantity
		}
		if quantity < 0 {
			return nil, domain.NewDomainError(domain.ErrorCodeInvoiceMalformed, "invoice line has negative quantity").
				WithDetail("invoice_id", obj.ID).
				WithDetail("line", i)
		}

		invoice.Lines = append(invoice.Lines, domain.InvoiceLine{
			ProductID: line.productID(),
			Quantity:  quantity,
			Amount:    decimal.New(line.Amount, -2),
		})
	}

	return invoice, nil
}

func (l invoiceLineObject) productID() string {
	if l.Price != nil && l.Price.Product != "" {
		return l.Price.Product
	}
	if l.Plan != nil {
		return l.Plan.Product
	}
	return ""
}

// isTransient reports whether err is worth retrying and counts against the
// circuit breaker: transport failures, 429 and 5xx.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrTooManyRequests) {
		return false
	}
	if domain.IsDomainError(err, domain.ErrorCodeInvoiceMalformed) {
		return false
	}

	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
