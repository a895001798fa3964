package mocks

import (
	"context"
	"sync"

	"github.com/kevin07696/settlement-reconciler/internal/domain"
)

// MockInvoiceLookup serves invoices from memory and records every call
type MockInvoiceLookup struct {
	mu       sync.Mutex
	Invoices map[string]*domain.Invoice
	Errors   map[string]error
	Calls    []string
}

// NewMockInvoiceLookup creates an empty lookup; unknown customers have no invoice
func NewMockInvoiceLookup() *MockInvoiceLookup {
	return &MockInvoiceLookup{
		Invoices: make(map[string]*domain.Invoice),
		Errors:   make(map[string]error),
	}
}

// WithInvoice registers the latest invoice for its customer
func (m *MockInvoiceLookup) WithInvoice(inv *domain.Invoice) *MockInvoiceLookup {
	m.Invoices[inv.CustomerID] = inv
	return m
}

// WithError makes lookups for customerID fail
func (m *MockInvoiceLookup) WithError(customerID string, err error) *MockInvoiceLookup {
	m.Errors[customerID] = err
	return m
}

func (m *MockInvoiceLookup) LatestInvoice(_ context.Context, customerID string) (*domain.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, customerID)
	if err, ok := m.Errors[customerID]; ok {
		return nil, err
	}
	return m.Invoices[customerID], nil
}

// CallsFor counts lookups made for customerID
func (m *MockInvoiceLookup) CallsFor(customerID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == customerID {
			n++
		}
	}
	return n
}
