package shutdown

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kevin07696/settlement-reconciler/internal/domain/ports"
)

// ShutdownFunc releases or flushes one component
type ShutdownFunc func(context.Context) error

// Component represents a registered shutdown component
type Component struct {
	Name         string
	ShutdownFunc ShutdownFunc
}

// Manager runs registered finalizers when a run ends, whether it succeeded,
// failed or was interrupted. Components run in REVERSE registration order
// (LIFO), one at a time, so something registered early (the logger) is still
// usable while later components flush.
type Manager struct {
	logger     ports.Logger
	components []Component
	mu         sync.Mutex
	timeout    time.Duration
	done       bool
}

// NewManager creates a new shutdown manager
func NewManager(logger ports.Logger, timeout time.Duration) *Manager {
	return &Manager{
		logger:  logger,
		timeout: timeout,
	}
}

// Register adds a shutdown function
func (sm *Manager) Register(name string, fn ShutdownFunc) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.components = append(sm.components, Component{Name: name, ShutdownFunc: fn})
}

// RegisterFunc is a convenience method for registering simple shutdown functions
func (sm *Manager) RegisterFunc(name string, fn func() error) {
	sm.Register(name, func(context.Context) error {
		return fn()
	})
}

// RegisterNoErr is a convenience method for shutdown functions that don't return errors
func (sm *Manager) RegisterNoErr(name string, fn func()) {
	sm.Register(name, func(context.Context) error {
		fn()
		return nil
	})
}

// Shutdown runs every component once, bounded by the manager's timeout.
// Later calls are no-ops. Component errors are logged and joined.
func (sm *Manager) Shutdown() error {
	sm.mu.Lock()
	if sm.done {
		sm.mu.Unlock()
		return nil
	}
	sm.done = true
	components := make([]Component, len(sm.components))
	copy(components, sm.components)
	sm.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), sm.timeout)
	defer cancel()

	var errs []error
	for i := len(components) - 1; i >= 0; i-- {
		comp := components[i]
		if err := ctx.Err(); err != nil {
			sm.logger.Warn("Shutdown timeout exceeded, skipping component",
				ports.String("component", comp.Name),
			)
			errs = append(errs, fmt.Errorf("%s: %w", comp.Name, err))
			continue
		}

		start := time.Now()
		if err := comp.ShutdownFunc(ctx); err != nil {
			sm.logger.Error("Component shutdown failed",
				ports.String("component", comp.Name),
				ports.Err(err),
				ports.String("elapsed", time.Since(start).String()),
			)
			errs = append(errs, fmt.Errorf("%s: %w", comp.Name, err))
			continue
		}
		sm.logger.Debug("Component shut down",
			ports.String("component", comp.Name),
			ports.String("elapsed", time.Since(start).String()),
		)
	}

	return errors.Join(errs...)
}
