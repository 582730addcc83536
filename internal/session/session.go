// Package session wires the core components into one explicit session
// context object: catalog, cart, checkout processor, transaction ledger, and
// analytics aggregator. The excluded presentation layer drives the session
// through plain method calls; there is no module-level state.
package session

import (
	"context"
	"fmt"
	"sync"

	"salespoint/internal/analytics"
	"salespoint/internal/cart"
	"salespoint/internal/catalog"
	"salespoint/internal/checkout"
	"salespoint/internal/ledger"
	"salespoint/internal/observe"
	"salespoint/pkg/domain"
)

// Session owns the single-terminal POS state. Init rules: empty cart, ledger
// hydrated from the snapshot store. Teardown rules: Close flushes the ledger.
type Session struct {
	catalog   *catalog.Catalog
	cart      *cart.Cart
	processor *checkout.Processor
	ledger    *ledger.Ledger
	analytics *analytics.Aggregator
	logger    observe.Logger

	mu       sync.Mutex
	customer *domain.Customer
}

// Options carries optional collaborators; zero values fall back to no-ops
// and the default catalog.
type Options struct {
	Catalog  *catalog.Catalog
	Notifier domain.Notifier
	Logger   observe.Logger
	Metrics  observe.MetricsRecorder
	Tracer   observe.Tracer
}

// New builds a session over the given snapshot store.
func New(ctx context.Context, cfg Config, store domain.SnapshotStore, opts Options) *Session {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Notifier == nil {
		opts.Notifier = domain.NopNotifier{}
	}
	if opts.Logger == nil {
		opts.Logger = observe.NopLogger()
	}

	led := ledger.New(ctx, store, opts.Logger)
	crt := cart.New(opts.Notifier)
	proc := checkout.New(cfg.checkout(), crt, led,
		checkout.WithNotifier(opts.Notifier),
		checkout.WithLogger(opts.Logger),
		checkout.WithMetricsRecorder(opts.Metrics),
		checkout.WithTracer(opts.Tracer),
	)

	return &Session{
		catalog:   opts.Catalog,
		cart:      crt,
		processor: proc,
		ledger:    led,
		analytics: analytics.NewAggregator(led),
		logger:    opts.Logger,
	}
}

// Open is the convenience constructor used by the terminal binary: snapshot
// backend and policy both come from the environment.
func Open(ctx context.Context, opts Options) (*Session, error) {
	store, err := ledger.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return New(ctx, FromEnv(), store, opts), nil
}

// Catalog exposes the read-only service catalog.
func (s *Session) Catalog() *catalog.Catalog { return s.catalog }

// AddToCart adds one unit of the identified service. Unknown IDs are
// rejected at the boundary rather than polluting the cart.
func (s *Session) AddToCart(serviceID int) error {
	svc, ok := s.catalog.Find(serviceID)
	if !ok {
		return fmt.Errorf("unknown service %d", serviceID)
	}
	s.cart.AddItem(svc)
	return nil
}

// SetQuantity forwards to the cart engine (clamped at zero, zero removes).
func (s *Session) SetQuantity(serviceID, quantity int) {
	s.cart.SetQuantity(serviceID, quantity)
}

// ClearCart empties the cart.
func (s *Session) ClearCart() { s.cart.Clear() }

// CartItems returns the current cart contents.
func (s *Session) CartItems() []domain.CartItem { return s.cart.Items() }

// Subtotal returns the current cart subtotal.
func (s *Session) Subtotal() float64 { return s.cart.Subtotal() }

// SetCustomer attaches customer details to the next checkout attempt.
func (s *Session) SetCustomer(c domain.Customer) {
	s.mu.Lock()
	s.customer = &c
	s.mu.Unlock()
}

// ClearCustomer detaches any pending customer details.
func (s *Session) ClearCustomer() {
	s.mu.Lock()
	s.customer = nil
	s.mu.Unlock()
}

// Customer returns a copy of the pending customer details, if any.
func (s *Session) Customer() (domain.Customer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.customer == nil {
		return domain.Customer{}, false
	}
	return *s.customer, true
}

// Checkout runs one checkout attempt against the session cart. A request
// without an explicit customer uses the one attached via SetCustomer; a
// completed sale detaches it, so the next sale starts from a clean slate.
func (s *Session) Checkout(ctx context.Context, req checkout.Request) (domain.Transaction, error) {
	if req.Customer == nil {
		s.mu.Lock()
		req.Customer = s.customer
		s.mu.Unlock()
	}
	tx, err := s.processor.Checkout(ctx, req)
	if err == nil {
		s.ClearCustomer()
	}
	return tx, err
}

// CheckoutState reports the processor's lifecycle position.
func (s *Session) CheckoutState() checkout.State { return s.processor.State() }

// Transactions returns the recorded history in completion order.
func (s *Session) Transactions() []domain.Transaction { return s.ledger.All() }

// Analytics returns the current rollup, recomputed only when the ledger has
// changed.
func (s *Session) Analytics() analytics.Snapshot { return s.analytics.Snapshot() }

// Close flushes the ledger snapshot and releases the backend.
func (s *Session) Close(ctx context.Context) error {
	if err := s.ledger.Close(ctx); err != nil {
		s.logger.Warn("session teardown flush failed", "error", err)
		return err
	}
	return nil
}
