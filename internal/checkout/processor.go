// Package checkout converts a cart plus optional customer details into a
// persisted transaction. The processor is a small state machine: Idle ->
// Processing -> Completed, with validation failures bouncing through Blocked
// back to Idle. At most one checkout is in flight per processor.
package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"salespoint/internal/cart"
	"salespoint/internal/observe"
	"salespoint/pkg/domain"
)

// State names the processor's position in the checkout lifecycle.
type State string

// Checkout lifecycle states.
const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateBlocked    State = "blocked"
)

// DefaultPaymentDelay models the latency of the external payment step.
const DefaultPaymentDelay = 2 * time.Second

// Config carries the checkout policy knobs.
type Config struct {
	// RequireCustomer blocks checkout without populated customer details.
	RequireCustomer bool
	// AllowGuest substitutes the synthetic guest identity when no customer
	// is supplied. Only effective when RequireCustomer is off; a required
	// customer must always be attached explicitly.
	AllowGuest bool
	// PaymentDelay is the simulated payment suspension; zero means
	// DefaultPaymentDelay.
	PaymentDelay time.Duration
}

// Request is one checkout attempt.
type Request struct {
	Customer *domain.Customer
	// Method defaults to cash when empty.
	Method domain.PaymentMethod
}

// Processor drives checkout attempts against a single session cart.
type Processor struct {
	cfg      Config
	cart     *cart.Cart
	log      domain.TransactionLog
	engine   *domain.RulesEngine
	notifier domain.Notifier
	logger   observe.Logger
	metrics  observe.MetricsRecorder
	tracer   observe.Tracer
	clock    func() time.Time
	newID    func() string
	delay    func(ctx context.Context, d time.Duration) error

	mu    sync.Mutex
	state State
}

// Option customizes a Processor.
type Option func(*Processor)

// WithNotifier wires the notification collaborator.
func WithNotifier(n domain.Notifier) Option {
	return func(p *Processor) {
		if n != nil {
			p.notifier = n
		}
	}
}

// WithLogger wires structured logging.
func WithLogger(l observe.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetricsRecorder wires operation metrics.
func WithMetricsRecorder(m observe.MetricsRecorder) Option {
	return func(p *Processor) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithTracer wires trace spans.
func WithTracer(t observe.Tracer) Option {
	return func(p *Processor) {
		if t != nil {
			p.tracer = t
		}
	}
}

// WithClock overrides the completion timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(p *Processor) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// WithIDGenerator overrides transaction ID generation.
func WithIDGenerator(gen func() string) Option {
	return func(p *Processor) {
		if gen != nil {
			p.newID = gen
		}
	}
}

// New constructs a processor bound to the cart and transaction log.
func New(cfg Config, c *cart.Cart, log domain.TransactionLog, opts ...Option) *Processor {
	if cfg.PaymentDelay <= 0 {
		cfg.PaymentDelay = DefaultPaymentDelay
	}
	engine := domain.NewRulesEngine()
	engine.Register(NewCartNotEmptyRule())
	engine.Register(NewPaymentMethodRule())
	if cfg.RequireCustomer {
		engine.Register(NewCustomerRequiredRule())
	}
	p := &Processor{
		cfg:      cfg,
		cart:     c,
		log:      log,
		engine:   engine,
		notifier: domain.NopNotifier{},
		logger:   observe.NopLogger(),
		metrics:  observe.NopMetrics(),
		tracer:   observe.NopTracer(),
		clock:    func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
		delay:    sleepFor,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the processor's current lifecycle position.
func (p *Processor) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// attemptView freezes the checkout inputs at the moment the attempt leaves
// Idle, so rule evaluation and the eventual transaction snapshot agree.
type attemptView struct {
	items    []domain.CartItem
	subtotal float64
	customer *domain.Customer
	method   domain.PaymentMethod
}

func (v attemptView) Items() []domain.CartItem     { return v.items }
func (v attemptView) Subtotal() float64            { return v.subtotal }
func (v attemptView) Customer() *domain.Customer   { return v.customer }
func (v attemptView) Method() domain.PaymentMethod { return v.method }

// Checkout runs one attempt. On success the transaction has been appended to
// the log and the cart cleared. A second attempt while one is Processing
// fails immediately with StateConflictError; cancellation during the payment
// suspension returns ErrCheckoutAborted with the log untouched.
func (p *Processor) Checkout(ctx context.Context, req Request) (tx domain.Transaction, err error) {
	started := time.Now()
	ctx, span := p.tracer.Start(ctx, "checkout")
	defer func() {
		span.End(err)
		p.metrics.Observe(ctx, "checkout", err == nil, time.Since(started))
	}()

	method := req.Method
	if method == "" {
		method = domain.PaymentCash
	}

	p.mu.Lock()
	if p.state == StateProcessing {
		p.mu.Unlock()
		return domain.Transaction{}, domain.StateConflictError{State: string(StateProcessing)}
	}

	view := attemptView{
		items:    p.cart.Items(),
		subtotal: p.cart.Subtotal(),
		customer: req.Customer,
		method:   method,
	}

	res, evalErr := p.engine.Evaluate(ctx, view)
	if evalErr != nil {
		p.state = StateIdle
		p.mu.Unlock()
		return domain.Transaction{}, evalErr
	}
	if violation, blocked := res.FirstBlocking(); blocked {
		p.state = StateBlocked
		p.mu.Unlock()
		p.logger.Debug("checkout blocked", "precondition", violation.Rule)
		p.setState(StateIdle)
		return domain.Transaction{}, domain.ValidationError{
			Precondition: violation.Rule,
			Message:      violation.Message,
		}
	}

	customer, resolveErr := p.resolveCustomer(req.Customer)
	if resolveErr != nil {
		p.state = StateIdle
		p.mu.Unlock()
		return domain.Transaction{}, resolveErr
	}

	p.state = StateProcessing
	p.mu.Unlock()

	// Timed suspension standing in for payment confirmation. Cancellation
	// must leave the transaction log untouched.
	if waitErr := p.delay(ctx, p.cfg.PaymentDelay); waitErr != nil {
		p.setState(StateIdle)
		p.logger.Info("checkout aborted during payment", "cause", waitErr)
		return domain.Transaction{}, domain.ErrCheckoutAborted
	}

	tx = domain.Transaction{
		ID:          p.newID(),
		Customer:    customer,
		Items:       view.items,
		TotalAmount: view.subtotal,
		Date:        p.clock(),
	}

	if appendErr := p.log.Append(ctx, tx); appendErr != nil {
		// The sale completed and lives in the in-memory log; the snapshot
		// write failure is non-fatal per the persistence contract.
		p.logger.Warn("transaction persisted in memory only", "id", tx.ID, "error", appendErr)
	}

	p.setState(StateCompleted)
	p.cart.Clear()
	if sales, ok := p.metrics.(observe.SaleRecorder); ok {
		sales.RecordSale(ctx, tx.TotalAmount, len(tx.Items))
	}
	p.notifier.Notify(domain.Event{Name: domain.EventSaleCompleted, Detail: tx.ID})
	p.logger.Info("checkout completed", "id", tx.ID, "total", tx.TotalAmount, "method", string(method))
	return tx, nil
}

func (p *Processor) resolveCustomer(c *domain.Customer) (domain.Customer, error) {
	if c != nil {
		return *c, nil
	}
	if !p.cfg.AllowGuest {
		return domain.Customer{}, domain.ValidationError{
			Precondition: RuleGuestCheckout,
			Message:      "guest checkout is disabled and no customer was supplied",
		}
	}
	return domain.GuestCustomer(), nil
}

func (p *Processor) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// sleepFor waits d or until the context is done, whichever comes first.
func sleepFor(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
