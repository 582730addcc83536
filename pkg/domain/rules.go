package domain

import "context"

// CheckoutView provides read-only access to the checkout attempt under
// evaluation.
type CheckoutView interface {
	Items() []CartItem
	Subtotal() float64
	Customer() *Customer
	Method() PaymentMethod
}

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine whether a checkout proceeds.
const (
	// SeverityBlock rejects the checkout attempt.
	SeverityBlock Severity = "block"
	// SeverityWarn surfaces a warning but allows the checkout.
	SeverityWarn Severity = "warn"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// FirstBlocking returns the first blocking violation, if any.
func (r Result) FirstBlocking() (Violation, bool) {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return v, true
		}
	}
	return Violation{}, false
}

// Rule defines a precondition evaluated before a checkout leaves Idle.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, view CheckoutView) (Result, error)
}

// RulesEngine orchestrates rule evaluation.
type RulesEngine struct {
	rules []Rule
}

// NewRulesEngine constructs an engine instance.
func NewRulesEngine() *RulesEngine {
	return &RulesEngine{}
}

// Register appends a rule to the engine.
func (e *RulesEngine) Register(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Evaluate executes all registered rules and aggregates their results.
func (e *RulesEngine) Evaluate(ctx context.Context, view CheckoutView) (Result, error) {
	var combined Result
	for _, rule := range e.rules {
		res, err := rule.Evaluate(ctx, view)
		if err != nil {
			return Result{}, err
		}
		combined.Merge(res)
	}
	return combined, nil
}
