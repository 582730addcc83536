package checkout

import (
	"context"
	"fmt"

	"salespoint/pkg/domain"
)

// Precondition rule names surfaced in ValidationError.
const (
	RuleCartNotEmpty     = "cart_not_empty"
	RuleCustomerRequired = "customer_required"
	RulePaymentMethod    = "payment_method"
	RuleGuestCheckout    = "guest_checkout"
)

// NewCartNotEmptyRule blocks checkout of an empty cart.
func NewCartNotEmptyRule() domain.Rule { return cartNotEmptyRule{} }

type cartNotEmptyRule struct{}

func (cartNotEmptyRule) Name() string { return RuleCartNotEmpty }

func (cartNotEmptyRule) Evaluate(_ context.Context, view domain.CheckoutView) (domain.Result, error) {
	if len(view.Items()) > 0 {
		return domain.Result{}, nil
	}
	return domain.Result{Violations: []domain.Violation{{
		Rule:     RuleCartNotEmpty,
		Severity: domain.SeverityBlock,
		Message:  "cart is empty",
	}}}, nil
}

// NewCustomerRequiredRule blocks checkout unless a customer with populated
// contact fields is attached. A nil customer always blocks; the guest
// fallback exists only for configurations that do not require a customer.
func NewCustomerRequiredRule() domain.Rule { return customerRequiredRule{} }

type customerRequiredRule struct{}

func (customerRequiredRule) Name() string { return RuleCustomerRequired }

func (customerRequiredRule) Evaluate(_ context.Context, view domain.CheckoutView) (domain.Result, error) {
	c := view.Customer()
	if c == nil {
		return domain.Result{Violations: []domain.Violation{{
			Rule:     RuleCustomerRequired,
			Severity: domain.SeverityBlock,
			Message:  "customer details are required",
		}}}, nil
	}
	if c.Name == "" || c.Email == "" || c.Phone == "" {
		return domain.Result{Violations: []domain.Violation{{
			Rule:     RuleCustomerRequired,
			Severity: domain.SeverityBlock,
			Message:  "customer contact fields are incomplete",
		}}}, nil
	}
	return domain.Result{}, nil
}

// NewPaymentMethodRule blocks unknown payment method labels.
func NewPaymentMethodRule() domain.Rule { return paymentMethodRule{} }

type paymentMethodRule struct{}

func (paymentMethodRule) Name() string { return RulePaymentMethod }

func (paymentMethodRule) Evaluate(_ context.Context, view domain.CheckoutView) (domain.Result, error) {
	if view.Method().Valid() {
		return domain.Result{}, nil
	}
	return domain.Result{Violations: []domain.Violation{{
		Rule:     RulePaymentMethod,
		Severity: domain.SeverityBlock,
		Message:  fmt.Sprintf("unknown payment method %q", view.Method()),
	}}}, nil
}
