package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"salespoint/internal/checkout"
	"salespoint/internal/ledger"
	"salespoint/pkg/domain"
)

var walkIn = domain.Customer{ID: "c1", Name: "Ada", Email: "ada@example.com", Phone: "555-0100"}

func newTestSession(t *testing.T, store domain.SnapshotStore) *Session {
	t.Helper()
	cfg := DefaultConfig()
	cfg.PaymentDelay = time.Millisecond
	return New(context.Background(), cfg, store, Options{})
}

func TestSessionFullSaleFlow(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemorySnapshotStore()
	sess := newTestSession(t, store)

	if sess.Catalog().Len() != 8 {
		t.Fatalf("expected default catalog, got %d services", sess.Catalog().Len())
	}

	if err := sess.AddToCart(1); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if err := sess.AddToCart(1); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if err := sess.AddToCart(2); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if got := sess.Subtotal(); got != 120 {
		t.Fatalf("expected subtotal 120, got %v", got)
	}

	sess.SetQuantity(2, 0)
	if got := sess.Subtotal(); got != 40 {
		t.Fatalf("expected subtotal 40 after removal, got %v", got)
	}

	sess.SetCustomer(walkIn)
	tx, err := sess.Checkout(ctx, checkout.Request{Method: domain.PaymentCard})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if tx.TotalAmount != 40 {
		t.Fatalf("expected total 40, got %v", tx.TotalAmount)
	}
	if tx.Customer != walkIn {
		t.Fatalf("expected attached customer on transaction, got %+v", tx.Customer)
	}
	if len(sess.CartItems()) != 0 {
		t.Fatalf("cart must be empty after checkout")
	}

	history := sess.Transactions()
	if len(history) != 1 || history[0].ID != tx.ID {
		t.Fatalf("expected recorded transaction, got %+v", history)
	}

	snap := sess.Analytics()
	if snap.Count != 1 || snap.TotalRevenue != 40 {
		t.Fatalf("unexpected analytics: %+v", snap)
	}

	if err := sess.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestSessionRejectsUnknownService(t *testing.T) {
	sess := newTestSession(t, ledger.NewMemorySnapshotStore())
	if err := sess.AddToCart(42); err == nil {
		t.Fatalf("expected error for unknown service id")
	}
	if len(sess.CartItems()) != 0 {
		t.Fatalf("rejected add must not touch the cart")
	}
}

func TestSessionCustomerClearedAfterSale(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t, ledger.NewMemorySnapshotStore())

	sess.SetCustomer(walkIn)
	if _, ok := sess.Customer(); !ok {
		t.Fatalf("expected attached customer")
	}

	if err := sess.AddToCart(1); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if _, err := sess.Checkout(ctx, checkout.Request{}); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if _, ok := sess.Customer(); ok {
		t.Fatalf("customer must be cleared after a completed sale")
	}

	// The next sale needs details attached again.
	if err := sess.AddToCart(1); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	_, err := sess.Checkout(ctx, checkout.Request{})
	var verr domain.ValidationError
	if !errors.As(err, &verr) || verr.Precondition != checkout.RuleCustomerRequired {
		t.Fatalf("expected customer_required block, got %v", err)
	}
}

func TestSessionCustomerSurvivesBlockedCheckout(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t, ledger.NewMemorySnapshotStore())

	sess.SetCustomer(walkIn)
	if _, err := sess.Checkout(ctx, checkout.Request{}); err == nil {
		t.Fatalf("empty-cart checkout must fail")
	}
	if _, ok := sess.Customer(); !ok {
		t.Fatalf("failed checkout must not drop the attached customer")
	}
}

func TestSessionHistorySurvivesRestart(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemorySnapshotStore()

	first := newTestSession(t, store)
	first.SetCustomer(walkIn)
	if err := first.AddToCart(4); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if _, err := first.Checkout(ctx, checkout.Request{}); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if err := first.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second := newTestSession(t, store)
	if len(second.Transactions()) != 1 {
		t.Fatalf("expected history hydrated on restart, got %d", len(second.Transactions()))
	}
	if second.Analytics().TotalRevenue != 100 {
		t.Fatalf("unexpected analytics after restart: %+v", second.Analytics())
	}
}

func TestSessionOpenUsesEnvironment(t *testing.T) {
	t.Setenv("SALESPOINT_STORAGE_DRIVER", "memory")
	t.Setenv("SALESPOINT_PAYMENT_DELAY", "1ms")
	t.Setenv("SALESPOINT_REQUIRE_CUSTOMER", "false")

	sess, err := Open(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = sess.Close(context.Background()) }()

	if err := sess.AddToCart(5); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	tx, err := sess.Checkout(context.Background(), checkout.Request{})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if tx.Customer != domain.GuestCustomer() {
		t.Fatalf("expected guest fallback, got %+v", tx.Customer)
	}
	if sess.CheckoutState() != checkout.StateCompleted {
		t.Fatalf("unexpected state %q", sess.CheckoutState())
	}
}
