// Package domain defines the core persistent entities, value types, and
// checkout rule primitives used by salespoint.
package domain

import "time"

// Service is a catalog entry. Services are seeded at process start and never
// created or destroyed at runtime.
type Service struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

// CartItem is a Service extended with a requested quantity. A CartItem with
// quantity <= 0 must never exist in a cart; it is removed, not retained at zero.
type CartItem struct {
	Service
	Quantity int `json:"quantity"`
}

// LineTotal returns price * quantity for this line item.
func (i CartItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Customer identifies the buyer on a sale. When customer details are not
// required and guest checkout is permitted, an absent customer is replaced
// with GuestCustomer.
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// GuestCustomer returns the synthetic placeholder identity used when a sale
// completes without named customer details.
func GuestCustomer() Customer {
	return Customer{
		ID:    "guest",
		Name:  "Guest",
		Email: "guest@example.com",
		Phone: "N/A",
	}
}

// PaymentMethod labels how a sale was settled. It is a label only; no gateway
// integration exists and the label is not persisted on the Transaction.
type PaymentMethod string

// Supported payment method labels.
const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// Valid reports whether the label is one of the supported methods.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentCard
}

// Transaction is a completed sale. Immutable once created: Items is a snapshot
// copy of the cart at checkout time and must not alias live cart state, and
// TotalAmount is the pre-tax subtotal matching the snapshot items.
type Transaction struct {
	ID          string     `json:"id"`
	Customer    Customer   `json:"customer"`
	Items       []CartItem `json:"items"`
	TotalAmount float64    `json:"totalAmount"`
	Date        time.Time  `json:"date"`
}

// Clone returns a deep copy so callers can hold transactions without aliasing
// store-owned state.
func (t Transaction) Clone() Transaction {
	cp := t
	cp.Items = append([]CartItem(nil), t.Items...)
	return cp
}

// Event is a fire-and-forget signal emitted toward the notification
// collaborator. The core never blocks on or depends on its handling.
type Event struct {
	Name   string
	Detail string
}

// Notification event names emitted by the core.
const (
	EventItemAdded     = "item_added"
	EventCartCleared   = "cart_cleared"
	EventSaleCompleted = "sale_completed"
)

// Notifier receives core events. Implementations must return quickly and
// must not fail; the excluded presentation layer surfaces them as toasts.
type Notifier interface {
	Notify(event Event)
}

// NopNotifier discards all events.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(Event) {}
