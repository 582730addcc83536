// Package cart implements the session cart: an ordered mapping from service
// to requested quantity with a recomputed subtotal.
package cart

import (
	"fmt"
	"sync"

	"salespoint/pkg/domain"
)

// Cart holds at most one line item per service ID, in insertion order. It is
// owned by a single session; the mutex is defensive so a misbehaving caller
// cannot corrupt state.
type Cart struct {
	mu       sync.Mutex
	items    []domain.CartItem
	notifier domain.Notifier
}

// New constructs an empty cart. A nil notifier disables event emission.
func New(notifier domain.Notifier) *Cart {
	if notifier == nil {
		notifier = domain.NopNotifier{}
	}
	return &Cart{notifier: notifier}
}

// AddItem increments the quantity for the service, inserting a new line item
// with quantity 1 when absent. It always succeeds.
func (c *Cart) AddItem(service domain.Service) {
	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ID == service.ID {
			c.items[i].Quantity++
			c.mu.Unlock()
			c.notifier.Notify(domain.Event{Name: domain.EventItemAdded, Detail: service.Name})
			return
		}
	}
	c.items = append(c.items, domain.CartItem{Service: service, Quantity: 1})
	c.mu.Unlock()
	c.notifier.Notify(domain.Event{Name: domain.EventItemAdded, Detail: service.Name})
}

// SetQuantity replaces the quantity for the identified line item, clamping at
// zero. A clamped quantity of zero removes the item entirely. Unknown IDs are
// a no-op so the caller stays resilient to stale references.
func (c *Cart) SetQuantity(id, quantity int) {
	if quantity < 0 {
		quantity = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID != id {
			continue
		}
		if quantity == 0 {
			c.items = append(c.items[:i], c.items[i+1:]...)
		} else {
			c.items[i].Quantity = quantity
		}
		return
	}
}

// Clear empties the cart unconditionally.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
	c.notifier.Notify(domain.Event{Name: domain.EventCartCleared})
}

// Subtotal returns the sum of price*quantity over current line items. It is
// recomputed on every call; nothing is cached across mutations.
func (c *Cart) Subtotal() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var sum float64
	for _, item := range c.items {
		sum += item.LineTotal()
	}
	return sum
}

// Items returns a copy of the current line items in insertion order.
func (c *Cart) Items() []domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.CartItem(nil), c.items...)
}

// Len returns the number of line items.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Empty reports whether the cart has no line items.
func (c *Cart) Empty() bool { return c.Len() == 0 }

// String renders a short summary for logs.
func (c *Cart) String() string {
	return fmt.Sprintf("cart{items: %d, subtotal: %.2f}", c.Len(), c.Subtotal())
}
