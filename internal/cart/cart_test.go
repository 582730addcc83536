package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespoint/pkg/domain"
)

var (
	fitnessClass   = domain.Service{ID: 1, Name: "Fitness Class", Price: 20, Category: "Fitness"}
	therapySession = domain.Service{ID: 2, Name: "Therapy Session", Price: 80, Category: "Health"}
)

type recordingNotifier struct {
	events []domain.Event
}

func (n *recordingNotifier) Notify(e domain.Event) { n.events = append(n.events, e) }

func TestAddItemIncrementsExistingLine(t *testing.T) {
	c := New(nil)
	c.AddItem(fitnessClass)
	c.AddItem(fitnessClass)
	c.AddItem(therapySession)

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
	assert.Equal(t, fitnessClass.ID, items[0].ID, "insertion order must be preserved")
}

func TestSubtotal(t *testing.T) {
	c := New(nil)
	c.AddItem(fitnessClass)
	c.AddItem(fitnessClass)
	c.AddItem(therapySession)
	assert.Equal(t, 120.0, c.Subtotal())

	c.SetQuantity(therapySession.ID, 2)
	assert.Equal(t, 200.0, c.Subtotal(), "subtotal must be recomputed after mutation")
}

func TestSetQuantityClampsAndRemoves(t *testing.T) {
	c := New(nil)
	c.AddItem(fitnessClass)

	c.SetQuantity(fitnessClass.ID, 5)
	require.Len(t, c.Items(), 1)
	assert.Equal(t, 5, c.Items()[0].Quantity)

	c.SetQuantity(fitnessClass.ID, -3)
	assert.True(t, c.Empty(), "negative quantity clamps to zero and removes the line")

	c.AddItem(fitnessClass)
	c.SetQuantity(fitnessClass.ID, 0)
	assert.True(t, c.Empty(), "zero quantity removes the line entirely")
}

func TestSetQuantityUnknownIDIsNoOp(t *testing.T) {
	c := New(nil)
	c.AddItem(fitnessClass)
	c.SetQuantity(999, 7)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestClear(t *testing.T) {
	c := New(nil)
	c.AddItem(fitnessClass)
	c.AddItem(therapySession)
	c.Clear()
	assert.True(t, c.Empty())
	assert.Zero(t, c.Subtotal())
}

func TestNotifierEvents(t *testing.T) {
	n := &recordingNotifier{}
	c := New(n)
	c.AddItem(fitnessClass)
	c.Clear()

	require.Len(t, n.events, 2)
	assert.Equal(t, domain.EventItemAdded, n.events[0].Name)
	assert.Equal(t, fitnessClass.Name, n.events[0].Detail)
	assert.Equal(t, domain.EventCartCleared, n.events[1].Name)
}

func TestItemsReturnsCopy(t *testing.T) {
	c := New(nil)
	c.AddItem(fitnessClass)
	items := c.Items()
	items[0].Quantity = 42
	assert.Equal(t, 1, c.Items()[0].Quantity, "Items must not expose internal state")
}
