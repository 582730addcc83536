// Package catalog supplies the fixed list of purchasable services. The
// catalog is read-only reference data: seeded at construction, immutable
// afterwards, with lookup and filtering helpers for the presentation layer.
package catalog

import (
	"strings"

	"salespoint/pkg/domain"
)

// Catalog is an ordered, immutable collection of services.
type Catalog struct {
	services []domain.Service
	byID     map[int]domain.Service
}

// New constructs a catalog from the provided seed. The slice is copied;
// later mutation of the argument does not affect the catalog.
func New(services []domain.Service) *Catalog {
	c := &Catalog{
		services: append([]domain.Service(nil), services...),
		byID:     make(map[int]domain.Service, len(services)),
	}
	for _, s := range c.services {
		c.byID[s.ID] = s
	}
	return c
}

// Default returns the standard service catalog.
func Default() *Catalog {
	return New([]domain.Service{
		{ID: 1, Name: "Fitness Class", Price: 20, Category: "Fitness", Description: "Group fitness class for all levels"},
		{ID: 2, Name: "Therapy Session", Price: 80, Category: "Health", Description: "One-on-one therapy session"},
		{ID: 3, Name: "Workshop", Price: 50, Category: "Education", Description: "Interactive learning workshop"},
		{ID: 4, Name: "Consultation", Price: 100, Category: "Business", Description: "Professional business consultation"},
		{ID: 5, Name: "Yoga Class", Price: 15, Category: "Fitness", Description: "Relaxing yoga session for all levels"},
		{ID: 6, Name: "Nutrition Plan", Price: 75, Category: "Health", Description: "Personalized nutrition plan"},
		{ID: 7, Name: "Language Course", Price: 60, Category: "Education", Description: "4-week language learning course"},
		{ID: 8, Name: "Marketing Strategy", Price: 150, Category: "Business", Description: "Comprehensive marketing strategy session"},
	})
}

// List returns all services in seed order.
func (c *Catalog) List() []domain.Service {
	return append([]domain.Service(nil), c.services...)
}

// Find retrieves a service by ID.
func (c *Catalog) Find(id int) (domain.Service, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{}, len(c.services))
	var out []string
	for _, s := range c.services {
		if _, ok := seen[s.Category]; ok {
			continue
		}
		seen[s.Category] = struct{}{}
		out = append(out, s.Category)
	}
	return out
}

// Search filters by case-insensitive name substring and, when category is
// non-empty, by exact category.
func (c *Catalog) Search(term, category string) []domain.Service {
	term = strings.ToLower(term)
	var out []domain.Service
	for _, s := range c.services {
		if term != "" && !strings.Contains(strings.ToLower(s.Name), term) {
			continue
		}
		if category != "" && s.Category != category {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Len returns the number of services.
func (c *Catalog) Len() int { return len(c.services) }
