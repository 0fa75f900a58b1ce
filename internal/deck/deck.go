// Package deck holds the built-in estimation decks and a registry for
// user-defined decks added at runtime. Decks are immutable once created;
// sessions swap decks, they never edit one.
package deck

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/abrezinsky/scrumdeck/internal/errors"
	"github.com/abrezinsky/scrumdeck/internal/models"
)

func cards(values ...string) []models.Card {
	out := make([]models.Card, len(values))
	for i, v := range values {
		out[i] = models.Card{Value: v, DisplayValue: v}
	}
	return out
}

// Built-in decks. Fibonacci is the default.
var (
	Fibonacci = models.Deck{
		ID:    "fibonacci",
		Name:  "Fibonacci",
		Cards: cards("0", "1", "2", "3", "5", "8", "13", "21", "34", "55", "89", "?"),
	}

	ModifiedFibonacci = models.Deck{
		ID:   "modified-fibonacci",
		Name: "Modified Fibonacci",
		Cards: append([]models.Card{
			{Value: "0", DisplayValue: "0"},
			{Value: "0.5", DisplayValue: "½"},
		}, cards("1", "2", "3", "5", "8", "13", "20", "40", "100", "?")...),
	}

	TShirt = models.Deck{
		ID:    "tshirt",
		Name:  "T-Shirt Sizes",
		Cards: cards("XS", "S", "M", "L", "XL", "?"),
	}

	PowersOfTwo = models.Deck{
		ID:    "powers-of-two",
		Name:  "Powers of 2",
		Cards: cards("0", "1", "2", "4", "8", "16", "32", "?"),
	}
)

// Default is the deck assigned when none is specified.
var Default = Fibonacci

// Catalog is a thread-safe registry of the built-in decks plus any custom
// decks added at runtime. Listing order is stable: built-ins first, then
// custom decks in insertion order.
type Catalog struct {
	mu    sync.RWMutex
	decks []models.Deck
	byID  map[string]int
}

// NewCatalog returns a catalog seeded with the built-in decks.
func NewCatalog() *Catalog {
	c := &Catalog{byID: make(map[string]int)}
	for _, d := range []models.Deck{Fibonacci, ModifiedFibonacci, TShirt, PowersOfTwo} {
		c.byID[d.ID] = len(c.decks)
		c.decks = append(c.decks, d)
	}
	return c
}

// List returns all decks in catalog order.
func (c *Catalog) List() []models.Deck {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Deck, len(c.decks))
	for i, d := range c.decks {
		out[i] = models.CloneDeck(d)
	}
	return out
}

// Get returns the deck with the given id.
func (c *Catalog) Get(id string) (models.Deck, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byID[id]
	if !ok {
		return models.Deck{}, errors.NotFoundf("deck %q not found", id)
	}
	return models.CloneDeck(c.decks[i]), nil
}

// AddCustom registers a user-defined deck built from the given card values.
// Display values default to the raw values. Returns the new deck.
func (c *Catalog) AddCustom(name string, values []string) (models.Deck, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Deck{}, errors.InvalidArgument("deck name must not be empty")
	}
	if len(values) == 0 {
		return models.Deck{}, errors.InvalidArgument("deck must have at least one card")
	}
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return models.Deck{}, errors.InvalidArgument("card values must not be empty")
		}
	}

	d := models.Deck{
		ID:       "custom-" + uuid.NewString(),
		Name:     name,
		Cards:    cards(values...),
		IsCustom: true,
	}

	c.mu.Lock()
	c.byID[d.ID] = len(c.decks)
	c.decks = append(c.decks, d)
	c.mu.Unlock()

	return models.CloneDeck(d), nil
}
