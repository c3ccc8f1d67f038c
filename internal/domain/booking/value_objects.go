package booking

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrNegativePrice   = errors.New("unit price cannot be negative")
)

// Item is a service line on a booking. LineTotalCents is derived, never
// stored independently of quantity and unit price.
type Item struct {
	serviceIssueID uuid.UUID
	quantity       int
	unitPriceCents int64
}

func NewItem(serviceIssueID uuid.UUID, quantity int, unitPriceCents int64) (Item, error) {
	if quantity <= 0 {
		return Item{}, ErrInvalidQuantity
	}
	if unitPriceCents < 0 {
		return Item{}, ErrNegativePrice
	}
	return Item{
		serviceIssueID: serviceIssueID,
		quantity:       quantity,
		unitPriceCents: unitPriceCents,
	}, nil
}

func (i Item) ServiceIssueID() uuid.UUID { return i.serviceIssueID }
func (i Item) Quantity() int             { return i.quantity }
func (i Item) UnitPriceCents() int64     { return i.unitPriceCents }

func (i Item) LineTotalCents() int64 {
	return i.unitPriceCents * int64(i.quantity)
}

// SumItems is the booking total: the sum of line totals.
func SumItems(items []Item) int64 {
	var total int64
	for _, it := range items {
		total += it.LineTotalCents()
	}
	return total
}

type Notes struct {
	value string
}

func NewNotes(value string) Notes {
	return Notes{value: strings.TrimSpace(value)}
}

func (n Notes) String() string {
	return n.value
}

func (n Notes) IsEmpty() bool {
	return n.value == ""
}
