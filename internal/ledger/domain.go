package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RequestedItem is one line of a sale request as supplied by the caller.
type RequestedItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// Sale is a committed sale owned by exactly one user. The header and item
// collection are fixed at creation.
type Sale struct {
	ID       uuid.UUID  `json:"id"`
	UserID   int64      `json:"user_id"`
	SaleDate time.Time  `json:"sale_date"`
	Items    []SaleItem `json:"items"`
}

// Total sums the line totals of the sale's items.
func (s *Sale) Total() float64 {
	var total float64
	for _, item := range s.Items {
		total += item.LineTotal()
	}
	return total
}

// SaleItem links a sale to a product. UnitPrice is the product price captured
// at sale time, so later catalog price edits do not rewrite history.
type SaleItem struct {
	ID          uuid.UUID `json:"id"`
	SaleID      uuid.UUID `json:"sale_id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
}

// LineTotal is quantity times the captured unit price.
func (i SaleItem) LineTotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// Product is the ledger's view of a catalog row, read under lock.
type Product struct {
	ID    uuid.UUID
	Name  string
	Price float64
	Stock int
}

// ListFilter narrows and pages sale listings.
type ListFilter struct {
	UserID int64
	Since  time.Time
	Page   int
	Limit  int
}

// ErrNoItems is returned when a sale request carries no items.
var ErrNoItems = errors.New("ledger: sale requires at least one item")

// ErrStoreUnavailable wraps infrastructure failures: the transaction could
// not be started, executed or committed. Nothing was persisted.
var ErrStoreUnavailable = errors.New("ledger: store unavailable")

// InsufficientStockError rejects a sale whose requested quantity exceeds the
// stock available under lock. The whole sale is rolled back.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("ledger: not enough stock for %s (requested %d, available %d)", e.ProductName, e.Requested, e.Available)
}

// UnknownProductError rejects a sale referencing a product that does not exist.
type UnknownProductError struct {
	ProductID uuid.UUID
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("ledger: unknown product %s", e.ProductID)
}

// InvalidQuantityError rejects zero or negative quantities before any
// transaction is opened.
type InvalidQuantityError struct {
	ProductID uuid.UUID
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("ledger: quantity must be a positive integer, got %d for product %s", e.Quantity, e.ProductID)
}
