package reports

import (
	"time"

	"github.com/google/uuid"
)

// SaleSummary is one sale inside a report group.
type SaleSummary struct {
	SaleID   uuid.UUID `json:"sale_id"`
	SaleDate time.Time `json:"sale_date"`
	Total    float64   `json:"total"`
}

// MonthGroup collects one user's sales for a calendar month.
type MonthGroup struct {
	Year         int           `json:"year"`
	Month        int           `json:"month"`
	MonthName    string        `json:"month_name"`
	Sales        []SaleSummary `json:"sales"`
	Total        float64       `json:"total"`
	TotalDisplay string        `json:"total_display"`
}

// UserGroup is the per-user slice of the report, months newest first.
type UserGroup struct {
	UserID   int64        `json:"user_id"`
	Username string       `json:"username"`
	Months   []MonthGroup `json:"months"`
}

// saleRow is the flat repository row before grouping.
type saleRow struct {
	SaleID   uuid.UUID
	UserID   int64
	Username string
	SaleDate time.Time
	Total    float64
}
