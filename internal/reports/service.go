package reports

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// RepositoryPort abstracts report queries for testing.
type RepositoryPort interface {
	SalesSince(ctx context.Context, since time.Time) ([]saleRow, error)
}

type Service struct {
	repo    RepositoryPort
	cache   *Cache
	logger  *slog.Logger
	printer *message.Printer
}

func NewService(repo RepositoryPort, cache *Cache, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		cache:   cache,
		logger:  logger,
		printer: message.NewPrinter(language.English),
	}
}

// SalesByUserMonth groups sales per user and calendar month, months
// newest first. Results are cached until the next ledger commit bumps
// the report version.
func (s *Service) SalesByUserMonth(ctx context.Context, since time.Time) ([]UserGroup, error) {
	since = since.UTC().Truncate(24 * time.Hour)

	key, err := s.cache.BuildKey(ctx, "reports", "sales_by_user_month", since.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("build cache key: %w", err)
	}

	var groups []UserGroup
	err = s.cache.FetchJSON(ctx, key, &groups, func(ctx context.Context) (interface{}, error) {
		rows, err := s.repo.SalesSince(ctx, since)
		if err != nil {
			return nil, err
		}
		return s.group(rows), nil
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// group folds the flat rows into the user > month > sales hierarchy.
// Rows arrive ordered by username then sale date descending, so
// grouping preserves both orders without re-sorting sales.
func (s *Service) group(rows []saleRow) []UserGroup {
	groups := make([]UserGroup, 0)
	for _, row := range rows {
		if len(groups) == 0 || groups[len(groups)-1].UserID != row.UserID {
			groups = append(groups, UserGroup{UserID: row.UserID, Username: row.Username})
		}
		user := &groups[len(groups)-1]

		year, month := row.SaleDate.UTC().Year(), int(row.SaleDate.UTC().Month())
		if len(user.Months) == 0 || user.Months[len(user.Months)-1].Year != year || user.Months[len(user.Months)-1].Month != month {
			user.Months = append(user.Months, MonthGroup{
				Year:      year,
				Month:     month,
				MonthName: time.Month(month).String(),
			})
		}
		mg := &user.Months[len(user.Months)-1]
		mg.Sales = append(mg.Sales, SaleSummary{SaleID: row.SaleID, SaleDate: row.SaleDate, Total: row.Total})
		mg.Total += row.Total
	}

	for gi := range groups {
		months := groups[gi].Months
		sort.SliceStable(months, func(i, j int) bool {
			if months[i].Year != months[j].Year {
				return months[i].Year > months[j].Year
			}
			return months[i].Month > months[j].Month
		})
		for mi := range months {
			months[mi].TotalDisplay = s.formatMoney(months[mi].Total)
		}
	}
	return groups
}

func (s *Service) formatMoney(amount float64) string {
	return s.printer.Sprint(number.Decimal(amount,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}
