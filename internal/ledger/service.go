package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetSale(ctx context.Context, id uuid.UUID) (*Sale, error)
	ListSales(ctx context.Context, filter ListFilter) ([]Sale, int, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CacheInvalidator bumps derived report caches after a committed sale.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// MetricsPort observes committed sales.
type MetricsPort interface {
	SaleCommitted(items int, total float64)
}

// Service owns stock-consistent sale creation. All stock validation happens
// inside one transaction under per-product row locks; there is no in-process
// stock cache and no retry loop.
type Service struct {
	repo    RepositoryPort
	audit   AuditPort
	cache   CacheInvalidator
	metrics MetricsPort
	logger  *slog.Logger
}

// NewService builds Service. audit, cache and metrics may be nil.
func NewService(repo RepositoryPort, audit AuditPort, cache CacheInvalidator, metrics MetricsPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, cache: cache, metrics: metrics, logger: logger}
}

// CreateSale turns a list of requested items from one user into a durable
// sale plus sale items, decrementing each product's stock. The unit of work
// is all-or-nothing: any rejection or failure leaves every product's stock
// and the sales table untouched.
//
// Products are locked in canonical id order rather than caller order, so two
// concurrent multi-item sales can never deadlock on each other.
func (s *Service) CreateSale(ctx context.Context, userID int64, items []RequestedItem) (*Sale, error) {
	if userID <= 0 {
		return nil, errors.New("ledger: sale requires an identified user")
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID, Quantity: item.Quantity}
		}
		if item.ProductID == uuid.Nil {
			return nil, &UnknownProductError{ProductID: item.ProductID}
		}
	}

	ordered := make([]RequestedItem, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return bytes.Compare(ordered[i].ProductID[:], ordered[j].ProductID[:]) < 0
	})

	saleID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("ledger: generate sale id: %w", err)
	}
	sale := &Sale{ID: saleID, UserID: userID, SaleDate: time.Now().UTC()}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.InsertSale(ctx, *sale); err != nil {
			return err
		}
		for _, req := range ordered {
			product, err := tx.GetProductForUpdate(ctx, req.ProductID)
			if err != nil {
				return err
			}
			if req.Quantity > product.Stock {
				return &InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   req.Quantity,
					Available:   product.Stock,
				}
			}
			itemID, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("ledger: generate item id: %w", err)
			}
			item := SaleItem{
				ID:          itemID,
				SaleID:      saleID,
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    req.Quantity,
				UnitPrice:   product.Price,
			}
			if err := tx.InsertSaleItem(ctx, item); err != nil {
				return err
			}
			if err := tx.DecrementStock(ctx, product.ID, req.Quantity); err != nil {
				return err
			}
			sale.Items = append(sale.Items, item)
		}
		return nil
	})
	if err != nil {
		sale.Items = nil
		return nil, classify(err)
	}

	s.logger.Info("sale committed",
		slog.String("sale_id", sale.ID.String()),
		slog.Int64("user_id", userID),
		slog.Int("items", len(sale.Items)),
		slog.Float64("total", sale.Total()),
	)
	if s.metrics != nil {
		s.metrics.SaleCommitted(len(sale.Items), sale.Total())
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  userID,
			Action:   "ledger:sale",
			Entity:   "sale",
			EntityID: sale.ID.String(),
			Meta: map[string]any{
				"items": len(sale.Items),
				"total": sale.Total(),
			},
		})
	}
	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil {
			s.logger.Warn("report cache bump", slog.Any("error", err))
		}
	}
	return sale, nil
}

// GetSale loads one sale with its items.
func (s *Service) GetSale(ctx context.Context, id uuid.UUID) (*Sale, error) {
	return s.repo.GetSale(ctx, id)
}

// ListSales returns sales ordered by sale_date descending.
func (s *Service) ListSales(ctx context.Context, filter ListFilter) ([]Sale, int, error) {
	return s.repo.ListSales(ctx, filter)
}

// classify keeps the business rejections typed and folds everything else,
// lock-wait timeouts included, into ErrStoreUnavailable.
func classify(err error) error {
	var insufficient *InsufficientStockError
	var unknown *UnknownProductError
	var invalid *InvalidQuantityError
	switch {
	case errors.As(err, &insufficient), errors.As(err, &unknown), errors.As(err, &invalid):
		return err
	case errors.Is(err, ErrStoreUnavailable):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}
