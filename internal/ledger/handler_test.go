package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/meridian-pos/meridian-pos/internal/auth"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func identityMiddleware(identity *auth.Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity != nil {
				r = r.WithContext(auth.ContextWithIdentity(r.Context(), identity))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newTestRouter(repo *memoryRepo, identity *auth.Identity) http.Handler {
	svc := NewService(repo, nil, nil, nil, nil)
	handler := NewHandler(discardLogger(), svc, identityMiddleware(identity))
	r := chi.NewRouter()
	r.Route("/sales", handler.MountRoutes)
	return r
}

func postSale(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/sales/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestCreateSaleEndpoint(t *testing.T) {
	mug := mustProduct(t, "Classic Mug", 9.50, 10)
	repo := newMemoryRepo(mug)
	router := newTestRouter(repo, &auth.Identity{ID: 7, Username: "cashier01"})

	rr := postSale(t, router, fmt.Sprintf(`{"items":[{"product_id":%q,"quantity":2}]}`, mug.ID))
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		ID    string  `json:"id"`
		Total float64 `json:"total"`
		Items []struct {
			UnitPrice float64 `json:"unit_price"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	require.InDelta(t, 19.00, resp.Total, 0.0001)
	require.Len(t, resp.Items, 1)
	require.Equal(t, 8, repo.stock(mug.ID))
}

func TestCreateSaleEndpointInsufficientStock(t *testing.T) {
	mug := mustProduct(t, "Classic Mug", 9.50, 3)
	repo := newMemoryRepo(mug)
	router := newTestRouter(repo, &auth.Identity{ID: 7, Username: "cashier01"})

	rr := postSale(t, router, fmt.Sprintf(`{"items":[{"product_id":%q,"quantity":5}]}`, mug.ID))
	require.Equal(t, http.StatusConflict, rr.Code)

	var problem struct {
		Title     string `json:"title"`
		ProductID string `json:"product_id"`
		Available int    `json:"available"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	require.Equal(t, "Insufficient Stock", problem.Title)
	require.Equal(t, mug.ID.String(), problem.ProductID)
	require.Equal(t, 3, problem.Available)
	require.Equal(t, 3, repo.stock(mug.ID))
}

func TestCreateSaleEndpointUnknownProduct(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(repo, &auth.Identity{ID: 7, Username: "cashier01"})

	ghost := mustProduct(t, "ghost", 1, 1).ID
	rr := postSale(t, router, fmt.Sprintf(`{"items":[{"product_id":%q,"quantity":1}]}`, ghost))
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateSaleEndpointValidation(t *testing.T) {
	mug := mustProduct(t, "Classic Mug", 9.50, 3)
	repo := newMemoryRepo(mug)
	router := newTestRouter(repo, &auth.Identity{ID: 7, Username: "cashier01"})

	for _, body := range []string{
		`not json`,
		`{"items":[]}`,
		fmt.Sprintf(`{"items":[{"product_id":%q,"quantity":0}]}`, mug.ID),
		fmt.Sprintf(`{"items":[{"product_id":%q,"quantity":-2}]}`, mug.ID),
	} {
		rr := postSale(t, router, body)
		require.Equal(t, http.StatusBadRequest, rr.Code, "body: %s", body)
	}
	require.Equal(t, 3, repo.stock(mug.ID))
}

func TestCreateSaleEndpointStoreFailure(t *testing.T) {
	mug := mustProduct(t, "Classic Mug", 9.50, 3)
	repo := newMemoryRepo(mug)
	repo.decrementFail = context.DeadlineExceeded

	svc := NewService(repo, nil, nil, nil, nil)
	handler := NewHandler(discardLogger(), svc, identityMiddleware(&auth.Identity{ID: 7}))
	r := chi.NewRouter()
	r.Route("/sales", handler.MountRoutes)

	rr := postSale(t, r, fmt.Sprintf(`{"items":[{"product_id":%q,"quantity":1}]}`, mug.ID))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.Equal(t, 3, repo.stock(mug.ID))
}

func TestGetSaleEndpoint(t *testing.T) {
	mug := mustProduct(t, "Classic Mug", 9.50, 10)
	repo := newMemoryRepo(mug)
	router := newTestRouter(repo, &auth.Identity{ID: 7, Username: "cashier01"})

	rr := postSale(t, router, fmt.Sprintf(`{"items":[{"product_id":%q,"quantity":1}]}`, mug.ID))
	require.Equal(t, http.StatusCreated, rr.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	getRR := httptest.NewRecorder()
	router.ServeHTTP(getRR, httptest.NewRequest(http.MethodGet, "/sales/"+created.ID, nil))
	require.Equal(t, http.StatusOK, getRR.Code)

	missing := httptest.NewRecorder()
	router.ServeHTTP(missing, httptest.NewRequest(http.MethodGet, "/sales/"+mustProduct(t, "x", 1, 1).ID.String(), nil))
	require.Equal(t, http.StatusNotFound, missing.Code)

	badID := httptest.NewRecorder()
	router.ServeHTTP(badID, httptest.NewRequest(http.MethodGet, "/sales/not-a-uuid", nil))
	require.Equal(t, http.StatusBadRequest, badID.Code)
}
