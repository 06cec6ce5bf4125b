package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

func newTestHandler(t *testing.T, repo *memoryRepo) (http.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := shared.NewSessionManager(client, "meridian_session", "test-secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrf-secret")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, NewService(repo), sessions, csrf)

	r := chi.NewRouter()
	// Session middleware as installed by the application stack, reduced
	// to what the handler needs: the session is committed right before
	// the first header write.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := sessions.Load(req.Context(), req)
			require.NoError(t, err)
			ctx := shared.ContextWithSession(req.Context(), sess)
			next.ServeHTTP(&committingWriter{ResponseWriter: w, sessions: sessions, sess: sess, req: req}, req.WithContext(ctx))
		})
	})
	handler.MountRoutes(r)
	return r, sessions
}

type committingWriter struct {
	http.ResponseWriter
	sessions  *shared.SessionManager
	sess      *shared.Session
	req       *http.Request
	committed bool
}

func (w *committingWriter) WriteHeader(status int) {
	if !w.committed {
		w.committed = true
		_ = w.sessions.Commit(w.req.Context(), w.ResponseWriter, w.req, w.sess)
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *committingWriter) Write(data []byte) (int, error) {
	if !w.committed {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}

func TestLoginIssuesSessionAndCSRFToken(t *testing.T) {
	repo := newMemoryRepo(seedUser(t, "cashier01", "secret", true))
	router, _ := newTestHandler(t, repo)

	body := bytes.NewBufferString(`{"username":"cashier01","password":"secret"}`)
	req := httptest.NewRequest(http.MethodPost, "/login", body)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
		CSRFToken string `json:"csrf_token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "cashier01", resp.User.Username)
	require.NotEmpty(t, resp.CSRFToken)
	require.Contains(t, repo.sessions, findSessionCookie(t, rr).Value)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := newMemoryRepo(seedUser(t, "cashier01", "secret", true))
	router, _ := newTestHandler(t, repo)

	for _, body := range []string{
		`{"username":"cashier01","password":"wrong"}`,
		`{"username":"ghost","password":"secret"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusUnauthorized, rr.Code, "body: %s", body)
	}
}

func TestLoginValidatesPayload(t *testing.T) {
	router, _ := newTestHandler(t, newMemoryRepo())

	for _, body := range []string{`not json`, `{"username":"","password":""}`} {
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusBadRequest, rr.Code, "body: %s", body)
	}
}

func TestMeAndLogout(t *testing.T) {
	repo := newMemoryRepo(seedUser(t, "cashier01", "secret", true))
	router, _ := newTestHandler(t, repo)

	login := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"username":"cashier01","password":"secret"}`))
	loginRR := httptest.NewRecorder()
	router.ServeHTTP(loginRR, login)
	require.Equal(t, http.StatusOK, loginRR.Code)
	cookie := findSessionCookie(t, loginRR)

	me := httptest.NewRequest(http.MethodGet, "/me", nil)
	me.AddCookie(cookie)
	meRR := httptest.NewRecorder()
	router.ServeHTTP(meRR, me)
	require.Equal(t, http.StatusOK, meRR.Code)

	logout := httptest.NewRequest(http.MethodPost, "/logout", nil)
	logout.AddCookie(cookie)
	logoutRR := httptest.NewRecorder()
	router.ServeHTTP(logoutRR, logout)
	require.Equal(t, http.StatusNoContent, logoutRR.Code)
	require.NotContains(t, repo.sessions, cookie.Value)

	// The old cookie no longer resolves to a user.
	meAgain := httptest.NewRequest(http.MethodGet, "/me", nil)
	meAgain.AddCookie(cookie)
	meAgainRR := httptest.NewRecorder()
	router.ServeHTTP(meAgainRR, meAgain)
	require.Equal(t, http.StatusUnauthorized, meAgainRR.Code)
}

func TestMeRequiresLogin(t *testing.T) {
	router, _ := newTestHandler(t, newMemoryRepo())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/me", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func findSessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == "meridian_session" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}
