package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Eatzy/auth-service/internal/auth/domain"
	"github.com/Eatzy/auth-service/internal/auth/legacy"
	"github.com/Eatzy/auth-service/internal/auth/service"
	"github.com/Eatzy/auth-service/internal/auth/store"
	"github.com/Eatzy/auth-service/internal/auth/store/drivers/sqlite"
	"github.com/Eatzy/auth-service/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

const testAdminSecret = "test-admin-secret"

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "http-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper.key"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// fakeLegacy backs the reconciliation service with an in-memory directory.
type fakeLegacy struct {
	users     map[string]*domain.LegacyUser
	passwords map[string]string
	checkErr  error
}

func newFakeLegacy() *fakeLegacy {
	return &fakeLegacy{users: make(map[string]*domain.LegacyUser), passwords: make(map[string]string)}
}

func (f *fakeLegacy) CheckUser(ctx context.Context, email string) (bool, *domain.LegacyUser, error) {
	if f.checkErr != nil {
		return false, nil, f.checkErr
	}
	u, ok := f.users[email]
	return ok, u, nil
}

func (f *fakeLegacy) Authorize(ctx context.Context, username, credential string) (domain.LegacyAuthorization, error) {
	if pw, ok := f.passwords[username]; !ok || pw != credential {
		return domain.LegacyAuthorization{}, legacy.ErrUnauthorized
	}
	return domain.LegacyAuthorization{AccessToken: "legacy-token"}, nil
}

func (f *fakeLegacy) CreateUser(ctx context.Context, params legacy.CreateUserParams) (*domain.LegacyUser, error) {
	u := &domain.LegacyUser{ID: "legacy-1", Email: params.Email, FirstName: params.FirstName, LastName: params.LastName}
	f.users[params.Email] = u
	f.passwords[params.Email] = params.Password
	return u, nil
}

func newTestRouter(t *testing.T) (*Router, store.Store, *fakeLegacy) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	fl := newFakeLegacy()
	logger := slog.Default()

	r := NewRouter("test", testAdminSecret, st, logger)
	r.ReconcileService = &service.ReconcileService{Store: st, Legacy: fl, Migrator: service.CredentialMigrator{}}
	r.SessionService = &service.SessionService{Store: st, TTL: time.Hour}
	r.VerifyService = &service.VerifyService{Store: st}
	r.ConfigService = service.NewConfigService(st, logger, time.Hour, time.Hour)
	r.ApplyRoutes()
	return r, st, fl
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestSignUpEndpoint(t *testing.T) {
	t.Run("registers and returns a session", func(t *testing.T) {
		r, _, _ := newTestRouter(t)

		rec := doJSON(t, r, http.MethodPost, "/v1/auth/signup",
			map[string]string{"email": "new@example.com", "password": "pw123456", "name": "Ann Lee"}, nil)
		require.Equal(t, http.StatusCreated, rec.Code)

		body := decodeBody(t, rec)
		user := body["user"].(map[string]any)
		require.Equal(t, "new@example.com", user["email"])
		require.Equal(t, "Ann Lee", user["name"])
		require.Equal(t, "new", user["username"])
		require.Equal(t, false, user["emailVerified"])

		session := body["session"].(map[string]any)
		require.NotEmpty(t, session["token"])
		require.Equal(t, user["id"], session["userId"])
	})

	t.Run("conflict for a registered email", func(t *testing.T) {
		r, _, fl := newTestRouter(t)
		fl.users["taken@example.com"] = &domain.LegacyUser{}

		rec := doJSON(t, r, http.MethodPost, "/v1/auth/signup",
			map[string]string{"email": "taken@example.com", "password": "pw", "name": ""}, nil)
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Equal(t, "already_exists", decodeBody(t, rec)["error"])
	})

	t.Run("missing fields", func(t *testing.T) {
		r, _, _ := newTestRouter(t)

		rec := doJSON(t, r, http.MethodPost, "/v1/auth/signup",
			map[string]string{"email": "x@example.com"}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("legacy outage", func(t *testing.T) {
		r, _, fl := newTestRouter(t)
		fl.checkErr = legacy.ErrUnavailable

		rec := doJSON(t, r, http.MethodPost, "/v1/auth/signup",
			map[string]string{"email": "x@example.com", "password": "pw"}, nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, "legacy_unavailable", decodeBody(t, rec)["error"])
	})
}

func TestSignInEndpoint(t *testing.T) {
	t.Run("signs in a legacy-only user and issues a session", func(t *testing.T) {
		r, _, fl := newTestRouter(t)
		fl.users["alice@example.com"] = &domain.LegacyUser{FirstName: "Alice", LastName: "Smith"}
		fl.passwords["alice@example.com"] = "pw"

		rec := doJSON(t, r, http.MethodPost, "/v1/auth/signin",
			map[string]string{"email": "alice@example.com", "password": "pw"}, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		user := body["user"].(map[string]any)
		require.Equal(t, "Alice Smith", user["name"])
		require.Equal(t, true, user["emailVerified"])
	})

	t.Run("unknown email", func(t *testing.T) {
		r, _, _ := newTestRouter(t)

		rec := doJSON(t, r, http.MethodPost, "/v1/auth/signin",
			map[string]string{"email": "nobody@example.com", "password": "pw"}, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "not_registered", decodeBody(t, rec)["error"])
	})

	t.Run("wrong password", func(t *testing.T) {
		r, _, fl := newTestRouter(t)
		fl.users["alice@example.com"] = &domain.LegacyUser{}
		fl.passwords["alice@example.com"] = "pw"

		rec := doJSON(t, r, http.MethodPost, "/v1/auth/signin",
			map[string]string{"email": "alice@example.com", "password": "wrong"}, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "invalid_credentials", decodeBody(t, rec)["error"])
	})
}

func TestSocialEndpoint(t *testing.T) {
	r, _, fl := newTestRouter(t)
	fl.users["alice@example.com"] = &domain.LegacyUser{FirstName: "Alice"}

	rec := doJSON(t, r, http.MethodPost, "/v1/auth/social",
		map[string]string{"email": "alice@example.com", "name": "Alice"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decodeBody(t, rec)["linked"])

	rec = doJSON(t, r, http.MethodPost, "/v1/auth/social",
		map[string]string{"email": "stranger@example.com"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, decodeBody(t, rec)["linked"])
}

func TestVerifyEndpoint(t *testing.T) {
	t.Run("round-trips a freshly issued session", func(t *testing.T) {
		r, _, _ := newTestRouter(t)

		signup := doJSON(t, r, http.MethodPost, "/v1/auth/signup",
			map[string]string{"email": "new@example.com", "password": "pw123456", "name": "Ann"}, nil)
		require.Equal(t, http.StatusCreated, signup.Code)
		token := decodeBody(t, signup)["session"].(map[string]any)["token"].(string)

		rec := doJSON(t, r, http.MethodPost, "/verify", map[string]string{"token": token}, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		require.Equal(t, true, body["valid"])
		user := body["user"].(map[string]any)
		require.Equal(t, "new@example.com", user["email"])
		session := body["session"].(map[string]any)
		require.Equal(t, user["id"], session["userId"])
	})

	t.Run("missing token", func(t *testing.T) {
		r, _, _ := newTestRouter(t)

		rec := doJSON(t, r, http.MethodPost, "/verify", map[string]string{}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "token is required", decodeBody(t, rec)["error"])
	})

	t.Run("unknown token", func(t *testing.T) {
		r, _, _ := newTestRouter(t)

		rec := doJSON(t, r, http.MethodPost, "/verify", map[string]string{"token": "nope"}, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestConfigEndpoints(t *testing.T) {
	adminAuth := map[string]string{"Authorization": "Bearer " + testAdminSecret}

	t.Run("write requires the admin secret", func(t *testing.T) {
		r, _, _ := newTestRouter(t)

		rec := doJSON(t, r, http.MethodPut, "/v1/config/site_name",
			map[string]any{"value": "Eatzy"}, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = doJSON(t, r, http.MethodPut, "/v1/config/site_name",
			map[string]any{"value": "Eatzy"}, map[string]string{"Authorization": "Bearer wrong"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = doJSON(t, r, http.MethodPut, "/v1/config/site_name",
			map[string]any{"value": "Eatzy"}, adminAuth)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("write then public read", func(t *testing.T) {
		r, _, _ := newTestRouter(t)

		rec := doJSON(t, r, http.MethodPut, "/v1/config/site_name",
			map[string]any{"value": "Eatzy", "category": "branding"}, adminAuth)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, r, http.MethodGet, "/v1/config/site_name", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		require.Equal(t, "Eatzy", body["value"])
		require.Equal(t, "branding", body["category"])
	})

	t.Run("secret entries are invisible to reads", func(t *testing.T) {
		r, _, _ := newTestRouter(t)

		rec := doJSON(t, r, http.MethodPut, "/v1/config/api_key",
			map[string]any{"value": "shh", "isSecret": true}, adminAuth)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, r, http.MethodGet, "/v1/config/api_key", nil, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)

		rec = doJSON(t, r, http.MethodGet, "/v1/config", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		entries := decodeBody(t, rec)["entries"].([]any)
		require.Empty(t, entries)
	})

	t.Run("validation and delete", func(t *testing.T) {
		r, _, _ := newTestRouter(t)

		rec := doJSON(t, r, http.MethodPut, "/v1/config/bad",
			map[string]any{"value": ""}, adminAuth)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		rec = doJSON(t, r, http.MethodDelete, "/v1/config/missing", nil, adminAuth)
		require.Equal(t, http.StatusNotFound, rec.Code)

		rec = doJSON(t, r, http.MethodPut, "/v1/config/gone",
			map[string]any{"value": "v"}, adminAuth)
		require.Equal(t, http.StatusOK, rec.Code)
		rec = doJSON(t, r, http.MethodDelete, "/v1/config/gone", nil, adminAuth)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestHealthEndpoints(t *testing.T) {
	r, st, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/livez", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decodeBody(t, rec)["status"])

	rec = doJSON(t, r, http.MethodGet, "/readyz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, st.Close())
	rec = doJSON(t, r, http.MethodGet, "/readyz", nil, nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "degraded", decodeBody(t, rec)["status"])
}

func TestCORSPreflight(t *testing.T) {
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	logger := slog.Default()
	cfg := service.NewConfigService(st, logger, time.Hour, time.Hour)
	require.NoError(t, cfg.Set(context.Background(),
		service.ConfigKeyTrustedOrigins, "https://app.example.com", "", "cors", false))

	r := NewRouter("test", testAdminSecret, st, logger)
	r.ConfigService = cfg
	r.OriginPolicy = &service.OriginPolicy{Config: cfg}
	r.ApplyRoutes()

	req := httptest.NewRequest(http.MethodOptions, "/v1/config", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/v1/config", nil)
	req.Header.Set("Origin", "https://evil.example.net")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
