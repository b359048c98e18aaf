package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Eatzy/auth-service/internal/auth/domain"
	"github.com/Eatzy/auth-service/internal/auth/legacy"
	"github.com/Eatzy/auth-service/internal/auth/store"
	"github.com/Eatzy/auth-service/internal/auth/store/drivers/sqlite"
	"github.com/Eatzy/auth-service/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "service-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper.key"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

// fakeLegacy is an in-memory stand-in for the legacy directory. Errors are
// injectable per operation to simulate outages.
type fakeLegacy struct {
	users     map[string]*domain.LegacyUser // keyed by normalized email
	passwords map[string]string

	checkErr  error
	authErr   error
	createErr error

	creates int
}

func newFakeLegacy() *fakeLegacy {
	return &fakeLegacy{
		users:     make(map[string]*domain.LegacyUser),
		passwords: make(map[string]string),
	}
}

func (f *fakeLegacy) add(email, password string, u domain.LegacyUser) {
	u.Email = email
	f.users[email] = &u
	f.passwords[email] = password
}

func (f *fakeLegacy) CheckUser(ctx context.Context, email string) (bool, *domain.LegacyUser, error) {
	if f.checkErr != nil {
		return false, nil, f.checkErr
	}
	u, ok := f.users[email]
	return ok, u, nil
}

func (f *fakeLegacy) Authorize(ctx context.Context, username, credential string) (domain.LegacyAuthorization, error) {
	if f.authErr != nil {
		return domain.LegacyAuthorization{}, f.authErr
	}
	if pw, ok := f.passwords[username]; !ok || pw != credential {
		return domain.LegacyAuthorization{}, legacy.ErrUnauthorized
	}
	return domain.LegacyAuthorization{AccessToken: "legacy-token", ExpiresIn: 3600}, nil
}

func (f *fakeLegacy) CreateUser(ctx context.Context, params legacy.CreateUserParams) (*domain.LegacyUser, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.creates++
	u := &domain.LegacyUser{
		ID:        "legacy-1",
		Email:     params.Email,
		Username:  params.Username,
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Confirmed: false,
		Active:    true,
	}
	f.users[params.Email] = u
	f.passwords[params.Email] = params.Password
	return u, nil
}
