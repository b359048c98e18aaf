package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/Eatzy/auth-service/internal/auth/domain"
	"github.com/Eatzy/auth-service/internal/auth/store"
	"github.com/Eatzy/auth-service/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingCleanup(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	principal := domain.Principal{ID: idx.New().String(), Email: "alice@example.com", DisplayName: "Alice"}
	require.NoError(t, st.Principals().CreatePrincipal(ctx, principal))

	now := time.Now().UTC()
	live := domain.Session{ID: idx.New().String(), PrincipalID: principal.ID, Token: "tok-live", IssuedAt: now, ExpiresAt: now.Add(time.Hour)}
	dead := domain.Session{ID: idx.New().String(), PrincipalID: principal.ID, Token: "tok-dead", IssuedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, st.Sessions().CreateSession(ctx, live))
	require.NoError(t, st.Sessions().CreateSession(ctx, dead))

	svc := NewHousekeepingService(st, slog.Default(), time.Hour)
	svc.cleanup()

	_, err := st.Sessions().GetSessionByToken(ctx, "tok-live")
	require.NoError(t, err)

	_, err = st.Sessions().GetSessionByToken(ctx, "tok-dead")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestHousekeepingLifecycle(t *testing.T) {
	svc := NewHousekeepingService(newTestStore(t), slog.Default(), time.Hour)
	svc.Start()
	svc.Stop()
}
