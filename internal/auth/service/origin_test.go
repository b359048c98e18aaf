package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newOriginPolicy(t *testing.T, origins, patterns string) *OriginPolicy {
	t.Helper()
	ctx := context.Background()

	cfg := NewConfigService(newTestStore(t), slog.Default(), time.Hour, time.Hour)
	if origins != "" {
		require.NoError(t, cfg.Set(ctx, ConfigKeyTrustedOrigins, origins, "", "cors", false))
	}
	if patterns != "" {
		require.NoError(t, cfg.Set(ctx, ConfigKeyOriginPatterns, patterns, "", "cors", false))
	}
	require.NoError(t, cfg.Refresh(ctx))
	return &OriginPolicy{Config: cfg}
}

func TestOriginPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("exact list membership", func(t *testing.T) {
		policy := newOriginPolicy(t, "https://app.example.com, https://admin.example.com", "")

		require.True(t, policy.IsAllowed(ctx, "https://app.example.com"))
		require.True(t, policy.IsAllowed(ctx, "https://admin.example.com"))
		require.False(t, policy.IsAllowed(ctx, "https://evil.example.com"))
	})

	t.Run("dot pattern matches subdomains but not the apex", func(t *testing.T) {
		policy := newOriginPolicy(t, "", ".example.com")

		require.True(t, policy.IsAllowed(ctx, "https://sub.example.com"))
		require.True(t, policy.IsAllowed(ctx, "https://deep.sub.example.com"))
		require.False(t, policy.IsAllowed(ctx, "https://example.com"))
		require.False(t, policy.IsAllowed(ctx, "https://notexample.com"))
	})

	t.Run("apex needs its own exact entry", func(t *testing.T) {
		policy := newOriginPolicy(t, "https://example.com", ".example.com")

		require.True(t, policy.IsAllowed(ctx, "https://example.com"))
		require.True(t, policy.IsAllowed(ctx, "https://sub.example.com"))
	})

	t.Run("scheme-prefixed pattern requires exact equality", func(t *testing.T) {
		policy := newOriginPolicy(t, "", "https://only.example.com")

		require.True(t, policy.IsAllowed(ctx, "https://only.example.com"))
		require.False(t, policy.IsAllowed(ctx, "http://only.example.com"))
		require.False(t, policy.IsAllowed(ctx, "https://only.example.com.evil.io"))
	})

	t.Run("bare pattern matches by containment", func(t *testing.T) {
		policy := newOriginPolicy(t, "", "staging")

		require.True(t, policy.IsAllowed(ctx, "https://staging.example.com"))
		require.True(t, policy.IsAllowed(ctx, "https://app-staging.example.io"))
		require.False(t, policy.IsAllowed(ctx, "https://prod.example.com"))
	})

	t.Run("empty origin is never allowed", func(t *testing.T) {
		policy := newOriginPolicy(t, "https://app.example.com", "")

		require.False(t, policy.IsAllowed(ctx, ""))
		require.False(t, policy.IsAllowed(ctx, "   "))
	})

	t.Run("unconfigured keys mean an empty list", func(t *testing.T) {
		policy := newOriginPolicy(t, "", "")

		require.False(t, policy.IsAllowed(ctx, "https://app.example.com"))
		require.False(t, policy.IsAllowed(ctx, "http://localhost:3000"))
	})

	t.Run("store outage falls back to the built-in allow list", func(t *testing.T) {
		policy := newOriginPolicy(t, "https://app.example.com", "")
		require.NoError(t, policy.Config.Store.Close())
		// Force the next access to attempt (and fail) a reload and point read.
		policy.Config.TTL = time.Nanosecond
		time.Sleep(time.Millisecond)

		require.True(t, policy.IsAllowed(ctx, "http://localhost:3000"))
		require.True(t, policy.IsAllowed(ctx, "https://orders.eatzy.com"))
		require.False(t, policy.IsAllowed(ctx, "https://app.example.com"))
	})
}
