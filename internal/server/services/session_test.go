package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gowallet/internal/common"
	"github.com/dmitrijs2005/gowallet/internal/dbx"
	"github.com/dmitrijs2005/gowallet/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gowallet/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_IssuesPairAndStoresRefresh(t *testing.T) {
	f := newFixture(t)
	f.user(t, "ana@example.com")
	ctx := context.Background()

	pair, err := f.sessions.Login(ctx, "Ana@Example.com ", testPassword)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access, err := f.codec.Parse(pair.AccessToken)
	require.NoError(t, err)
	refresh, err := f.codec.Parse(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", access.Subject)
	assert.WithinDuration(t, access.IssuedAt.Add(f.cfg.AccessTokenValidityDuration), access.ExpiresAt, time.Second)
	assert.WithinDuration(t, refresh.IssuedAt.Add(f.cfg.RefreshTokenValidityDuration), refresh.ExpiresAt, time.Second)

	acc, err := f.ledger.GetAccount(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, acc.RefreshToken)
}

func TestLogin_BadCredentialsLookAlike(t *testing.T) {
	f := newFixture(t)
	f.user(t, "ana@example.com")
	ctx := context.Background()

	_, errWrong := f.sessions.Login(ctx, "ana@example.com", "wrong-password")
	_, errUnknown := f.sessions.Login(ctx, "nobody@example.com", testPassword)

	assert.ErrorIs(t, errWrong, common.ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, common.ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
}

func TestLogin_RefreshStoreFailureStillIssues(t *testing.T) {
	mem := repomanager.NewInMemoryRepositoryManager()
	m := &fakeRepoManager{InMemoryRepositoryManager: mem}
	m.accounts = func(db dbx.DBTX) accounts.Repository {
		return &failingAccounts{Repository: mem.Accounts(db), err: errBoom}
	}
	f := newFixtureWith(t, m)
	f.user(t, "ana@example.com")

	pair, err := f.sessions.Login(context.Background(), "ana@example.com", testPassword)
	require.NoError(t, err)
	require.NotEmpty(t, pair.RefreshToken)

	_, err = f.sessions.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrStaleRefreshToken)
}

func TestRefresh_ReturnsNewAccessSameRefresh(t *testing.T) {
	f := newFixture(t)
	f.user(t, "ana@example.com")
	ctx := context.Background()

	pair, err := f.sessions.Login(ctx, "ana@example.com", testPassword)
	require.NoError(t, err)

	next, err := f.sessions.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, next.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, next.AccessToken)

	p, ok := f.authn.Authenticate(ctx, next.AccessToken)
	require.True(t, ok)
	assert.Equal(t, "ana@example.com", p.Subject)
}

func TestRefresh_OnlyLatestLoginHonoured(t *testing.T) {
	f := newFixture(t)
	f.user(t, "ana@example.com")
	ctx := context.Background()

	first, err := f.sessions.Login(ctx, "ana@example.com", testPassword)
	require.NoError(t, err)
	second, err := f.sessions.Login(ctx, "ana@example.com", testPassword)
	require.NoError(t, err)

	_, err = f.sessions.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, common.ErrStaleRefreshToken)

	_, err = f.sessions.Refresh(ctx, second.RefreshToken)
	assert.NoError(t, err)
}

func TestRefresh_Rejections(t *testing.T) {
	f := newFixture(t)
	f.user(t, "ana@example.com")
	ctx := context.Background()

	expired, err := f.codec.Issue("ana@example.com", -time.Minute)
	require.NoError(t, err)
	orphan, err := f.codec.Issue("ghost@example.com", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", common.ErrMissingToken},
		{"garbage", "not-a-token", common.ErrInvalidToken},
		{"expired", expired, common.ErrInvalidToken},
		{"no account", orphan, common.ErrUnknownAccount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.sessions.Refresh(ctx, tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLogout_RevokesAccessAndRefresh(t *testing.T) {
	f := newFixture(t)
	f.user(t, "ana@example.com")
	ctx := context.Background()

	pair, err := f.sessions.Login(ctx, "ana@example.com", testPassword)
	require.NoError(t, err)
	_, ok := f.authn.Authenticate(ctx, pair.AccessToken)
	require.True(t, ok)

	require.NoError(t, f.sessions.Logout(ctx, pair.AccessToken))

	_, ok = f.authn.Authenticate(ctx, pair.AccessToken)
	assert.False(t, ok)

	revoked, err := f.blacklist.IsBlacklisted(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = f.sessions.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrStaleRefreshToken)

	// repeating is harmless
	require.NoError(t, f.sessions.Logout(ctx, pair.AccessToken))
	n, err := f.blacklist.Size(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestLogout_UnparseableTokenUsesFallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	f.blacklist.now = func() time.Time { return now }

	require.NoError(t, f.sessions.Logout(ctx, "opaque-legacy-token"))

	revoked, err := f.blacklist.IsBlacklisted(ctx, "opaque-legacy-token")
	require.NoError(t, err)
	assert.True(t, revoked)

	exp, err := f.blacklist.BlacklistToken(ctx, "opaque-legacy-token")
	require.NoError(t, err)
	assert.Equal(t, now.Add(24*time.Hour), exp)
}

func TestLogout_MissingToken(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.sessions.Logout(context.Background(), ""), common.ErrMissingToken)
}
