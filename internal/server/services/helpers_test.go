package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gowallet/internal/dbx"
	"github.com/dmitrijs2005/gowallet/internal/logging"
	"github.com/dmitrijs2005/gowallet/internal/server/auth"
	"github.com/dmitrijs2005/gowallet/internal/server/config"
	"github.com/dmitrijs2005/gowallet/internal/server/metrics"
	"github.com/dmitrijs2005/gowallet/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gowallet/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gowallet/internal/server/repositories/revokedtokens"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// -------- test fakes --------

var errBoom = errors.New("boom")

type failingRevokedTokens struct {
	revokedtokens.Repository
	err error
}

func (f *failingRevokedTokens) Add(context.Context, string, time.Time) error { return f.err }
func (f *failingRevokedTokens) Exists(context.Context, string) (bool, error) {
	return false, f.err
}
func (f *failingRevokedTokens) Count(context.Context) (int64, error) { return 0, f.err }

type failingAccounts struct {
	accounts.Repository
	err error
}

func (f *failingAccounts) SetRefreshToken(context.Context, string, string) error { return f.err }

// fakeRepoManager overrides single repositories of an in-memory manager.
type fakeRepoManager struct {
	*repomanager.InMemoryRepositoryManager
	revoked  revokedtokens.Repository
	accounts func(db dbx.DBTX) accounts.Repository
}

func (m *fakeRepoManager) RevokedTokens(db dbx.DBTX) revokedtokens.Repository {
	if m.revoked != nil {
		return m.revoked
	}
	return m.InMemoryRepositoryManager.RevokedTokens(db)
}

func (m *fakeRepoManager) Accounts(db dbx.DBTX) accounts.Repository {
	if m.accounts != nil {
		return m.accounts(db)
	}
	return m.InMemoryRepositoryManager.Accounts(db)
}

type recordingNotifier struct {
	mu       sync.Mutex
	sent     []string
	received []string
	err      error
}

func (n *recordingNotifier) NotifyTransferSent(_ context.Context, subject, _ string, _ int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, subject)
	return n.err
}

func (n *recordingNotifier) NotifyTransferReceived(_ context.Context, subject, _ string, _ int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.received = append(n.received, subject)
	return n.err
}

type countingRecorder struct {
	metrics.Nop
	mu       sync.Mutex
	auth     map[string]int
	transfer map[string]int
	notify   int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{auth: map[string]int{}, transfer: map[string]int{}}
}

func (r *countingRecorder) RecordAuth(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auth[result]++
}

func (r *countingRecorder) RecordTransfer(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transfer[result]++
}

func (r *countingRecorder) RecordNotificationFailure(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notify++
}

// -------- helpers --------

const testPassword = "s3cret-pass"

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StorageKind = config.StorageMemory
	cfg.SecretKey = "test-secret"
	return cfg
}

type fixture struct {
	cfg       *config.Config
	manager   repomanager.RepositoryManager
	codec     *auth.Codec
	users     *UserService
	verifier  *CredentialVerifier
	blacklist *TokenBlacklist
	sessions  *SessionService
	authn     *Authenticator
	ledger    *LedgerService
	notifier  *recordingNotifier
	metrics   *countingRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, repomanager.NewInMemoryRepositoryManager())
}

func newFixtureWith(t *testing.T, m repomanager.RepositoryManager) *fixture {
	t.Helper()

	cfg := testConfig()
	log := logging.NewNop()
	rec := newCountingRecorder()
	codec := auth.NewCodec([]byte(cfg.SecretKey))

	f := &fixture{
		cfg:      cfg,
		manager:  m,
		codec:    codec,
		notifier: &recordingNotifier{},
		metrics:  rec,
	}
	f.users = NewUserService(m, log)
	f.users.cost = bcrypt.MinCost
	f.verifier = NewCredentialVerifier(m)
	f.blacklist = NewTokenBlacklist(m, codec, cfg, log)
	f.sessions = NewSessionService(m, f.verifier, codec, f.blacklist, cfg, rec, log)
	f.authn = NewAuthenticator(codec, f.blacklist, f.verifier, rec, log)
	f.ledger = NewLedgerService(m, f.notifier, cfg, rec, log)
	return f
}

// user registers email and opens an account for it.
func (f *fixture) user(t *testing.T, email string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.users.Register(ctx, email, "Test User", testPassword)
	require.NoError(t, err)
	_, err = f.ledger.CreateAccount(ctx, email)
	require.NoError(t, err)
}

// fund deposits amount into email's account.
func (f *fixture) fund(t *testing.T, email string, amount int64) {
	t.Helper()
	_, err := f.ledger.Deposit(context.Background(), email, amount, "")
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, email string) int64 {
	t.Helper()
	a, err := f.ledger.GetAccount(context.Background(), email)
	require.NoError(t, err)
	return a.Balance
}
