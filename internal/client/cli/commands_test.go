package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gowallet/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExec_SessionCommandPromptsLogin(t *testing.T) {
	stubPassword(t, "pw")
	cl := &stubClient{}
	app, out := newTestApp(t, cl, "alice@example.com\n")

	require.NoError(t, app.Exec(context.Background(), "balance", nil))

	assert.Equal(t, []string{"login", "balance"}, cl.calls)
	assert.Equal(t, "alice@example.com", cl.email)
	assert.Equal(t, "pw", cl.password)
	assert.Equal(t, "(alice@example.com) ", app.getStatus())
	assert.Contains(t, out.String(), "Balance: 150.00 COP")
}

func TestExec_LoginFailureStopsCommand(t *testing.T) {
	stubPassword(t, "bad")
	cl := &stubClient{err: errors.New("invalid credentials")}
	app, _ := newTestApp(t, cl, "alice@example.com\n")

	err := app.Exec(context.Background(), "transfer", []string{"bob@example.com", "10"})
	require.EqualError(t, err, "invalid credentials")
	assert.Equal(t, []string{"login"}, cl.calls)
	assert.Empty(t, app.email)
}

func TestExec_PublicCommandsSkipLogin(t *testing.T) {
	cl := &stubClient{}
	app, out := newTestApp(t, cl, "")

	require.NoError(t, app.Exec(context.Background(), "ping", nil))
	assert.Equal(t, []string{"ping"}, cl.calls)
	assert.Contains(t, out.String(), "Server is up")
}

func TestExec_Unknown(t *testing.T) {
	app, _ := newTestApp(t, &stubClient{}, "")
	require.EqualError(t, app.Exec(context.Background(), "withdraw", nil), "unknown command: withdraw")
}

func TestExec_Usage(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		args []string
		want string
	}{
		{"transfer without amount", "transfer", []string{"bob@example.com"}, "usage: transfer <email> <amount> [key]"},
		{"deposit too many", "deposit", []string{"a", "1", "k", "x"}, "usage: deposit <email> <amount> [key]"},
		{"history not a number", "history", []string{"ten"}, "usage: history [limit] [offset]"},
		{"history negative offset", "history", []string{"10", "-1"}, "usage: history [limit] [offset]"},
		{"check without token", "check", nil, "usage: check <token>"},
		{"revoke without token", "revoke", nil, "usage: revoke <token>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(t, &stubClient{loggedIn: true}, "")
			err := app.Exec(context.Background(), tt.cmd, tt.args)
			require.ErrorIs(t, err, ErrUsage)
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestTransferAndDeposit(t *testing.T) {
	cl := &stubClient{loggedIn: true}
	app, out := newTestApp(t, cl, "")
	ctx := context.Background()

	require.NoError(t, app.Exec(ctx, "transfer", []string{"bob@example.com", "12.50", "key-1"}))
	assert.Equal(t, []string{"bob@example.com", "12.50", "key-1"}, cl.transfer)
	assert.Contains(t, out.String(), "Sent 12.50 to bob@example.com (entry e-1)")

	require.NoError(t, app.Exec(ctx, "deposit", []string{"bob@example.com", "100"}))
	assert.Equal(t, []string{"bob@example.com", "100", ""}, cl.transfer)
	assert.Contains(t, out.String(), "Deposited 100 to bob@example.com (entry e-2)")
}

func TestHistory(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	cl := &stubClient{loggedIn: true, entries: []*api.Entry{
		{ID: "e1", Type: "DEPOSIT", Status: "SUCCESS", Amount: "100.00", ToAccount: "acc-1", CreatedAt: created},
	}}
	app, out := newTestApp(t, cl, "")

	require.NoError(t, app.Exec(context.Background(), "history", []string{"5", "10"}))
	assert.Equal(t, [2]int{5, 10}, cl.historyArgs)
	assert.Contains(t, out.String(), "CREATED")
	assert.Contains(t, out.String(), "2026-03-01 10:00:00")
	assert.Contains(t, out.String(), "DEPOSIT")
	assert.Contains(t, out.String(), "-")

	cl.entries = nil
	out.Reset()
	require.NoError(t, app.Exec(context.Background(), "history", nil))
	assert.Equal(t, [2]int{0, 0}, cl.historyArgs)
	assert.Equal(t, "No entries\n", out.String())
}

func TestAdminCommands(t *testing.T) {
	cl := &stubClient{loggedIn: true}
	app, out := newTestApp(t, cl, "")
	ctx := context.Background()

	require.NoError(t, app.Exec(ctx, "stats", nil))
	require.NoError(t, app.Exec(ctx, "check", []string{"revoked"}))
	require.NoError(t, app.Exec(ctx, "check", []string{"fresh"}))
	require.NoError(t, app.Exec(ctx, "revoke", []string{"tok"}))

	assert.Equal(t, "Revoked tokens: 7\nToken is revoked\nToken is not revoked\nToken revoked\n", out.String())
}

func TestRegister(t *testing.T) {
	stubPassword(t, "s3cret-pass")
	cl := &stubClient{}
	app, out := newTestApp(t, cl, "carol@example.com\nCarol Doe\n")

	require.NoError(t, app.Exec(context.Background(), "register", nil))
	assert.Equal(t, "carol@example.com", cl.email)
	assert.Equal(t, "s3cret-pass", cl.password)
	assert.Contains(t, out.String(), "Registered carol@example.com")
}

func TestLoginWithEmailArgument(t *testing.T) {
	stubPassword(t, "pw")
	cl := &stubClient{}
	app, _ := newTestApp(t, cl, "")

	require.NoError(t, app.Exec(context.Background(), "login", []string{"dave@example.com"}))
	assert.Equal(t, "dave@example.com", cl.email)
	assert.True(t, app.isLoggedIn())
}

func TestRun_OneShotClosesSession(t *testing.T) {
	stubPassword(t, "pw")
	cl := &stubClient{}
	app, _ := newTestApp(t, cl, "alice@example.com\n")

	require.NoError(t, app.Run(context.Background(), "account", nil))
	assert.Equal(t, []string{"login", "account", "logout"}, cl.calls)
	assert.True(t, cl.closed)
}

func TestRun_REPL(t *testing.T) {
	var printed []any
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) { printed = append(printed, a...); return 0, nil }
	t.Cleanup(func() { printlnFn = orig })

	stubPassword(t, "pw")
	cl := &stubClient{}
	app, out := newTestApp(t, cl, "login alice@example.com\nbalance\nexit\n")

	require.NoError(t, app.Run(context.Background(), "", nil))

	assert.Equal(t, []string{"login", "balance", "logout"}, cl.calls)
	assert.Contains(t, out.String(), "Balance: 150.00 COP")
	assert.Contains(t, printed, "wallet (alice@example.com) > ")
	assert.Contains(t, printed, "Bye!")
	assert.True(t, cl.closed)
}
