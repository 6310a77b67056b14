package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gowallet/internal/api"
	"github.com/dmitrijs2005/gowallet/internal/client/config"
)

type stubClient struct {
	loggedIn bool
	closed   bool
	calls    []string

	email, password string
	transfer        []string
	historyArgs     [2]int
	entries         []*api.Entry
	err             error
}

func (s *stubClient) record(name string) error {
	s.calls = append(s.calls, name)
	return s.err
}

func (s *stubClient) Close() error                 { s.closed = true; return nil }
func (s *stubClient) Ping(context.Context) error   { return s.record("ping") }
func (s *stubClient) LoggedIn() bool               { return s.loggedIn }
func (s *stubClient) Logout(context.Context) error { s.loggedIn = false; return s.record("logout") }

func (s *stubClient) Register(_ context.Context, email, _, password string) error {
	s.email, s.password = email, password
	return s.record("register")
}

func (s *stubClient) Login(_ context.Context, email, password string) error {
	s.email, s.password = email, password
	if err := s.record("login"); err != nil {
		return err
	}
	s.loggedIn = true
	return nil
}

func (s *stubClient) CreateAccount(context.Context) (*api.Account, error) {
	if err := s.record("account"); err != nil {
		return nil, err
	}
	return &api.Account{ID: "acc-1", Currency: "COP", Balance: "0.00"}, nil
}

func (s *stubClient) Balance(context.Context) (*api.Account, error) {
	if err := s.record("balance"); err != nil {
		return nil, err
	}
	return &api.Account{ID: "acc-1", Currency: "COP", Balance: "150.00"}, nil
}

func (s *stubClient) Transfer(_ context.Context, to, amount, key string) (*api.Entry, error) {
	s.transfer = []string{to, amount, key}
	if err := s.record("transfer"); err != nil {
		return nil, err
	}
	return &api.Entry{ID: "e-1", Amount: amount}, nil
}

func (s *stubClient) Deposit(_ context.Context, email, amount, key string) (*api.Entry, error) {
	s.transfer = []string{email, amount, key}
	if err := s.record("deposit"); err != nil {
		return nil, err
	}
	return &api.Entry{ID: "e-2", Amount: amount}, nil
}

func (s *stubClient) History(_ context.Context, limit, offset int) ([]*api.Entry, error) {
	s.historyArgs = [2]int{limit, offset}
	if err := s.record("history"); err != nil {
		return nil, err
	}
	return s.entries, nil
}

func (s *stubClient) IsBlacklisted(_ context.Context, token string) (bool, error) {
	return token == "revoked", s.record("check")
}

func (s *stubClient) BlacklistStats(context.Context) (int64, error) {
	return 7, s.record("stats")
}

func (s *stubClient) RevokeToken(context.Context, string) error {
	return s.record("revoke")
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { readPassword = orig })
}

func newTestApp(t *testing.T, cl *stubClient, input string) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{RequestTimeout: time.Second}
	out := &bytes.Buffer{}
	return newApp(cfg, cl, strings.NewReader(input), out), out
}
