package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/gowallet/internal/api"
)

type command struct {
	usage   string
	session bool
	run     func(a *App, ctx context.Context, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"ping":     {usage: "ping", run: (*App).Ping},
		"register": {usage: "register", run: (*App).Register},
		"login":    {usage: "login [email]", run: (*App).Login},
		"logout":   {usage: "logout", run: (*App).Logout},
		"account":  {usage: "account", session: true, run: (*App).CreateAccount},
		"balance":  {usage: "balance", session: true, run: (*App).Balance},
		"transfer": {usage: "transfer <email> <amount> [key]", session: true, run: (*App).Transfer},
		"deposit":  {usage: "deposit <email> <amount> [key]", session: true, run: (*App).Deposit},
		"history":  {usage: "history [limit] [offset]", session: true, run: (*App).History},
		"check":    {usage: "check <token>", session: true, run: (*App).Check},
		"revoke":   {usage: "revoke <token>", session: true, run: (*App).Revoke},
		"stats":    {usage: "stats", session: true, run: (*App).Stats},
		"help":     {usage: "help", run: (*App).Help},
	}
}

// Exec runs one command by name.
func (a *App) Exec(ctx context.Context, name string, args []string) error {
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command: %s", name)
	}
	if cmd.session {
		if err := a.ensureSession(ctx); err != nil {
			return err
		}
	}
	err := cmd.run(a, ctx, args)
	if errors.Is(err, ErrUsage) {
		return fmt.Errorf("%w: %s", ErrUsage, cmd.usage)
	}
	return err
}

func (a *App) Help(_ context.Context, _ []string) error {
	a.printf("Available commands:\n")
	for _, name := range []string{"register", "login", "logout", "account", "balance",
		"transfer", "deposit", "history", "check", "revoke", "stats", "ping", "help"} {
		a.printf("  %s\n", commands[name].usage)
	}
	a.printf("  exit\n")
	return nil
}

func (a *App) Ping(ctx context.Context, _ []string) error {
	ctx, cancel := a.requestCtx(ctx)
	defer cancel()

	if err := a.client.Ping(ctx); err != nil {
		return err
	}
	a.printf("Server is up\n")
	return nil
}

func (a *App) Register(ctx context.Context, _ []string) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	fullName, err := GetSimpleText(a.reader, "Enter full name", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	ctx, cancel := a.requestCtx(ctx)
	defer cancel()

	if err := a.client.Register(ctx, email, fullName, string(password)); err != nil {
		return err
	}
	a.printf("Registered %s\n", email)
	return nil
}

func (a *App) Login(ctx context.Context, args []string) error {
	var email string
	if len(args) > 0 {
		email = args[0]
	} else {
		var err error
		if email, err = GetSimpleText(a.reader, "Enter email", a.out); err != nil {
			return err
		}
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	ctx, cancel := a.requestCtx(ctx)
	defer cancel()

	if err := a.client.Login(ctx, email, string(password)); err != nil {
		return err
	}
	a.email = email
	a.printf("Logged in as %s\n", email)
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	ctx, cancel := a.requestCtx(ctx)
	defer cancel()

	a.email = ""
	if err := a.client.Logout(ctx); err != nil {
		return err
	}
	a.printf("Logged out\n")
	return nil
}

func (a *App) CreateAccount(ctx context.Context, _ []string) error {
	ctx, cancel := a.requestCtx(ctx)
	defer cancel()

	acc, err := a.client.CreateAccount(ctx)
	if err != nil {
		return err
	}
	a.printf("Account %s created (%s)\n", acc.ID, acc.Currency)
	return nil
}

func (a *App) Balance(ctx context.Context, _ []string) error {
	ctx, cancel := a.requestCtx(ctx)
	defer cancel()

	acc, err := a.client.Balance(ctx)
	if err != nil {
		return err
	}
	a.printf("Balance: %s %s\n", acc.Balance, acc.Currency)
	return nil
}

func (a *App) Transfer(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return ErrUsage
	}
	ctx, cancel := a.requestCtx(ctx)
	defer cancel()

	e, err := a.client.Transfer(ctx, args[0], args[1], optional(args, 2))
	if err != nil {
		return err
	}
	a.printf("Sent %s to %s (entry %s)\n", e.Amount, args[0], e.ID)
	return nil
}

func (a *App) Deposit(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return ErrUsage
	}
	ctx, cancel := a.requestCtx(ctx)
	defer cancel()

	e, err := a.client.Deposit(ctx, args[0], args[1], optional(args, 2))
	if err != nil {
		return err
	}
	a.printf("Deposited %s to %s (entry %s)\n", e.Amount, args[0], e.ID)
	return nil
}

func (a *App) History(ctx context.Context, args []string) error {
	if len(args) > 2 {
		return ErrUsage
	}
	var limit, offset int
	var err error
	if len(args) > 0 {
		if limit, err = strconv.Atoi(args[0]); err != nil || limit < 0 {
			return ErrUsage
		}
	}
	if len(args) > 1 {
		if offset, err = strconv.Atoi(args[1]); err != nil || offset < 0 {
			return ErrUsage
		}
	}

	ctx, cancel := a.requestCtx(ctx)
	defer cancel()

	entries, err := a.client.History(ctx, limit, offset)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		a.printf("No entries\n")
		return nil
	}
	printEntries(a, entries)
	return nil
}

func printEntries(a *App, entries []*api.Entry) {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tTYPE\tSTATUS\tAMOUNT\tFROM\tTO")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.Format(time.DateTime), e.Type, e.Status, e.Amount, dash(e.FromAccount), dash(e.ToAccount))
	}
	w.Flush()
}

func (a *App) Check(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	ctx, cancel := a.requestCtx(ctx)
	defer cancel()

	revoked, err := a.client.IsBlacklisted(ctx, args[0])
	if err != nil {
		return err
	}
	if revoked {
		a.printf("Token is revoked\n")
	} else {
		a.printf("Token is not revoked\n")
	}
	return nil
}

func (a *App) Revoke(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	ctx, cancel := a.requestCtx(ctx)
	defer cancel()

	if err := a.client.RevokeToken(ctx, args[0]); err != nil {
		return err
	}
	a.printf("Token revoked\n")
	return nil
}

func (a *App) Stats(ctx context.Context, _ []string) error {
	ctx, cancel := a.requestCtx(ctx)
	defer cancel()

	n, err := a.client.BlacklistStats(ctx)
	if err != nil {
		return err
	}
	a.printf("Revoked tokens: %d\n", n)
	return nil
}

func optional(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
