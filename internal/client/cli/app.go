package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gowallet/internal/client/client"
	"github.com/dmitrijs2005/gowallet/internal/client/config"
)

var ErrUsage = errors.New("usage")

type App struct {
	config *config.Config
	client client.Client
	reader *bufio.Reader
	out    io.Writer
	email  string
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewWalletClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}
	return newApp(c, apiClient, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, cl client.Client, in io.Reader, out io.Writer) *App {
	return &App{config: c, client: cl, reader: bufio.NewReader(in), out: out}
}

func (a *App) isLoggedIn() bool {
	return a.client.LoggedIn()
}

func (a *App) getStatus() string {
	if a.email == "" {
		return ""
	}
	return fmt.Sprintf("(%s) ", a.email)
}

// Run executes a single command, or starts the REPL when cmd is empty.
// A session opened for a single command is closed before returning.
func (a *App) Run(ctx context.Context, cmd string, args []string) error {
	defer a.client.Close()

	if cmd == "" {
		fmt.Fprintln(a.out, "Wallet CLI (type 'help' for commands)")
		runREPL(ctx, a, a.getStatus, a.reader)
		if a.isLoggedIn() {
			_ = a.Logout(ctx, nil)
		}
		return nil
	}

	err := a.Exec(ctx, cmd, args)
	if a.isLoggedIn() && cmd != "logout" {
		if lerr := a.client.Logout(ctx); lerr != nil && err == nil {
			err = lerr
		}
	}
	return err
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// requestCtx bounds one server call by the configured timeout.
func (a *App) requestCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

// ensureSession logs in interactively when no session is open.
func (a *App) ensureSession(ctx context.Context) error {
	if a.isLoggedIn() {
		return nil
	}
	return a.Login(ctx, nil)
}
