package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/gowallet/internal/flagx"
)

// Flags handled here.
var clientFlags = []string{"-a", "-t"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   address and port of the wallet server
//	-t int      per-request timeout in seconds
//
// Other flags are filtered out with flagx.FilterArgs.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, clientFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}

// Globals lists the flags walletctl accepts before a sub-command.
func Globals() []string {
	return append([]string{"-c", "-config"}, clientFlags...)
}
