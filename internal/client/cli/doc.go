// Package cli provides walletctl, the interactive wallet command-line client.
//
// Commands run either one at a time from the shell (walletctl balance) or
// inside a REPL started when no command is given. Commands that need a
// session prompt for credentials first.
package cli
