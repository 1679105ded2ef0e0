// Command pva-server runs a PVAccess-style channel-access gateway: a
// TCP session acceptor, a UDP beacon/discovery responder, and an
// optional debug monitor endpoint, all sharing one channel table.
package main

import (
	"fmt"
	"os"

	"github.com/rcarmo/go-pva/cmd/server/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
