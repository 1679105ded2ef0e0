// Command pva-client drives the client role of the channel-access
// protocol: it can search the broadcast domain for a named channel,
// or connect to a server and fetch one channel's root introspection.
package main

import (
	"fmt"
	"os"

	"github.com/rcarmo/go-pva/cmd/client/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
