package commands

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcarmo/go-pva/internal/dispatch"
	"github.com/rcarmo/go-pva/internal/logging"
)

var connectTimeout time.Duration

var connectCmd = &cobra.Command{
	Use:   "connect <address> <channel>",
	Short: "Connect to a server and fetch a channel's root introspection",
	Args:  cobra.ExactArgs(2),
	RunE:  runConnect,
}

func init() {
	connectCmd.Flags().DurationVar(&connectTimeout, "timeout", 5*time.Second, "how long to wait for the introspection fetch to complete")
}

func runConnect(cmd *cobra.Command, args []string) error {
	address, channelName := args[0], args[1]

	conn, err := net.DialTimeout("tcp", address, connectTimeout)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", address, err)
	}
	defer conn.Close()

	session := dispatch.NewClientSession(conn, []byte(channelName))
	extractor := dispatch.NewExtractor()

	deadline := time.Now().Add(connectTimeout)
	conn.SetReadDeadline(deadline)

	buf := make([]byte, 4096)
	for session.State() != dispatch.Idle {
		n, err := conn.Read(buf)
		if err != nil {
			return fmt.Errorf("reading from %s: %w", address, err)
		}

		frames, err := extractor.Feed(buf[:n])
		if err != nil {
			return fmt.Errorf("framing error: %w", err)
		}
		for _, f := range frames {
			if err := session.HandleFrame(f); err != nil {
				return fmt.Errorf("handling frame: %w", err)
			}
		}
	}

	logging.Info("client: fetched introspection for %q from %s", channelName, address)
	root := session.RootType
	cmd.Printf("channel %q (server id %d): type=%s sub=%#x array=%s\n",
		channelName, session.ServerChannelID(), root.Type.Major, root.Type.Sub, root.Type.Array)
	return nil
}
