package commands

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcarmo/go-pva/internal/logging"
	"github.com/rcarmo/go-pva/internal/pdu"
	"github.com/rcarmo/go-pva/internal/transport/udp"
)

var (
	searchUDPPort int
	searchTimeout time.Duration
)

var searchCmd = &cobra.Command{
	Use:   "search <channel>...",
	Short: "Broadcast a search request for one or more channels",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchUDPPort, "udp-port", 5076, "UDP discovery port to broadcast on")
	searchCmd.Flags().DurationVar(&searchTimeout, "timeout", 2*time.Second, "how long to wait for responses")
}

func runSearch(cmd *cobra.Command, args []string) error {
	socket, err := udp.Listen(&net.UDPAddr{Port: 0}, true)
	if err != nil {
		return fmt.Errorf("opening search socket: %w", err)
	}
	defer socket.Close()

	broadcastAddr := &net.UDPAddr{IP: net.IPv4bcast, Port: searchUDPPort}

	queries := make([]pdu.ChannelQuery, len(args))
	for i, name := range args {
		queries[i] = pdu.ChannelQuery{InstanceID: uint32(i + 1), Name: []byte(name)}
	}

	logging.Info("client: searching for %v on %s", args, broadcastAddr)
	responses, err := udp.Search(socket, broadcastAddr, 1, queries, searchTimeout)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if len(responses) == 0 {
		cmd.Println("no servers responded")
		return nil
	}
	for _, resp := range responses {
		cmd.Printf("server %s:%d found=%t instances=%v\n", resp.ServerAddress, resp.ServerPort, resp.Found, resp.InstanceIDs)
	}
	return nil
}
