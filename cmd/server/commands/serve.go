package commands

import (
	"context"
	"crypto/rand"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rcarmo/go-pva/internal/channel"
	"github.com/rcarmo/go-pva/internal/config"
	"github.com/rcarmo/go-pva/internal/dispatch"
	"github.com/rcarmo/go-pva/internal/logging"
	"github.com/rcarmo/go-pva/internal/monitor"
	"github.com/rcarmo/go-pva/internal/pdu"
	"github.com/rcarmo/go-pva/internal/transport/tcp"
	"github.com/rcarmo/go-pva/internal/transport/udp"
)

func runServe(cmd *cobra.Command, _ []string) error {
	host, _ := cmd.Flags().GetString("host")
	port, _ := cmd.Flags().GetString("port")
	udpPort, _ := cmd.Flags().GetString("udp-port")
	logLevel, _ := cmd.Flags().GetString("log-level")
	monitorAddr, _ := cmd.Flags().GetString("monitor-addr")

	cfg, err := config.LoadWithOverrides(config.LoadOptions{
		Host:         host,
		Port:         port,
		DiscoveryUDP: udpPort,
		LogLevel:     logLevel,
		ConfigFile:   configFile,
	})
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logging.SetLevelFromString(cfg.Logging.Level)

	channels := channel.NewTable()
	for i, entry := range cfg.Channels {
		channels.Insert(uint32(i+1), channel.Entry{Name: []byte(entry.Name), AccessRights: entry.AccessRights})
		logging.Info("server: loaded static channel %q (access=%#x)", entry.Name, entry.AccessRights)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := tcp.Listen(net.JoinHostPort(cfg.Server.Host, cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("starting TCP listener: %w", err)
	}
	logging.Info("server: TCP session acceptor listening on %s", ln.Addr())

	udpAddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(cfg.Server.Host, cfg.Server.DiscoveryUDPPort))
	if err != nil {
		return fmt.Errorf("resolving UDP discovery address: %w", err)
	}
	socket, err := udp.Listen(udpAddr, true)
	if err != nil {
		return fmt.Errorf("starting UDP discovery socket: %w", err)
	}
	logging.Info("server: UDP beacon/discovery socket bound to %s", socket.LocalAddr())

	broadcastAddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort("255.255.255.255", cfg.Server.DiscoveryUDPPort))
	if err != nil {
		return fmt.Errorf("resolving broadcast address: %w", err)
	}

	var guid [pdu.GUIDSize]byte
	if _, err := rand.Read(guid[:]); err != nil {
		return fmt.Errorf("generating server GUID: %w", err)
	}

	serverPort, err := strconv.ParseUint(cfg.Server.Port, 10, 16)
	if err != nil {
		return fmt.Errorf("invalid server port %q: %w", cfg.Server.Port, err)
	}

	beacon := udp.NewBeaconSender(socket, broadcastAddr, guid, uint16(serverPort))
	responder := &searchResponder{socket: socket, channels: channels, guid: guid, serverPort: uint16(serverPort)}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()
		ln.Close()
		return nil
	})
	g.Go(func() error {
		err := ln.Serve(func(conn net.Conn) (tcp.FrameHandler, error) {
			session := dispatch.NewServerSession(conn, channels, nil)
			if err := session.Start(); err != nil {
				return nil, err
			}
			return session, nil
		})
		if gctx.Err() != nil {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		socket.Close()
		return nil
	})
	g.Go(func() error {
		err := socket.Serve(responder.handle)
		if gctx.Err() != nil {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		beacon.Stop()
		return nil
	})
	g.Go(func() error {
		beacon.Run(cfg.Server.BeaconInterval)
		return nil
	})

	if monitorAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/monitor", monitor.NewHandler(channels, 0))
		httpServer := &http.Server{Addr: monitorAddr, Handler: mux}

		g.Go(func() error {
			<-gctx.Done()
			return httpServer.Close()
		})
		g.Go(func() error {
			err := httpServer.ListenAndServe()
			if err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("monitor endpoint: %w", err)
			}
			return nil
		})
		logging.Info("server: monitor endpoint serving /monitor on %s", monitorAddr)
	}

	logging.Info("server: ready (tcp=%s udp=%s beacon=%s)", ln.Addr(), socket.LocalAddr(), cfg.Server.BeaconInterval)
	return g.Wait()
}
