package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"SharedBoard/internal/config"
	"SharedBoard/internal/export"
	pkglog "SharedBoard/internal/log"
	boardnet "SharedBoard/internal/net"
	"SharedBoard/internal/relay"
	"SharedBoard/internal/render"
	"SharedBoard/internal/session"
	"SharedBoard/internal/ui"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

const usage = `usage:
  sharedboard host  [flags]           start a relay and draw on it
  sharedboard join  [link] [flags]    join a board (browses the LAN without a link)
  sharedboard relay [flags]           run a headless relay
`

func main() {
	mode, args := "host", os.Args[1:]
	if len(args) > 0 {
		switch {
		case strings.HasPrefix(args[0], boardnet.LinkScheme+"://"):
			// launched through the link handler
			mode = "join"
		case !strings.HasPrefix(args[0], "-"):
			mode, args = args[0], args[1:]
		}
	}

	fs := config.NewFlagSet(mode)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load configuration")
	}
	cfg.Log.Component = mode
	pkglog.Init(cfg.Log)
	logger := pkglog.L()

	switch mode {
	case "host":
		err = runHost(cfg)
	case "join":
		err = runJoin(cfg, fs.Arg(0))
	case "relay":
		err = runRelay(cfg)
	default:
		fs.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal().Err(err).Str("mode", mode).Msg("exiting")
	}
}

// startRelay runs a hub and its HTTP server in g until ctx is done.
func startRelay(ctx context.Context, g *errgroup.Group, cfg *config.Config) error {
	logger := pkglog.L()

	var opts []relay.HubOption
	if cfg.Backplane.Enabled {
		bp, err := relay.NewRedisBackplane(ctx, cfg.Backplane.RelayRedis())
		if err != nil {
			return err
		}
		logger.Info().Str("address", cfg.Backplane.Redis.Address).Str("channel", cfg.Backplane.Channel).Msg("connected to redis backplane")
		opts = append(opts, relay.WithBackplane(bp))
		g.Go(func() error {
			<-ctx.Done()
			return bp.Close()
		})
	}

	// Bind before returning so a local participant can dial right away.
	ln, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("relay listen: %w", err)
	}
	hub := relay.NewHub(cfg.WebSocket, opts...)
	g.Go(func() error { return hub.Run(ctx) })
	g.Go(func() error { return relay.NewServer(hub).Serve(ctx, ln) })

	if cfg.Discovery.Enabled {
		server, err := boardnet.Advertise(cfg.Server.Port)
		if err != nil {
			logger.Warn().Err(err).Msg("mDNS advertise failed, share the link by hand")
		} else {
			g.Go(func() error {
				<-ctx.Done()
				return server.Shutdown()
			})
		}
	}
	return nil
}

// signalContext is cancelled on SIGINT, SIGTERM or by calling cancel.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(ctx)
	return ctx, func() {
		cancel()
		stop()
	}
}

func runRelay(cfg *config.Config) error {
	ctx, stop := signalContext()
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	if err := startRelay(ctx, g, cfg); err != nil {
		return err
	}
	err := g.Wait()
	l := pkglog.L()
	l.Info().Msg("relay stopped")
	return err
}

func runHost(cfg *config.Config) error {
	logger := pkglog.L()

	ip, err := boardnet.OutgoingIP()
	if err != nil {
		logger.Warn().Err(err).Msg("could not determine local IP")
		ip = "127.0.0.1"
	}
	link := boardnet.ShareLink(ip, cfg.Server.Port)
	logger.Info().Str("link", link).Msg("hosting board")

	ctx, cancel := signalContext()
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	if err := startRelay(ctx, g, cfg); err != nil {
		return err
	}

	local := boardnet.RelayURL(fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port))
	return runBoard(ctx, cancel, g, cfg, local, link)
}

func runJoin(cfg *config.Config, link string) error {
	logger := pkglog.L()

	var addr string
	var err error
	if link != "" {
		if addr, err = boardnet.ParseLink(link); err != nil {
			return err
		}
	} else {
		if !cfg.Discovery.Enabled {
			return errors.New("no link given and discovery is disabled")
		}
		logger.Info().Dur("timeout", cfg.Discovery.Timeout).Msg("looking for boards on the local network")
		found, err := boardnet.Browse(context.Background(), cfg.Discovery.Timeout)
		if len(found) == 0 {
			if err == nil {
				err = errors.New("no board found on the local network")
			}
			return err
		}
		addr = found[0]
	}

	ctx, cancel := signalContext()
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	return runBoard(ctx, cancel, g, cfg, boardnet.RelayURL(addr), boardnet.LinkScheme+"://"+addr)
}

// runBoard connects a participant to url and shows the window. It returns
// once the window is closed and every goroutine in g has finished.
func runBoard(ctx context.Context, cancel context.CancelFunc, g *errgroup.Group, cfg *config.Config, url, link string) error {
	logger := pkglog.L()

	clientCfg := boardnet.DefaultConfig()
	clientCfg.URL = url
	clientCfg.HandshakeTimeout = cfg.Client.HandshakeTimeout
	clientCfg.WriteTimeout = cfg.Client.WriteTimeout
	clientCfg.ReadLimit = cfg.WebSocket.MaxMessageSize
	client := boardnet.NewClient(clientCfg)

	scene := render.NewScene()
	sess := session.New(scene, client,
		session.WithBounds(cfg.Canvas.Bounds()),
		session.WithBrush(cfg.Brush.Color, cfg.Brush.Width),
	)

	window := ui.NewApp(scene, sess, ui.Options{
		Title:      "SharedBoard",
		ShareLink:  link,
		BrushWidth: cfg.Brush.Width,
		Export: export.Options{
			Width:      cfg.Canvas.Width,
			Height:     cfg.Canvas.Height,
			Background: cfg.Canvas.Background,
		},
	})
	client.OnState(func(s boardnet.ConnectionState) {
		window.SetStatus(s.String())
	})

	g.Go(func() error { return sess.Run(ctx) })
	g.Go(func() error {
		if err := client.Connect(ctx); err != nil {
			// Drawing keeps working offline.
			logger.Error().Err(err).Msg("could not reach the relay")
			window.SetStatus("Offline: " + err.Error())
		}
		<-ctx.Done()
		if err := client.Close(); err != nil {
			logger.Debug().Err(err).Msg("closing relay connection")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		window.Quit()
		return nil
	})

	window.Run()
	cancel()
	return g.Wait()
}
