package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/icewatch/icewatch/cast"
	"github.com/icewatch/icewatch/devices"
	"github.com/icewatch/icewatch/gui"
	"github.com/icewatch/icewatch/interactive"
	"github.com/icewatch/icewatch/internal/config"
	"github.com/icewatch/icewatch/player"
	"github.com/icewatch/icewatch/status"
)

var (
	version string
	build   string

	urlArg     = flag.String("u", "", "Status endpoint URL. Overrides the configured one.")
	originArg  = flag.String("o", "", "Stream origin URL. Overrides the configured one.")
	interPtr   = flag.Bool("i", false, "Start the interactive terminal mode.")
	listPtr    = flag.Bool("l", false, "List the currently connected mounts and exit.")
	probePtr   = flag.Bool("probe", false, "With -l, probe each mount and report its audio type.")
	targetPtr  = flag.String("t", "", "Cast to the named Chromecast device instead of local mpv.")
	versionPtr = flag.Bool("version", false, "Print version.")
)

func main() {
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.GetAppConfig()
	check(err)

	statusURL := cfg.StatusURL
	if *urlArg != "" {
		statusURL = *urlArg
	}

	origin := cfg.StreamOrigin
	if *originArg != "" {
		origin = *originArg
	}

	client := status.NewClient(statusURL)

	exit, err := checkflags(ctx, client, origin)
	check(err)
	if exit {
		os.Exit(0)
	}

	backend, closeBackend, err := selectBackend(ctx, cfg)
	check(err)
	defer closeBackend()

	session := player.NewSession(backend)
	session.Logger = logger

	poller := &status.Poller{
		Client:   client,
		Interval: cfg.PollInterval(),
		Logger:   logger,
	}

	if *interPtr {
		scr, err := interactive.InitTcellNewScreen(session, origin)
		check(err)

		poller.OnUpdate = scr.UpdateSnapshot
		go poller.Run(ctx)

		check(scr.InterInit(ctx))
		return
	}

	scr := gui.InitFyneNewScreen(version, session, backend, client, origin)
	cfg.ApplyAppConfig()

	poller.OnUpdate = scr.UpdateSnapshot
	go poller.Run(ctx)

	gui.Start(ctx, scr)
}

// selectBackend picks the playback backend: the named Chromecast with
// -t, the local mpv otherwise.
func selectBackend(ctx context.Context, cfg *config.Config) (player.Player, func() error, error) {
	if *targetPtr != "" {
		dev, err := devices.FindByName(ctx, *targetPtr)
		if err != nil {
			return nil, nil, errors.Wrap(err, "chromecast lookup error")
		}

		c, err := cast.NewClient(dev.Addr)
		if err != nil {
			return nil, nil, errors.Wrap(err, "chromecast client error")
		}

		if err := c.Connect(); err != nil {
			return nil, nil, errors.Wrap(err, "chromecast connect error")
		}

		return c, c.Close, nil
	}

	m := player.NewMPV(cfg.Player)
	if err := m.Spawn(ctx); err != nil {
		return nil, nil, errors.Wrap(err, "mpv spawn error")
	}

	return m, m.Close, nil
}

func check(err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Encountered error(s): %s\n", err)
		os.Exit(1)
	}
}
