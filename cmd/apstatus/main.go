// Command apstatus drives the RaspAP status display.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"tinygo.org/x/drivers"

	"github.com/ajanata/apstatus"
	"github.com/ajanata/apstatus/internal/config"
	"github.com/ajanata/apstatus/internal/geoip"
	"github.com/ajanata/apstatus/internal/logging"
	"github.com/ajanata/apstatus/internal/media"
	"github.com/ajanata/apstatus/internal/metrics"
	"github.com/ajanata/apstatus/internal/raspap"
	"github.com/ajanata/apstatus/internal/render"
	"github.com/ajanata/apstatus/internal/rotate"
	"github.com/ajanata/apstatus/internal/sim"
	"github.com/ajanata/apstatus/internal/stats"
	"github.com/ajanata/apstatus/internal/system"
	"github.com/ajanata/apstatus/internal/vpn"
)

func main() {
	configPath := flag.String("config", envOr("APSTATUS_CONFIG", "/etc/apstatus/config.yaml"), "path to the YAML config file, empty for defaults")
	simulate := flag.Bool("sim", false, "draw in the terminal and take mouse clicks as touches")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	logCfg := cfg.Logging
	if *simulate && logCfg.Output == "stderr" {
		// the terminal belongs to the simulator
		logCfg.Output = "apstatus.log"
	}
	log, err := logging.New(logging.Config{Level: logCfg.Level, Format: logCfg.Format, Output: logCfg.Output})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log, *simulate); err != nil {
		log.Error("exiting", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger, simulate bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rec := metrics.New()
	if cfg.Metrics.Listen != "" {
		srv := &http.Server{
			Addr:              cfg.Metrics.Listen,
			Handler:           metricsMux(rec),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("serving metrics", zap.String("addr", cfg.Metrics.Listen))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer scancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	runner := system.ExecRunner{Timeout: cfg.Timing.CommandTimeout, Sudo: cfg.Sudo}
	c := apstatus.Collaborators{
		Network: system.NewNetwork(runner, cfg.Interfaces.Host, cfg.Interfaces.AP, log.Named("network")),
		Stats:   stats.New(),
		Geo:     geoip.New(cfg.GeoIP.URL, cfg.GeoIP.Timeout),
		Power:   system.NewPower(runner, log.Named("power")),
	}
	if cfg.API.Key != "" {
		c.API = raspap.New(cfg.API.BaseURL, cfg.API.Key, cfg.Interfaces.AP, cfg.API.Timeout, log.Named("raspap"))
	}
	if cfg.VPN.Enabled {
		profiles, perr := cfg.LoadVPNProfiles()
		c.VPN = vpn.New(runner, vpnProfiles(profiles), perr, log.Named("vpn"))
	}

	var disp drivers.Displayer
	if simulate {
		ts, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("creating terminal: %w", err)
		}
		s, err := sim.New(ts, int16(cfg.Display.Width), int16(cfg.Display.Height))
		if err != nil {
			return fmt.Errorf("initializing terminal: %w", err)
		}
		defer s.Close()
		s.Listen(cancel)
		disp = s
		c.Touch = s
	} else {
		var touchMap func(image.Point) image.Point
		if cfg.Display.Rotate {
			r := rotate.New(media.NewFrame(int16(cfg.Display.Height), int16(cfg.Display.Width), cfg.Display.FramePath))
			touchMap = r.MapTouch
			disp = r
		} else {
			disp = media.NewFrame(int16(cfg.Display.Width), int16(cfg.Display.Height), cfg.Display.FramePath)
		}
		if cfg.Display.TouchPath != "" {
			t := system.NewTouchFile(cfg.Display.TouchPath, log.Named("touch"))
			t.Map = touchMap
			c.Touch = t
		} else {
			log.Warn("no touch input configured")
			c.Touch = noTouch{}
		}
	}

	panel, err := render.New(disp)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	panel.Title = cfg.Title
	c.Surface = panel

	opts := apstatus.DefaultOptions()
	opts.Tick = cfg.Timing.Tick
	opts.Refresh = cfg.Timing.Refresh
	opts.TouchCooldown = cfg.Timing.TouchCooldown
	opts.IgnoreAfterTransition = cfg.Timing.IgnoreAfterTransition
	opts.StatusMessage = cfg.Timing.StatusMessage
	opts.VPNItemsPerScreen = cfg.VPN.ItemsPerScreen
	opts.TTLs = apstatus.TTLs{
		HostLink:     cfg.Cache.HostLink,
		APState:      cfg.Cache.APState,
		APSSID:       cfg.Cache.APSSID,
		APClients:    cfg.Cache.APClients,
		VPN:          cfg.Cache.VPN,
		System:       cfg.Cache.System,
		Geo:          cfg.Cache.Geo,
		FailureGrace: cfg.Cache.FailureGrace,
	}
	opts.Title = cfg.Title
	opts.HostInterface = cfg.Interfaces.Host
	opts.APInterface = cfg.Interfaces.AP
	opts.Width = cfg.Display.Width
	opts.Height = cfg.Display.Height
	opts.Logger = logging.NewCore(log.Named("core"))
	opts.CacheObserver = rec
	opts.Events = rec

	app, err := apstatus.New(c, opts)
	if err != nil {
		return err
	}
	if err := app.Init(ctx); err != nil {
		return err
	}

	err = app.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info("shutting down")
		return nil
	}
	return err
}

func metricsMux(rec *metrics.Recorder) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	return mux
}

func vpnProfiles(in []config.Profile) []apstatus.VPNProfile {
	out := make([]apstatus.VPNProfile, len(in))
	for i, p := range in {
		out[i] = apstatus.VPNProfile{Name: p.Name, Server: p.Server, Protocol: p.Protocol}
	}
	return out
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

type noTouch struct{}

func (noTouch) Touch() (image.Point, bool) { return image.Point{}, false }
