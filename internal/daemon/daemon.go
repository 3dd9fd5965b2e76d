package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/daywatch-app/daywatch/internal/api"
	"github.com/daywatch-app/daywatch/internal/app/tracker"
	"github.com/daywatch-app/daywatch/internal/health"
	_ "github.com/daywatch-app/daywatch/internal/infra/metrics" // register Prometheus metrics
	sig "github.com/daywatch-app/daywatch/internal/infra/signal"
	"github.com/daywatch-app/daywatch/internal/infra/sqlite"
	"github.com/daywatch-app/daywatch/internal/infra/sun"
	"github.com/daywatch-app/daywatch/internal/notify"
	"github.com/daywatch-app/daywatch/internal/presence"
)

// Daemon is the daywatch runtime. It wires the engine to its signals,
// sinks, store and HTTP surface.
type Daemon struct {
	Config   Config
	DB       *sqlite.DB
	Settings *tracker.SettingsStore
	Engine   *tracker.Engine
	Server   *api.Server
	Health   *health.Checker

	input    *sig.Input
	meeting  *sig.MeetingDetector
	flash    *notify.Flash
	overlay  *notify.Overlay
	presence *presence.Publisher

	cancel context.CancelFunc
}

// New creates and initializes a Daemon from the on-disk config.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	db, err := sqlite.Open(Home())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	set := cfg.Settings()
	if err := set.Validate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("config tracking section: %w", err)
	}
	settings := tracker.NewSettingsStore(set)

	input := sig.NewInput()
	meeting := sig.NewMeetingDetector(cfg.Meeting.ProcessName)
	meeting.SetVerifyDelay(cfg.MeetingVerifyDelay())

	flash := notify.NewFlash()
	overlay := notify.NewOverlay()
	notifier := notify.NewDesktop("daywatch")

	engine := tracker.NewEngine(db, settings, input, meeting,
		notifier, flash, overlay, sun.MinutesUntilSunset)

	meeting.OnJoin(func() { engine.HandleMeetingJoin(time.Now()) })
	meeting.OnLeave(func() { engine.HandleMeetingLeave(time.Now()) })

	srv := api.NewServer(engine, settings, db, flash, overlay)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	d := &Daemon{
		Config:   cfg,
		DB:       db,
		Settings: settings,
		Engine:   engine,
		Server:   srv,
		Health:   health.NewChecker(db, Home(), input),
		input:    input,
		meeting:  meeting,
		flash:    flash,
		overlay:  overlay,
	}

	// Settings accepted over the API are written back to config.toml so
	// they survive a restart.
	srv.PersistSettings(func(set tracker.Settings) error {
		d.Config = d.Config.WithSettings(set)
		return SaveConfig(d.Config)
	})

	d.presence = presence.NewPublisher(presence.Config{
		Enabled:    cfg.Presence.Enabled,
		WebhookURL: cfg.Presence.WebhookURL,
		Interval:   cfg.PresenceInterval(),
	}, engine.Snapshot)

	return d, nil
}

// Serve starts the engine, signals and HTTP server, and blocks until
// shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Engine.Run(ctx)
	go d.Health.Run(ctx)
	go d.presence.Run(ctx)
	if d.Config.Meeting.ProcessName != "" {
		go d.meeting.Run(ctx, d.Config.MeetingPollInterval())
	}

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		// Flush before the store closes so at most the current batch of
		// unsaved ticks is lost.
		if err := d.Engine.Flush(); err != nil {
			log.Printf("[daemon] flush on shutdown: %v", err)
		}
		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	fmt.Printf("daywatch serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  metrics: http://%s/metrics\n", addr)
	}
	if d.Config.Meeting.ProcessName != "" {
		fmt.Printf("  meeting detection: %s every %s\n",
			d.Config.Meeting.ProcessName, d.Config.MeetingPollInterval())
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Engine != nil {
		_ = d.Engine.Flush()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
