// Command ledtree-sim runs the breathing engine on the host with fake or
// PCA9685-over-fake-I2C outputs, a shell on stdin and a websocket preview.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledtree-go/drivers/pca9685"
	"ledtree-go/errcode"
	"ledtree-go/platform"
	"ledtree-go/services/knob"
	"ledtree-go/services/leds"
	"ledtree-go/services/preview"
	"ledtree-go/services/settings"
	"ledtree-go/services/shell"
)

var build = "dev"

type stdio struct{}

func (stdio) Read(b []byte) (int, error)  { return os.Stdin.Read(b) }
func (stdio) Write(b []byte) (int, error) { return os.Stdout.Write(b) }

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config")
		logLevel   = flag.String("log-level", "", "override logging level (error, warn, info, debug)")
		addr       = flag.String("addr", "", "override preview listen address")
		iniPath    = flag.String("settings", "", "override INI settings path")
	)
	flag.Parse()

	cfg := DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = LoadConfigFile(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *addr != "" {
		cfg.Preview.Addr = *addr
	}
	if *iniPath != "" {
		cfg.Settings = *iniPath
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid config:", err)
		os.Exit(2)
	}
	level, _ := parseLogLevel(cfg.Logging.Level)
	logger := setupLogger(os.Stderr, level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("simulator stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, logger *slog.Logger) error {
	st := loadSettings(cfg.Settings, logger)
	eng, err := newEngine(cfg, st, logger)
	if err != nil {
		return err
	}
	eng.Start(ctx)
	logger.Info("engine started", "channels", eng.Len(), "backend", cfg.Backend,
		"min_period_ms", st.MinPeriod, "max_period_ms", st.MaxPeriod)

	if cfg.Knob >= 0 {
		adc := &platform.FakeADC{}
		adc.Store(uint16(cfg.Knob))
		_ = knob.New(adc, eng, knob.Config{}).Start(ctx)
	}
	if cfg.Shell {
		sh := shell.New(eng, shell.Info{App: "ledtree-sim", Build: build})
		go func() {
			if err := sh.Serve(ctx, stdio{}); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("shell stopped", "error", err)
			}
		}()
	}
	if cfg.Preview.Addr == "" {
		<-ctx.Done()
		return nil
	}
	return servePreview(ctx, cfg.Preview, eng, logger)
}

func loadSettings(path string, logger *slog.Logger) settings.Settings {
	if path == "" {
		return settings.Defaults()
	}
	st, err := settings.LoadFile(path)
	switch errcode.Of(err) {
	case errcode.OK:
	case errcode.BadValue:
		logger.Warn("settings rejected, keeping defaults for", "keys", err.Error())
	case errcode.NotFound:
		logger.Warn("settings file not found, using defaults", "path", path)
	default:
		logger.Warn("settings unreadable, using defaults", "error", err)
	}
	return st
}

func newEngine(cfg Config, st settings.Settings, logger *slog.Logger) (*leds.Engine, error) {
	outs := make([]leds.Output, cfg.Channels)
	switch cfg.Backend {
	case "pca9685":
		dev := pca9685.New(platform.NewHostI2C())
		for i := range outs {
			outs[i] = dev.Output(i)
		}
	default:
		for i := range outs {
			outs[i] = &platform.FakeOutput{}
		}
	}

	gamma, _ := parseGamma(cfg.Gamma)
	shape, _ := parseShape(cfg.Shape)
	amp, _ := parseAmplitude(cfg.Amplitude)
	seed := cfg.Seed
	if seed == 0 {
		seed = platform.Seed()
	}
	logger.Debug("engine config", "seed", seed, "gamma", gamma.String(), "shape", shape.String(), "amplitude", amp.String())

	return leds.New(outs, leds.Config{
		Limits:       st.Limits(),
		Tick:         time.Duration(cfg.TickUS) * time.Microsecond,
		FreqHz:       cfg.FreqHz,
		Top:          cfg.Top,
		Gamma:        gamma,
		Shape:        shape,
		Amplitude:    amp,
		QueueLen:     cfg.QueueLen,
		PollInterval: time.Duration(cfg.PollMS) * time.Millisecond,
		Rand:         rand.New(rand.NewSource(seed)),
	})
}

func servePreview(ctx context.Context, pc PreviewConfig, eng *leds.Engine, logger *slog.Logger) error {
	srv := preview.NewServer(logger, eng, preview.Config{Interval: time.Duration(pc.IntervalMS) * time.Millisecond})
	go srv.Run(ctx)

	hs := &http.Server{Addr: pc.Addr, Handler: srv.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = hs.Shutdown(sctx)
	}()
	logger.Info("preview listening", "addr", pc.Addr)
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
