package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/application/cities"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/infrastructure/config"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/infrastructure/logging"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/infrastructure/metrics"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/infrastructure/router"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/infrastructure/tracing"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/presentation/api"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const serviceName string = "latitude-explorer"

type flagType int
type flagMap map[flagType]string

const (
	listenAddress flagType = iota
	servicePort
	devMode
	logLevel
)

func defaultFlags() flagMap {
	return flagMap{
		listenAddress: "0.0.0.0",
		servicePort:   "8080",
		devMode:       "false",
		logLevel:      "info",
	}
}

func main() {
	// a missing .env file is fine, the environment may be set up elsewhere
	_ = godotenv.Load()

	flags := parseExternalConfig(defaultFlags(), os.Getenv)

	serviceVersion := version()

	ctx, logger := logging.NewLogger(context.Background(), serviceName, serviceVersion, flags[logLevel])
	logger.Info().Msg("starting up ...")

	cleanup, err := tracing.Init(ctx, logger, serviceName, serviceVersion)
	exitIf(err, logger, "failed to init tracing")
	defer cleanup()

	settings, err := config.LoadSettings(os.Getenv)
	exitIf(err, logger, "invalid query settings")

	storageCfg, err := config.ResolveStorage(os.Getenv)
	exitIf(err, logger, "invalid storage configuration")

	store, err := config.OpenStore(ctx, storageCfg)
	exitIf(err, logger, "could not connect to database")
	defer store.Close()

	metrics.StorageBackend.WithLabelValues(string(storageCfg.Backend)).Set(1)
	logger.Info().Str("backend", string(storageCfg.Backend)).Msg("storage backend selected")

	r := setupRouter(ctx, logger, store, settings, flags[devMode] == "true")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = run(ctx, logger, r, net.JoinHostPort(flags[listenAddress], flags[servicePort]))
	exitIf(err, logger, "failed to start request router")
}

func setupRouter(ctx context.Context, logger zerolog.Logger, store cities.CityStore, settings cities.Settings, devMode bool) *chi.Mux {
	r := router.New(serviceName, logger)
	return api.RegisterHandlers(ctx, r, cities.New(store, settings), devMode)
}

// run serves requests until ctx is done and then shuts the server down.
func run(ctx context.Context, logger zerolog.Logger, handler http.Handler, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return logging.NewContextWithLogger(context.Background(), logger)
		},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", addr).Msg("starting to listen for connections")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func parseExternalConfig(flags flagMap, getenv config.Getenv) flagMap {
	// Allow environment variables to override certain defaults
	envOrDef := func(key, def string) string { return config.EnvOrDef(getenv, key, def) }

	flags[listenAddress] = envOrDef("LISTEN_ADDRESS", flags[listenAddress])
	flags[servicePort] = envOrDef("SERVICE_PORT", flags[servicePort])
	flags[devMode] = envOrDef("DEV_MODE", flags[devMode])
	flags[logLevel] = envOrDef("LOG_LEVEL", flags[logLevel])

	apply := func(f flagType) func(string) error {
		return func(value string) error {
			flags[f] = value
			return nil
		}
	}

	// Allow command line arguments to override defaults and environment variables
	flag.Func("port", "port to listen on", apply(servicePort))
	flag.Func("devmode", "include error details in responses", apply(devMode))
	flag.Func("loglevel", "log level (debug, info, warn, error)", apply(logLevel))
	flag.Parse()

	return flags
}

func exitIf(err error, logger zerolog.Logger, msg string) {
	if err != nil {
		logger.Fatal().Err(err).Msg(msg)
	}
}

func version() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	buildSettings := buildInfo.Settings
	infoMap := map[string]string{}
	for _, s := range buildSettings {
		infoMap[s.Key] = s.Value
	}

	sha := infoMap["vcs.revision"]
	if infoMap["vcs.modified"] == "true" {
		sha += "+"
	}

	return sha
}
