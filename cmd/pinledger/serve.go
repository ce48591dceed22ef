package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pinledger/internal/amqp"
	"pinledger/internal/cache"
	"pinledger/internal/cli"
	"pinledger/internal/config"
	"pinledger/internal/core"
	apphttp "pinledger/internal/http"
	"pinledger/internal/location"
	"pinledger/internal/log"
	"pinledger/internal/notify"
	"pinledger/internal/proximity"
	"pinledger/internal/services"
	"pinledger/internal/worker"
)

var (
	flagPush     bool
	flagSimulate string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the proximity monitor",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&flagPush, "push", false, "Evaluate every reported position instead of sampling on LOCATION_INTERVAL")
	serveCmd.Flags().StringVar(&flagSimulate, "simulate", "", `Replay a route instead of reported positions, e.g. "37.7749,-122.4194;37.7750,-122.4184"`)
	serveCmd.MarkFlagsMutuallyExclusive("push", "simulate")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(os.Stdout)
	if err != nil {
		return err
	}
	logger.Info("Starting pinledger", "port", cfg.Port, "backend", cfg.DataBackend)

	repo, err := cli.InitBackend(logger, cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	pois, err := cli.LoadPlaces(logger, cfg)
	if err != nil {
		return err
	}

	amqpClient, err := cli.ConnectAMQP(logger, cfg)
	if err != nil {
		return err
	}
	if amqpClient != nil {
		defer amqpClient.Close()
	}

	prefs := services.NewPreferencesService(cfg.DefaultPreferences())
	ledger := services.NewLedgerService(repo, 5*time.Minute).WithLogger(logger)
	if amqpClient != nil {
		ledger.WithEvents(amqpClient, cfg.AMQPEventsQueue)
	}

	caches := cache.NewManager().WithLogger(logger)
	caches.Register(ledger.Cache())
	caches.StartCleanup(10 * time.Minute)
	defer caches.Stop()

	notifier, err := buildNotifier(logger, cfg, amqpClient)
	if err != nil {
		return err
	}

	feed := location.NewFeed().WithLogger(logger)
	defer feed.Close()

	source, err := buildSource(logger, cfg, feed)
	if err != nil {
		return err
	}

	monitor := proximity.NewMonitor(pois, notifier,
		proximity.WithRadius(cfg.ProximityRadius),
		proximity.WithCooldown(cfg.ProximityCooldown),
		proximity.WithLanguage(prefs.Language),
		proximity.WithLogger(logger.WithComponent(log.ComponentProximity)))

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:      ledger,
		Preferences: prefs,
		Places:      pois,
		Radius:      monitor.Radius(),
		Locations:   feed,
		Ready:       repo,
		Logger:      logger.WithComponent(log.ComponentHTTP),
	})
	if err != nil {
		return err
	}

	ctx, cancel := cli.SignalContext(cmd.Context(), logger)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		err := monitor.Run(gctx, source)
		if errors.Is(err, location.ErrPermissionDenied) {
			logger.Warn("Proximity monitoring stopped: location permission denied")
			return nil
		}
		return err
	})
	if amqpClient != nil {
		locations := worker.NewLocationWorker(feed, logger.WithComponent(log.ComponentWorker))
		g.Go(func() error {
			return ignoreCanceled(amqpClient.Consume(gctx, cfg.AMQPLocationQueue, locations.HandleLocation))
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

// buildNotifier always logs. With AMQP, alerts are queued for
// pinledger-notifier; otherwise they go to Telegram directly when configured.
func buildNotifier(logger *log.Logger, cfg *config.Config, client *amqp.Client) (notify.Notifier, error) {
	notifiers := notify.Multi{notify.LogNotifier{Logger: logger.WithComponent(log.ComponentNotify)}}

	switch {
	case client != nil:
		notifiers = append(notifiers, notify.NewQueueNotifier(client, cfg.AMQPNotifyQueue))
	case cfg.TelegramEnabled():
		tg, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, tg)
	}
	return notifiers, nil
}

func buildSource(logger *log.Logger, cfg *config.Config, feed *location.Feed) (location.Source, error) {
	sampling := location.SamplerConfig{Interval: cfg.LocationInterval, MinDistance: cfg.LocationMinDistance}

	if flagSimulate != "" {
		route, err := parseRoute(flagSimulate)
		if err != nil {
			return nil, err
		}
		return location.NewSampler(location.NewRouteProvider(route...), sampling).WithLogger(logger), nil
	}
	if flagPush {
		return feed, nil
	}
	return location.NewSampler(location.FeedProvider{Feed: feed}, sampling).WithLogger(logger), nil
}

// parseRoute reads "lat,lon;lat,lon;...".
func parseRoute(s string) ([]core.Coordinates, error) {
	var route []core.Coordinates
	for _, point := range strings.Split(s, ";") {
		point = strings.TrimSpace(point)
		if point == "" {
			continue
		}
		lat, lon, ok := strings.Cut(point, ",")
		if !ok {
			return nil, fmt.Errorf("invalid route point %q: want lat,lon", point)
		}
		c, err := parseCoordinates(lat, lon)
		if err != nil {
			return nil, fmt.Errorf("invalid route point %q: %w", point, err)
		}
		route = append(route, c)
	}
	if len(route) == 0 {
		return nil, errors.New("route is empty")
	}
	return route, nil
}

func parseCoordinates(lat, lon string) (core.Coordinates, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return core.Coordinates{}, fmt.Errorf("invalid latitude %q", lat)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return core.Coordinates{}, fmt.Errorf("invalid longitude %q", lon)
	}
	return core.Coordinates{Latitude: la, Longitude: lo}, nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
