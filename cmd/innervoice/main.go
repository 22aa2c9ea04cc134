package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/AaronLay10/InnerVoice/internal/api"
	"github.com/AaronLay10/InnerVoice/internal/config"
	"github.com/AaronLay10/InnerVoice/internal/events"
	"github.com/AaronLay10/InnerVoice/internal/mqtt"
	"github.com/AaronLay10/InnerVoice/internal/playback"
	"github.com/AaronLay10/InnerVoice/internal/random"
	"github.com/AaronLay10/InnerVoice/internal/render"
	"github.com/AaronLay10/InnerVoice/internal/scenario"
	"github.com/AaronLay10/InnerVoice/internal/sink"
	"github.com/AaronLay10/InnerVoice/internal/version"
)

// logEvent records a lifecycle event on the bus and writes it to stdout as a
// single JSON line.
func logEvent(bus *events.Bus, level, event, msg string, fields map[string]interface{}) {
	b, err := bus.Emit(level, event, msg, fields)
	if err != nil {
		log.Printf("innervoice: %v", err)
		return
	}
	fmt.Println(string(b))
}

type components struct {
	engine   *playback.Engine
	internal *sink.Internal
	external *sink.External
	typing   *sink.Typing
}

func buildEngine(ctx context.Context, cfg config.Config, bus *events.Bus) (*components, error) {
	catalog, err := loadCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}

	rng, err := random.New(cfg.Seed)
	if err != nil {
		return nil, err
	}

	renderer := render.New(catalog.Roles())
	for kind, color := range catalog.Colors() {
		renderer.SetColor(kind, color)
	}
	pub := render.NewPublisher(bus, renderer)
	c := &components{
		internal: sink.NewInternal(pub),
		external: sink.NewExternal(pub),
		typing:   sink.NewTyping(pub),
	}
	c.engine, err = playback.New(catalog, playback.Options{
		Internal: c.internal,
		External: c.external,
		Typing:   c.typing,
		Observer: pub,
		Picker:   scenario.RandomPicker(rng),
		Delays: playback.Delays{
			Thought:   cfg.ThoughtDelay,
			Typing:    cfg.TypingDelay,
			TurnPause: cfg.TurnPause,
		},
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func run(ctx context.Context, cfg config.Config) error {
	bus := events.NewBus(events.DefaultBufferSize)

	hostname, _ := os.Hostname()
	logEvent(bus, "info", "system.startup", "innervoice starting", map[string]interface{}{
		"service":  "innervoice",
		"hostname": hostname,
		"pid":      os.Getpid(),
		"version":  version.Version,
		"addr":     cfg.HTTPAddr,
	})

	opts := api.Options{Bus: bus}
	if cfg.TLSEnabled() {
		opts.TLS = api.NewTLSConfig(cfg.TLSCert, cfg.TLSKey)
	}
	c, err := buildEngine(ctx, cfg, bus)
	if err != nil {
		var cfgErr *scenario.ConfigurationError
		level := "error"
		if errors.As(err, &cfgErr) {
			level = "warn"
		}
		logEvent(bus, level, "catalog.invalid", "simulation unavailable", map[string]interface{}{
			"source": cfg.CatalogSource,
			"error":  err.Error(),
		})
		opts.Unavailable = err
	} else {
		catalog := c.engine.Catalog()
		logEvent(bus, "info", "catalog.loaded", "", map[string]interface{}{
			"source":    cfg.CatalogSource,
			"scenarios": catalog.Keys(),
		})
		opts.Engine = c.engine
		opts.Typing = c.typing
		opts.Internal = c.internal
		opts.External = c.external
	}

	srv := api.New(opts)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gctx, cfg.HTTPAddr)
	})

	if cfg.MQTTURL != "" {
		user, password, err := cfg.MQTTCredentials()
		if err != nil {
			return err
		}
		client := mqtt.NewClient(cfg.MQTTURL, cfg.MQTTClientID, user, password)
		if err := client.Connect(); err != nil {
			log.Printf("mqtt: event mirror disabled: %v", err)
		} else {
			log.Printf("mqtt: mirroring events to %s under %q", client.BrokerURL(), cfg.MQTTTopicPrefix)
			g.Go(func() error {
				defer client.Disconnect()
				mqtt.Mirror(gctx, bus, client, cfg.MQTTTopicPrefix)
				return nil
			})
		}
	}

	err = g.Wait()
	logEvent(bus, "info", "system.shutdown", "innervoice stopped", nil)
	return err
}

func main() {
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("innervoice: %v", err)
	}
}
