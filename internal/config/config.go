package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Catalog sources.
const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config holds service configuration. Environment variables provide the
// defaults and flags override them.
type Config struct {
	HTTPAddr string `env:"INNERVOICE_HTTP_ADDR" envDefault:":8080"`

	CatalogSource string `env:"INNERVOICE_CATALOG_SOURCE" envDefault:"embedded"`
	CatalogFile   string `env:"INNERVOICE_CATALOG_FILE"`
	CatalogName   string `env:"INNERVOICE_CATALOG_NAME" envDefault:"default"`
	SeedCatalog   bool   `env:"INNERVOICE_SEED_CATALOG"`

	ThoughtDelay time.Duration `env:"INNERVOICE_THOUGHT_DELAY" envDefault:"600ms"`
	TypingDelay  time.Duration `env:"INNERVOICE_TYPING_DELAY" envDefault:"1s"`
	TurnPause    time.Duration `env:"INNERVOICE_TURN_PAUSE" envDefault:"800ms"`
	Seed         uint64        `env:"INNERVOICE_SEED"`

	MQTTURL         string `env:"MQTT_URL"`
	MQTTUsername    string `env:"MQTT_USERNAME"`
	MQTTClientID    string `env:"INNERVOICE_MQTT_CLIENT_ID" envDefault:"innervoice"`
	MQTTTopicPrefix string `env:"INNERVOICE_MQTT_PREFIX" envDefault:"innervoice"`

	TLSCert string `env:"INNERVOICE_TLS_CERT"`
	TLSKey  string `env:"INNERVOICE_TLS_KEY"`
}

// Parse reads the environment, then applies flags from args.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.CatalogSource, "catalog-source", cfg.CatalogSource, "catalog source: embedded, file or postgres")
	fs.StringVar(&cfg.CatalogFile, "catalog", cfg.CatalogFile, "path to a catalog YAML file (implies -catalog-source=file)")
	fs.StringVar(&cfg.CatalogName, "catalog-name", cfg.CatalogName, "catalog name in postgres")
	fs.BoolVar(&cfg.SeedCatalog, "seed-catalog", cfg.SeedCatalog, "write the embedded catalog to postgres before loading")
	fs.DurationVar(&cfg.ThoughtDelay, "thought-delay", cfg.ThoughtDelay, "delay before each internal thought")
	fs.DurationVar(&cfg.TypingDelay, "typing-delay", cfg.TypingDelay, "typing delay before each spoken line")
	fs.DurationVar(&cfg.TurnPause, "turn-pause", cfg.TurnPause, "pause between turns")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "scenario selection seed (0 = random)")
	fs.StringVar(&cfg.MQTTURL, "mqtt", cfg.MQTTURL, "MQTT broker URL for the event mirror (empty disables)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.CatalogFile != "" && cfg.CatalogSource == SourceEmbedded {
		cfg.CatalogSource = SourceFile
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks option combinations that env and flag parsing cannot.
func (c Config) Validate() error {
	switch c.CatalogSource {
	case SourceEmbedded, SourcePostgres:
	case SourceFile:
		if c.CatalogFile == "" {
			return fmt.Errorf("catalog source %q requires a catalog file", SourceFile)
		}
	default:
		return fmt.Errorf("unknown catalog source: %q", c.CatalogSource)
	}
	if c.SeedCatalog && c.CatalogSource != SourcePostgres {
		return fmt.Errorf("-seed-catalog requires catalog source %q", SourcePostgres)
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return fmt.Errorf("INNERVOICE_TLS_CERT and INNERVOICE_TLS_KEY must be set together")
	}
	return nil
}

// TLSEnabled reports whether a certificate pair is configured.
func (c Config) TLSEnabled() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}
