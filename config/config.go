// Package config reads the operator settings of a pipeline run.
//
// Values come from struct defaults, then QURANTAG_* environment variables,
// then an optional INI file. The CLI applies its own flags last.
package config

import (
	"fmt"
	"os"

	"github.com/future-architect/qurantag"
	"github.com/future-architect/qurantag/nlp/arabic"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	ArtifactURL        string `long:"artifact-url" env:"QURANTAG_ARTIFACT_URL" default:"file://./qu" description:"Bucket URL of the pipeline artifacts"`
	DocumentURL        string `long:"document-url" env:"QURANTAG_DOCUMENT_URL" description:"Docstore URL of the published corpus"`
	LocalFolder        string `long:"local-folder" env:"QURANTAG_LOCAL_FOLDER" description:"Folder where memdocstore persists the corpus"`
	Collection         string `long:"collection" env:"QURANTAG_COLLECTION" default:"corpus" description:"Corpus collection name"`
	EventURL           string `long:"event-url" env:"QURANTAG_EVENT_URL" description:"Pubsub topic URL of shard events"`
	Shards             int    `long:"shards" env:"QURANTAG_SHARDS" default:"15" description:"Shard count"`
	Concurrency        int    `long:"concurrency" env:"QURANTAG_CONCURRENCY" default:"4" description:"Shards processed at once"`
	CounterConcurrency int    `long:"counter-concurrency" env:"QURANTAG_COUNTER_CONCURRENCY" default:"5" description:"Sharded counter width of the ledger"`
	Revision           string `long:"revision" env:"QURANTAG_REVISION" default:"core" description:"Tagger revision of the classify stage"`
	ReclassifyRevision string `long:"reclassify-revision" env:"QURANTAG_RECLASSIFY_REVISION" default:"extended" description:"Tagger revision of the reclassify stage"`
	Overlay            string `long:"overlay" env:"QURANTAG_OVERLAY" description:"YAML lexicon overlay"`
	LogLevel           string `long:"log-level" env:"QURANTAG_LOG_LEVEL" default:"info" description:"debug, info, warn or error"`
	Verbose            bool   `long:"verbose" description:"Human readable debug logging"`
	Force              bool   `long:"force" description:"Overwrite existing artifacts"`
}

// Load returns the configuration from defaults and the environment, with the
// INI file at path layered on top. An empty path skips the file.
func Load(path string) (*Config, error) {
	c := &Config{}
	parser := flags.NewParser(c, flags.IgnoreUnknown)
	if _, err := parser.ParseArgs(nil); err != nil {
		return nil, fmt.Errorf("can't read configuration: %w", err)
	}
	if path == "" {
		return c, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if err := flags.NewIniParser(parser).ParseFile(path); err != nil {
		return nil, fmt.Errorf("can't parse config file %s: %w", path, err)
	}
	return c, nil
}

// Logger builds a JSON production logger, or a console development logger
// when Verbose is set.
func (c *Config) Logger() (*zap.Logger, error) {
	var cfg zap.Config
	var level zapcore.Level
	if c.Verbose {
		cfg = zap.NewDevelopmentConfig()
		level = zapcore.DebugLevel
	} else {
		cfg = zap.NewProductionConfig()
		if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", c.LogLevel, err)
		}
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

// Option converts the configuration into pipeline options. A lexicon overlay
// replaces the revision it is named after, or the reclassify revision when
// neither stage names it.
func (c *Config) Option(logger *zap.Logger) (qurantag.Option, error) {
	if c.Shards < 1 {
		return qurantag.Option{}, fmt.Errorf("config: %d shards: %w", c.Shards, qurantag.ErrNoShards)
	}
	if c.Concurrency < 1 {
		return qurantag.Option{}, fmt.Errorf("config: %d workers: %w", c.Concurrency, qurantag.ErrConcurrency)
	}
	opt := qurantag.Option{
		ArtifactUrl:        c.ArtifactURL,
		DocumentUrl:        c.DocumentURL,
		LocalFolder:        c.LocalFolder,
		Collection:         c.Collection,
		CounterConcurrency: c.CounterConcurrency,
		EventUrl:           c.EventURL,
		Shards:             c.Shards,
		Concurrency:        c.Concurrency,
		Revision:           c.Revision,
		ReclassifyRevision: c.ReclassifyRevision,
		Logger:             logger,
		Force:              c.Force,
	}
	if c.Overlay == "" {
		return opt, nil
	}
	f, err := os.Open(c.Overlay)
	if err != nil {
		return opt, fmt.Errorf("can't open lexicon overlay: %w", err)
	}
	defer f.Close()
	overlay, err := arabic.LoadOverlay(f)
	if err != nil {
		return opt, fmt.Errorf("%s: %w", c.Overlay, err)
	}
	tagger, err := arabic.NewTagger(overlay)
	if err != nil {
		return opt, fmt.Errorf("%s: %w", c.Overlay, err)
	}
	switch overlay.Revision {
	case c.Revision:
		opt.Tagger = tagger
	default:
		opt.ReclassifyRevision = overlay.Revision
		opt.ReclassifyTagger = tagger
	}
	return opt, nil
}
