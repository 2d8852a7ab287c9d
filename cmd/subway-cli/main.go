package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/subway-routing/internal/config"
	"github.com/smarttransit/subway-routing/internal/console"
	"github.com/smarttransit/subway-routing/internal/services"
	"github.com/smarttransit/subway-routing/pkg/mbta"
)

func main() {
	// Diagnostics go to stderr so they never interleave with the menu
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Server.LogLevel); err == nil && level > logrus.WarnLevel {
		logger.SetLevel(level)
	}

	var source mbta.Source
	if cfg.MBTA.Source == config.SourceFile {
		source = mbta.NewFileSource(cfg.MBTA.FixturePath)
	} else {
		source = mbta.NewClient(mbta.ClientConfig{
			BaseURL: cfg.MBTA.BaseURL,
			APIKey:  cfg.MBTA.APIKey,
			Timeout: cfg.MBTA.Timeout,
		}, logger)
	}

	subway := services.NewSubwayService(source, cfg.MBTA.PathCacheSize, logger)
	if err := console.New(subway, os.Stdin, os.Stdout).Run(context.Background()); err != nil {
		os.Exit(1)
	}
}
