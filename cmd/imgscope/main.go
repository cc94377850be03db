package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/olegrjumin/imgscope/internal/analyzer"
	"github.com/olegrjumin/imgscope/internal/collector"
	"github.com/olegrjumin/imgscope/internal/config"
	"github.com/olegrjumin/imgscope/internal/httpclient"
	"github.com/olegrjumin/imgscope/internal/logging"
)

func main() {
	app := &cli.App{
		Name:  "imgscope",
		Usage: "analyze how well the images on a web page are optimized",
		Commands: []*cli.Command{
			{
				Name:   "analyze",
				Usage:  "collect, score, and report every image on a page",
				Action: analyzeAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "url",
						Usage:    "page URL to analyze",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "static",
						Usage: "skip the headless browser and parse static HTML only",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "overall analysis timeout",
						Value: 60 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "indent the JSON output",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "suppress progress logs",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func analyzeAction(c *cli.Context) error {
	cfg := config.Load()

	// Logs go to stderr (or nowhere with --quiet); stdout carries the result
	var logWriter io.Writer = os.Stderr
	if c.Bool("quiet") {
		logWriter = io.Discard
	}
	logger := logging.NewWithOutput(logWriter)

	httpClient := httpclient.New(cfg.UserAgent)

	var col collector.Collector
	if !c.Bool("static") && cfg.RendererEnabled {
		rendered, err := collector.NewRendered(collector.RenderedOptions{
			ChromePath:        cfg.ChromePath,
			UserAgent:         cfg.UserAgent,
			ViewportWidth:     cfg.ViewportWidth,
			ViewportHeight:    cfg.ViewportHeight,
			NavigationTimeout: cfg.NavigationTimeout,
			SettleDelay:       cfg.SettleDelay,
		})
		if err != nil {
			logger.Error("Headless browser unavailable, using static collection", "error", err)
		} else {
			col = rendered
		}
	}
	if col == nil {
		col = collector.NewStatic(httpClient, cfg.RequestTimeout, cfg.MaxImageBytes)
	}

	anl := analyzer.New(col, httpClient, analyzer.Options{
		ImageFetchTimeout:    cfg.ImageFetchTimeout,
		MaxConcurrentFetches: cfg.MaxConcurrentFetches,
		MaxImageBytes:        cfg.MaxImageBytes,
	}, logger)

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	result, err := anl.Analyze(ctx, c.String("url"))
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	var out []byte
	if c.Bool("pretty") {
		out, err = json.MarshalIndent(result, "", "  ")
	} else {
		out, err = json.Marshal(result)
	}
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Println(string(out))

	return nil
}
