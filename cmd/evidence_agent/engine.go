package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonathan/evidence-engine/internal/config"
	"github.com/jonathan/evidence-engine/internal/pipeline"
	"github.com/jonathan/evidence-engine/internal/search"
)

// loadConfig resolves configuration from the optional file, the environment
// and the defaults, then applies the verbose flag.
func loadConfig(path string, verbose bool) (config.Config, error) {
	cfg, err := config.Resolve(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

// buildEngine wires the search providers described by cfg into an engine.
func buildEngine(ctx context.Context, cfg config.Config, opts pipeline.Options) (*pipeline.Engine, error) {
	google, err := search.NewGoogleProvider(ctx, cfg.GoogleAPIKey, cfg.GoogleCX, cfg.GoogleEndpoint)
	if err != nil {
		return nil, err
	}
	jina := search.NewJinaProvider(cfg.JinaAPIKey, cfg.JinaURL, nil)

	web := search.NewWebClient(google, jina, search.WebClientOptions{
		ResultCount: cfg.ResultCount,
		QueryDelay:  cfg.QueryDelay(),
		Verbose:     cfg.Verbose,
	})
	forum := search.NewForumClient(cfg.ForumURL, cfg.ForumLimit, nil, cfg.Verbose)

	opts.WebTimeout = cfg.WebTimeout()
	opts.ForumTimeout = cfg.ForumTimeout()
	opts.MaxKeywords = cfg.MaxKeywords
	opts.Verbose = cfg.Verbose
	return pipeline.NewEngine(web, forum, opts), nil
}

// readFeatureText returns text, or the contents of path when text is empty.
// A path of "-" reads standard input.
func readFeatureText(text, path string) (string, error) {
	if text != "" && path != "" {
		return "", fmt.Errorf("--text and --text-file are mutually exclusive; provide only one")
	}
	if path == "" {
		return text, nil
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read feature text: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
