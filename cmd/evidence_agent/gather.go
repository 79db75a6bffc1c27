package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/evidence-engine/internal/db"
	"github.com/jonathan/evidence-engine/internal/observability"
	"github.com/jonathan/evidence-engine/internal/pipeline"
	"github.com/jonathan/evidence-engine/internal/schemas"
	"github.com/jonathan/evidence-engine/internal/types"
)

var gatherCommand = &cobra.Command{
	Use:   "gather",
	Short: "Gather and score market evidence for a feature description",
	Long: `Derives keywords from the feature text, searches the web and forum sources in parallel,
extracts competitors and scores market signals. The evidence document is printed as JSON.

Configuration can be loaded from a JSON file using --config; environment variables fill in
anything the file leaves empty.`,
	RunE: runGatherCmd,
}

type gatherOptions struct {
	ConfigPath string
	Text       string
	TextFile   string
	Context    string
	Keywords   []string
	OutPath    string
	Verbose    bool
	Validate   bool
	Save       bool
	DBURL      string
}

var gatherOpts gatherOptions

func init() {
	gatherCommand.Flags().StringVar(&gatherOpts.ConfigPath, "config", "", "Path to config.json file")
	gatherCommand.Flags().StringVarP(&gatherOpts.Text, "text", "t", "", "Feature description text")
	gatherCommand.Flags().StringVarP(&gatherOpts.TextFile, "text-file", "f", "", "Read the feature description from a file (- for stdin)")
	gatherCommand.Flags().StringVar(&gatherOpts.Context, "context", "", "Business context used to pick domain-specific queries")
	gatherCommand.Flags().StringSliceVarP(&gatherOpts.Keywords, "keywords", "k", nil, "Keyword override (comma-separated)")
	gatherCommand.Flags().StringVarP(&gatherOpts.OutPath, "out", "o", "", "Write the evidence JSON to a file instead of stdout")
	gatherCommand.Flags().BoolVarP(&gatherOpts.Verbose, "verbose", "v", false, "Print progress and a human-readable summary to stderr")
	gatherCommand.Flags().BoolVar(&gatherOpts.Validate, "validate", false, "Validate the evidence document against the JSON schema")
	gatherCommand.Flags().BoolVar(&gatherOpts.Save, "save", false, "Store the run in PostgreSQL")
	gatherCommand.Flags().StringVar(&gatherOpts.DBURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(gatherCommand)
}

func runGatherCmd(cmd *cobra.Command, _ []string) error {
	return runGather(cmd.Context(), gatherOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

func runGather(ctx context.Context, opts gatherOptions, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(opts.ConfigPath, opts.Verbose)
	if err != nil {
		return err
	}
	if opts.DBURL != "" {
		cfg.DatabaseURL = opts.DBURL
	}

	text, err := readFeatureText(opts.Text, opts.TextFile)
	if err != nil {
		return err
	}
	req := types.EvidenceRequest{
		FeatureText:     text,
		BusinessContext: opts.Context,
		Keywords:        opts.Keywords,
	}
	if req.FeatureText == "" && len(req.Keywords) == 0 {
		return fmt.Errorf("either --text, --text-file or --keywords must be provided")
	}

	printer := observability.NewPrinter(stderr)
	var engineOpts pipeline.Options
	if opts.Verbose {
		engineOpts.OnProgress = printer.PrintProgress
	}
	engine, err := buildEngine(ctx, cfg, engineOpts)
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}

	doc, err := engine.Run(ctx, req)
	if err != nil {
		return err
	}

	if opts.Verbose {
		printer.PrintEvidence(doc)
	}

	if opts.Validate {
		if err := schemas.ValidateEvidence(doc); err != nil {
			return fmt.Errorf("evidence failed schema validation: %w", err)
		}
		if opts.Verbose {
			_, _ = fmt.Fprintln(stderr, "✓ Evidence document matches schema")
		}
	}

	if opts.Save {
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required with --save")
		}
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()

		id, err := database.SaveEvidence(ctx, &req, doc)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(stderr, "Saved evidence run %s\n", id)
	}

	return writeJSON(doc, opts.OutPath, stdout)
}

// writeJSON writes v as indented JSON to path, or to w when path is empty.
func writeJSON(v any, path string, w io.Writer) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
