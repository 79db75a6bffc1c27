package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/evidence-engine/internal/keywords"
	"github.com/jonathan/evidence-engine/internal/observability"
)

var keywordsCommand = &cobra.Command{
	Use:   "keywords",
	Short: "Show the keywords and search queries derived from a feature description",
	Long:  `Runs keyword derivation and query building without calling any search provider.`,
	RunE:  runKeywordsCmd,
}

var (
	keywordsText     string
	keywordsTextFile string
	keywordsContext  string
	keywordsMax      int
	keywordsJSON     bool
)

func init() {
	keywordsCommand.Flags().StringVarP(&keywordsText, "text", "t", "", "Feature description text")
	keywordsCommand.Flags().StringVarP(&keywordsTextFile, "text-file", "f", "", "Read the feature description from a file (- for stdin)")
	keywordsCommand.Flags().StringVar(&keywordsContext, "context", "", "Business context used to pick domain-specific queries")
	keywordsCommand.Flags().IntVar(&keywordsMax, "max", keywords.DefaultMaxKeywords, "Maximum number of keywords")
	keywordsCommand.Flags().BoolVar(&keywordsJSON, "json", false, "Print JSON instead of a summary box")

	rootCmd.AddCommand(keywordsCommand)
}

func runKeywordsCmd(cmd *cobra.Command, _ []string) error {
	text, err := readFeatureText(keywordsText, keywordsTextFile)
	if err != nil {
		return err
	}
	return runKeywords(text, keywordsContext, keywordsMax, keywordsJSON, cmd.OutOrStdout())
}

// keywordPlan is the JSON form of the keywords command output.
type keywordPlan struct {
	Keywords []string `json:"keywords"`
	Queries  []string `json:"queries"`
	Domains  []string `json:"domains"`
}

func runKeywords(text, contextText string, maxKeywords int, asJSON bool, out io.Writer) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("either --text or --text-file must be provided")
	}

	kws, err := keywords.Derive(text, maxKeywords)
	if err != nil {
		return err
	}
	full := strings.TrimSpace(text + " " + contextText)
	queries := keywords.BuildQueries(kws, full)

	if !asJSON {
		observability.NewPrinter(out).PrintQueries(kws, queries)
		return nil
	}

	plan := keywordPlan{Keywords: kws, Queries: queries, Domains: []string{}}
	for _, d := range keywords.DetectDomains(kws, full) {
		plan.Domains = append(plan.Domains, d.Name)
	}
	return writeJSON(plan, "", out)
}
