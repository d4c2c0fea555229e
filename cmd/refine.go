/*
Copyright © 2025 docpolish contributors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/docpolish/docpolish/internal/arbiter"
	"github.com/docpolish/docpolish/internal/chunker"
	"github.com/docpolish/docpolish/internal/detector"
	"github.com/docpolish/docpolish/internal/pipeline"
	"github.com/docpolish/docpolish/internal/refine"
	"github.com/docpolish/docpolish/internal/store"
	"github.com/docpolish/docpolish/internal/validator"
)

var (
	refineInput        string
	refineOutputDir    string
	refineSuffix       string
	refineWorkers      int
	refineSkipExisting bool
	refineNoClean      bool
	refineDetect       bool
	refineLabels       []string
	refineLabelSet     string
	refineDBPath       string
	refineNoCache      bool
)

var refineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Run the full oracle-driven refinement pipeline",
	Long: `Refine extracted document text with an LLM quality oracle.

Each file is extracted, reconstructed with deterministic rules, optionally
pruned to its core content, then split into overlapping chunks. Every chunk
is scored 1-10 by the oracle; chunks scoring below the threshold are sent
back for repair. A failed repair always keeps the original text.

Available backends:
  - ollama   Local Ollama server (default)
  - openai   Any OpenAI-compatible chat completion API

Examples:
  docpolish refine -i thesis.pdf
  docpolish refine -i docs/ -o clean/ --workers 4
  docpolish refine -i book.txt --start-heading "Chapter 1" --end-heading "Appendix"
  docpolish refine -i paper.pdf --detect-headings --backend openai --model gpt-4o-mini`,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend := viper.GetString("backend")
		model := viper.GetString("model")
		ollamaURL := viper.GetString("ollama-url")
		openaiURL := viper.GetString("openai-url")
		chunkSize := viper.GetInt("chunk-size")
		chunkOverlap := viper.GetInt("chunk-overlap")
		threshold := viper.GetInt("score-threshold")
		startHeading := viper.GetString("start-heading")
		endHeading := viper.GetString("end-heading")

		if chunkSize < 1 {
			return fmt.Errorf("chunk size must be at least 1")
		}
		if chunkOverlap < 0 || chunkOverlap >= chunkSize {
			return fmt.Errorf("chunk overlap must be between 0 and chunk size - 1")
		}
		if threshold < 1 || threshold > 10 {
			return fmt.Errorf("score threshold must be between 1 and 10")
		}

		orc, err := buildOracles(backend, model, ollamaURL, openaiURL)
		if err != nil {
			return err
		}

		ctx := context.Background()

		var db *store.Store
		if !refineNoCache {
			db = openStoreOrWarn(refineDBPath)
			if db != nil {
				defer db.Close()
			}
		}

		arb := orc.arbiter
		if db != nil {
			arb = arbiter.NewCachingArbiter(arb, db, model)
		}

		deps := pipeline.Deps{
			Arbiter:   arb,
			Refiner:   orc.refiner,
			Finder:    orc.finder,
			Validator: validator.New(),
			Detector:  detector.New(),
			Store:     db,
		}
		opts := pipeline.Options{
			Input:          refineInput,
			OutputDir:      refineOutputDir,
			Suffix:         refineSuffix,
			Command:        "refine",
			Model:          model,
			Workers:        refineWorkers,
			SkipExisting:   refineSkipExisting,
			Clean:          !refineNoClean,
			ExtraLabels:    resolveLabels(ctx, db, refineLabelSet, refineLabels),
			StartHeading:   startHeading,
			EndHeading:     endHeading,
			DetectHeadings: refineDetect,
			Refine:         true,
			ChunkSize:      chunkSize,
			ChunkOverlap:   chunkOverlap,
			ScoreThreshold: threshold,
		}

		report, err := pipeline.New(deps, opts).Run(ctx)
		if err != nil {
			return err
		}

		printRunSummary(report)
		if report.Succeeded == 0 && report.Failed > 0 {
			return fmt.Errorf("all %d files failed", report.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refineCmd)

	refineCmd.Flags().StringVarP(&refineInput, "input", "i", "", "Input file or directory (required)")
	refineCmd.Flags().StringVarP(&refineOutputDir, "output-dir", "o", "", "Output directory (default: next to each input file)")
	refineCmd.Flags().StringVar(&refineSuffix, "suffix", "_polished.txt", "Suffix for output file names")
	refineCmd.Flags().IntVar(&refineWorkers, "workers", 1, "Number of files to process in parallel")
	refineCmd.Flags().BoolVar(&refineSkipExisting, "skip-existing", false, "Skip files whose output already exists")

	refineCmd.Flags().String("backend", "ollama", "Oracle backend: ollama or openai")
	refineCmd.Flags().String("model", defaultModel, "Model name for the oracle backend")
	refineCmd.Flags().String("ollama-url", defaultOllamaURL, "Ollama base URL")
	refineCmd.Flags().String("openai-url", "", "OpenAI-compatible base URL (empty for the standard endpoint)")

	refineCmd.Flags().Int("chunk-size", chunker.DefaultSize, "Paragraphs per classification chunk")
	refineCmd.Flags().Int("chunk-overlap", chunker.DefaultOverlap, "Paragraphs shared between consecutive chunks")
	refineCmd.Flags().Int("score-threshold", refine.DefaultScoreThreshold, "Chunks scoring below this are repaired (1-10)")

	refineCmd.Flags().BoolVar(&refineNoClean, "no-clean", false, "Skip the rule-based reconstruction pass")
	refineCmd.Flags().StringSliceVar(&refineLabels, "label", nil, "Extra header/footer label phrase to strip (repeatable)")
	refineCmd.Flags().StringVar(&refineLabelSet, "labels", "", "Stored label set to strip (see \"docpolish labels\")")

	refineCmd.Flags().String("start-heading", "", "Prune everything before this literal heading")
	refineCmd.Flags().String("end-heading", "", "Prune everything from this literal heading on")
	refineCmd.Flags().BoolVar(&refineDetect, "detect-headings", false, "Ask the oracle to find pruning headings")

	refineCmd.Flags().StringVar(&refineDBPath, "db", defaultDBPath, "Database path for the classification cache and run reports")
	refineCmd.Flags().BoolVar(&refineNoCache, "no-cache", false, "Disable the database entirely")

	refineCmd.MarkFlagRequired("input")
}
