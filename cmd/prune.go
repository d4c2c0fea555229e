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

	"github.com/docpolish/docpolish/internal/pipeline"
	"github.com/docpolish/docpolish/internal/pruner"
	"github.com/docpolish/docpolish/internal/store"
)

var (
	pruneInput        string
	pruneOutputDir    string
	pruneSuffix       string
	pruneWorkers      int
	pruneSkipExisting bool
	pruneDetect       bool
	pruneDBPath       string
	pruneNoCache      bool
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Cut front and back matter around the core content",
	Long: `Prune a document to the text between two headings.

With --start-heading and --end-heading the cut is purely mechanical: the
output is everything strictly between the first occurrence of the start
heading and the next occurrence of the end heading. With --detect-headings
an oracle proposes the two headings from a document sample instead.

When no match is found the text passes through unchanged.

Examples:
  docpolish prune -i thesis.txt --start-heading "1 Introduction" --end-heading "References"
  docpolish prune -i papers/ --detect-headings`,
	RunE: func(cmd *cobra.Command, args []string) error {
		startHeading := viper.GetString("start-heading")
		endHeading := viper.GetString("end-heading")

		if !pruneDetect && startHeading == "" && endHeading == "" {
			return fmt.Errorf("provide --start-heading/--end-heading or --detect-headings")
		}

		var finder pruner.Finder
		if pruneDetect {
			orc, err := buildOracles(viper.GetString("backend"), viper.GetString("model"),
				viper.GetString("ollama-url"), viper.GetString("openai-url"))
			if err != nil {
				return err
			}
			finder = orc.finder
		}

		ctx := context.Background()

		var db *store.Store
		if !pruneNoCache {
			db = openStoreOrWarn(pruneDBPath)
			if db != nil {
				defer db.Close()
			}
		}

		deps := pipeline.Deps{
			Finder: finder,
			Store:  db,
		}
		opts := pipeline.Options{
			Input:          pruneInput,
			OutputDir:      pruneOutputDir,
			Suffix:         pruneSuffix,
			Command:        "prune",
			Model:          viper.GetString("model"),
			Workers:        pruneWorkers,
			SkipExisting:   pruneSkipExisting,
			StartHeading:   startHeading,
			EndHeading:     endHeading,
			DetectHeadings: pruneDetect,
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
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().StringVarP(&pruneInput, "input", "i", "", "Input file or directory (required)")
	pruneCmd.Flags().StringVarP(&pruneOutputDir, "output-dir", "o", "", "Output directory (default: next to each input file)")
	pruneCmd.Flags().StringVar(&pruneSuffix, "suffix", "_pruned.txt", "Suffix for output file names")
	pruneCmd.Flags().IntVar(&pruneWorkers, "workers", 1, "Number of files to process in parallel")
	pruneCmd.Flags().BoolVar(&pruneSkipExisting, "skip-existing", false, "Skip files whose output already exists")

	pruneCmd.Flags().String("start-heading", "", "Prune everything before this literal heading")
	pruneCmd.Flags().String("end-heading", "", "Prune everything from this literal heading on")
	pruneCmd.Flags().BoolVar(&pruneDetect, "detect-headings", false, "Ask the oracle to find pruning headings")

	pruneCmd.Flags().String("backend", "ollama", "Oracle backend: ollama or openai")
	pruneCmd.Flags().String("model", defaultModel, "Model name for heading detection")
	pruneCmd.Flags().String("ollama-url", defaultOllamaURL, "Ollama base URL")
	pruneCmd.Flags().String("openai-url", "", "OpenAI-compatible base URL (empty for the standard endpoint)")

	pruneCmd.Flags().StringVar(&pruneDBPath, "db", defaultDBPath, "Database path for run reports")
	pruneCmd.Flags().BoolVar(&pruneNoCache, "no-cache", false, "Disable the database entirely")

	pruneCmd.MarkFlagRequired("input")
}
