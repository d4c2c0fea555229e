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

	"github.com/docpolish/docpolish/internal/detector"
	"github.com/docpolish/docpolish/internal/pipeline"
	"github.com/docpolish/docpolish/internal/store"
)

var (
	cleanInput        string
	cleanOutputDir    string
	cleanSuffix       string
	cleanWorkers      int
	cleanSkipExisting bool
	cleanLabels       []string
	cleanLabelSet     string
	cleanDBPath       string
	cleanNoCache      bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Rule-based text cleanup without any model calls",
	Long: `Clean extracted document text with deterministic rules only.

The reconstruction pass strips page headers and footers, removes leading
line numbers, merges hyphenated line breaks, rejoins sentences that were
wrapped mid-line, and collapses duplicated phrases. No LLM is involved, so
the output is fully reproducible.

Examples:
  docpolish clean -i report.pdf
  docpolish clean -i docs/ -o clean/ --label "CONFIDENTIAL"
  docpolish clean -i book.txt --start-heading "Introduction" --end-heading "Index"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		startHeading := viper.GetString("start-heading")
		endHeading := viper.GetString("end-heading")

		ctx := context.Background()

		var db *store.Store
		if !cleanNoCache {
			db = openStoreOrWarn(cleanDBPath)
			if db != nil {
				defer db.Close()
			}
		}

		deps := pipeline.Deps{
			Detector: detector.New(),
			Store:    db,
		}
		opts := pipeline.Options{
			Input:        cleanInput,
			OutputDir:    cleanOutputDir,
			Suffix:       cleanSuffix,
			Command:      "clean",
			Workers:      cleanWorkers,
			SkipExisting: cleanSkipExisting,
			Clean:        true,
			ExtraLabels:  resolveLabels(ctx, db, cleanLabelSet, cleanLabels),
			StartHeading: startHeading,
			EndHeading:   endHeading,
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
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().StringVarP(&cleanInput, "input", "i", "", "Input file or directory (required)")
	cleanCmd.Flags().StringVarP(&cleanOutputDir, "output-dir", "o", "", "Output directory (default: next to each input file)")
	cleanCmd.Flags().StringVar(&cleanSuffix, "suffix", "_clean.txt", "Suffix for output file names")
	cleanCmd.Flags().IntVar(&cleanWorkers, "workers", 1, "Number of files to process in parallel")
	cleanCmd.Flags().BoolVar(&cleanSkipExisting, "skip-existing", false, "Skip files whose output already exists")

	cleanCmd.Flags().StringSliceVar(&cleanLabels, "label", nil, "Extra header/footer label phrase to strip (repeatable)")
	cleanCmd.Flags().StringVar(&cleanLabelSet, "labels", "", "Stored label set to strip (see \"docpolish labels\")")

	cleanCmd.Flags().String("start-heading", "", "Prune everything before this literal heading")
	cleanCmd.Flags().String("end-heading", "", "Prune everything from this literal heading on")

	cleanCmd.Flags().StringVar(&cleanDBPath, "db", defaultDBPath, "Database path for label sets and run reports")
	cleanCmd.Flags().BoolVar(&cleanNoCache, "no-cache", false, "Disable the database entirely")

	cleanCmd.MarkFlagRequired("input")
}
