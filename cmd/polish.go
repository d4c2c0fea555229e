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
	polishInput        string
	polishOutputDir    string
	polishSuffix       string
	polishWorkers      int
	polishSkipExisting bool
	polishClean        bool
	polishDBPath       string
	polishNoCache      bool
)

var polishCmd = &cobra.Command{
	Use:   "polish",
	Short: "Polish text paragraph by paragraph with an oracle",
	Long: `Polish each paragraph of a document with a single model pass.

Unlike refine, no scoring happens: every paragraph is sent to the oracle
for a light cleanup. Paragraphs the model marks as boilerplate junk are
dropped; a model failure keeps the paragraph unchanged.

Best used on text that already went through "docpolish clean" or
"docpolish refine".

Example:
  docpolish polish -i book_clean.txt --model llama3.2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		orc, err := buildOracles(viper.GetString("backend"), viper.GetString("model"),
			viper.GetString("ollama-url"), viper.GetString("openai-url"))
		if err != nil {
			return err
		}

		ctx := context.Background()

		var db *store.Store
		if !polishNoCache {
			db = openStoreOrWarn(polishDBPath)
			if db != nil {
				defer db.Close()
			}
		}

		deps := pipeline.Deps{
			Polisher: orc.polisher,
			Detector: detector.New(),
			Store:    db,
		}
		opts := pipeline.Options{
			Input:        polishInput,
			OutputDir:    polishOutputDir,
			Suffix:       polishSuffix,
			Command:      "polish",
			Model:        viper.GetString("model"),
			Workers:      polishWorkers,
			SkipExisting: polishSkipExisting,
			Clean:        polishClean,
			Polish:       true,
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
	rootCmd.AddCommand(polishCmd)

	polishCmd.Flags().StringVarP(&polishInput, "input", "i", "", "Input file or directory (required)")
	polishCmd.Flags().StringVarP(&polishOutputDir, "output-dir", "o", "", "Output directory (default: next to each input file)")
	polishCmd.Flags().StringVar(&polishSuffix, "suffix", "_polished.txt", "Suffix for output file names")
	polishCmd.Flags().IntVar(&polishWorkers, "workers", 1, "Number of files to process in parallel")
	polishCmd.Flags().BoolVar(&polishSkipExisting, "skip-existing", false, "Skip files whose output already exists")
	polishCmd.Flags().BoolVar(&polishClean, "clean", false, "Run the rule-based reconstruction pass first")

	polishCmd.Flags().String("backend", "ollama", "Oracle backend: ollama or openai")
	polishCmd.Flags().String("model", defaultModel, "Model name for the oracle backend")
	polishCmd.Flags().String("ollama-url", defaultOllamaURL, "Ollama base URL")
	polishCmd.Flags().String("openai-url", "", "OpenAI-compatible base URL (empty for the standard endpoint)")

	polishCmd.Flags().StringVar(&polishDBPath, "db", defaultDBPath, "Database path for run reports")
	polishCmd.Flags().BoolVar(&polishNoCache, "no-cache", false, "Disable the database entirely")

	polishCmd.MarkFlagRequired("input")
}
