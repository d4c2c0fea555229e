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
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/docpolish/docpolish/internal/logger"
)

var version = "0.2.0"

var (
	cfgFile string
	verbose bool
	logJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "docpolish",
	Short: "Document refinement pipeline for LLM training corpora",
	Long: `docpolish turns noisy text extracted from PDFs, Word documents, and web
pages into clean, paragraph-and-sentence-correct plain text.

The pipeline reconstructs broken line structure with deterministic rules,
then uses a local or remote LLM as a quality oracle: chunks are scored,
low-scoring chunks are repaired, and every model failure degrades to the
original text rather than losing content.

Typical usage:
  docpolish clean -i book.pdf                 Rule-based cleanup only
  docpolish refine -i docs/ --backend ollama  Full oracle-driven pipeline
  docpolish report list                       Inspect past runs

Use "docpolish <command> --help" for command options.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Flag values override environment and config file values.
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return err
		}

		level := "info"
		if verbose {
			level = "debug"
		}
		logger.Init(logger.Config{Level: level, JSON: logJSON})
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is $HOME/.docpolish.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Log as JSON lines instead of console format")
}

// initConfig reads in the config file and DOCPOLISH_* environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".docpolish")
	}

	viper.SetEnvPrefix("DOCPOLISH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
