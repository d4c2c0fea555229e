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
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docpolish/docpolish/internal/extract"
)

var extractOutput string

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract plain text from a document",
	Long: `Extract the plain text of a single document without any cleanup.

Supported formats: PDF, DOCX, Markdown, HTML, and plain text. The result is
printed to stdout unless -o is given. Useful for inspecting what the
pipeline sees before reconstruction.

Example:
  docpolish extract thesis.pdf -o thesis.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := extract.ForFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to extract %s: %w", args[0], err)
		}

		if extractOutput == "" {
			fmt.Println(strings.TrimSpace(text))
			return nil
		}

		if dir := filepath.Dir(extractOutput); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		if err := os.WriteFile(extractOutput, []byte(strings.TrimSpace(text)+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}

		fmt.Printf("Extracted %s to %s\n", args[0], extractOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Output file (default: stdout)")
}
