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
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/docpolish/docpolish/internal/store"
)

var labelsDBPath string

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Manage header/footer label sets",
	Long: `Add, list, and delete header/footer label phrases grouped into named sets.

Publishers repeat running titles, journal names, and copyright lines on
every page; extraction scatters them through the text. A label set names
those phrases once so that "clean" and "refine" can strip every paragraph
that consists of one (pass the set with --labels).`,
}

var labelsAddSet string

var labelsAddCmd = &cobra.Command{
	Use:   "add <phrase>",
	Short: "Add a label phrase to a set",
	Long: `Add a header/footer phrase to a named label set.

Example:
  docpolish labels add "Journal of Examples" --set journals
  docpolish clean -i paper.pdf --labels journals`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(labelsDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.AddLabel(context.Background(), labelsAddSet, args[0]); err != nil {
			return fmt.Errorf("failed to add label: %w", err)
		}
		fmt.Printf("Added to set %q: %q\n", labelsAddSet, args[0])
		return nil
	},
}

var labelsListSet string

var labelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List label phrases",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(labelsDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		// An empty set name lists every set.
		entries, err := db.ListLabels(context.Background(), labelsListSet)
		if err != nil {
			return fmt.Errorf("failed to list labels: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No label phrases stored.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSET\tPHRASE")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.Set, e.Phrase)
		}
		return w.Flush()
	},
}

var labelsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a label phrase by ID",
	Long: `Delete a label phrase by its ID (shown in "docpolish labels list").

Example:
  docpolish labels delete lb_1234567890123456789`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(labelsDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.DeleteLabel(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete label: %w", err)
		}
		fmt.Printf("Deleted label: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(labelsCmd)

	labelsCmd.PersistentFlags().StringVar(&labelsDBPath, "db", defaultDBPath, "Database path")

	labelsAddCmd.Flags().StringVar(&labelsAddSet, "set", "default", "Label set name")
	labelsListCmd.Flags().StringVar(&labelsListSet, "set", "", "Only list this set")

	labelsCmd.AddCommand(labelsAddCmd)
	labelsCmd.AddCommand(labelsListCmd)
	labelsCmd.AddCommand(labelsDeleteCmd)
}
