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
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/docpolish/docpolish/internal/store"
)

var reportDBPath string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Inspect past runs and the classification cache",
	Long:  `List past runs, show per-file outcomes, export them as CSV, and manage the classification cache.`,
}

var reportListLimit int

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(reportDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		runs, err := db.ListRuns(context.Background(), reportListLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}

		if len(runs) == 0 {
			fmt.Println("No recorded runs.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCOMMAND\tMODEL\tSTATUS\tSTARTED\tDURATION")
		for _, r := range runs {
			duration := "-"
			if !r.FinishedAt.IsZero() {
				duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.ID, r.Command, r.Model, r.Status,
				r.StartedAt.Format("2006-01-02 15:04"), duration)
		}
		return w.Flush()
	},
}

var reportShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the per-file outcomes of one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(reportDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		ctx := context.Background()

		run, err := db.GetRun(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to load run: %w", err)
		}

		fmt.Printf("Run:     %s\n", run.ID)
		fmt.Printf("Command: %s\n", run.Command)
		if run.Model != "" {
			fmt.Printf("Model:   %s\n", run.Model)
		}
		fmt.Printf("Status:  %s\n", run.Status)
		fmt.Printf("Started: %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
		fmt.Println()

		files, err := db.ListRunFiles(ctx, run.ID)
		if err != nil {
			return fmt.Errorf("failed to list run files: %w", err)
		}
		if len(files) == 0 {
			fmt.Println("No file records for this run.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PATH\tSTATUS\tPARAGRAPHS\tCHUNKS\tREPAIRED\tERROR")
		for _, f := range files {
			errMsg := f.Error
			if len(errMsg) > 60 {
				errMsg = errMsg[:57] + "..."
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
				f.Path, f.Status, f.Paragraphs, f.ChunksTotal, f.ChunksRepaired, errMsg)
		}
		return w.Flush()
	},
}

var reportExportOutput string

var reportExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export the per-file outcomes of one run as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(reportDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		files, err := db.ListRunFiles(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to list run files: %w", err)
		}

		out := os.Stdout
		if reportExportOutput != "" {
			f, err := os.Create(reportExportOutput)
			if err != nil {
				return fmt.Errorf("failed to create output CSV: %w", err)
			}
			defer f.Close()
			out = f
		}

		writer := csv.NewWriter(out)
		records := [][]string{{"path", "status", "paragraphs", "chunks_total", "chunks_repaired", "error"}}
		for _, f := range files {
			records = append(records, []string{
				f.Path, f.Status,
				strconv.Itoa(f.Paragraphs),
				strconv.Itoa(f.ChunksTotal),
				strconv.Itoa(f.ChunksRepaired),
				f.Error,
			})
		}
		if err := writer.WriteAll(records); err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return fmt.Errorf("failed to flush CSV: %w", err)
		}

		if reportExportOutput != "" {
			fmt.Printf("Exported %d rows to %s\n", len(files), reportExportOutput)
		}
		return nil
	},
	Args: cobra.ExactArgs(1),
}

var reportCacheStatsCmd = &cobra.Command{
	Use:   "cache-stats",
	Short: "Show classification cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(reportDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		stats, err := db.Stats(context.Background())
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		fmt.Printf("Cached classifications: %d\n", stats.TotalEntries)
		fmt.Printf("Cache hits served:      %d\n", stats.TotalUsage)
		fmt.Printf("Distinct models:        %d\n", stats.Models)
		return nil
	},
}

var reportClearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Remove all cached classifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(reportDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		n, err := db.ClearClassifications(context.Background())
		if err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		fmt.Printf("Cleared %d cached classifications.\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.PersistentFlags().StringVar(&reportDBPath, "db", defaultDBPath, "Database path")

	reportListCmd.Flags().IntVar(&reportListLimit, "limit", 20, "Maximum number of runs to list")
	reportExportCmd.Flags().StringVarP(&reportExportOutput, "output", "o", "", "Output CSV file (default: stdout)")

	reportCmd.AddCommand(reportListCmd)
	reportCmd.AddCommand(reportShowCmd)
	reportCmd.AddCommand(reportExportCmd)
	reportCmd.AddCommand(reportCacheStatsCmd)
	reportCmd.AddCommand(reportClearCacheCmd)
}
