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
	"time"

	"github.com/spf13/viper"

	"github.com/docpolish/docpolish/internal/arbiter"
	"github.com/docpolish/docpolish/internal/pipeline"
	"github.com/docpolish/docpolish/internal/pruner"
	"github.com/docpolish/docpolish/internal/refiner"
	"github.com/docpolish/docpolish/internal/store"
)

const (
	defaultModel     = "llama3.1:8b-instruct-fp16"
	defaultOllamaURL = "http://localhost:11434"
	defaultDBPath    = "./data/docpolish.db"
)

// oracles bundles the model-backed collaborators one backend provides.
type oracles struct {
	arbiter  arbiter.Arbiter
	refiner  refiner.Refiner
	polisher refiner.Polisher
	finder   pruner.Finder
}

// buildOracles constructs the oracle set for the chosen backend. The ollama
// backend talks to a local /api/generate endpoint; the openai backend talks
// to any OpenAI-compatible chat completion API (openaiURL empty means the
// standard endpoint).
func buildOracles(backend, model, ollamaURL, openaiURL string) (*oracles, error) {
	switch backend {
	case "ollama":
		ref := refiner.NewOllamaRefiner(model, ollamaURL)
		return &oracles{
			arbiter:  arbiter.NewOllamaArbiter(model, ollamaURL),
			refiner:  ref,
			polisher: ref,
			finder:   pruner.NewOllamaFinder(model, ollamaURL),
		}, nil
	case "openai":
		key := resolveOpenAIKey()
		if key == "" {
			return nil, fmt.Errorf("openai backend requires an API key (set OPENAI_API_KEY)")
		}
		ref := refiner.NewOpenAIRefiner(key, model, openaiURL)
		return &oracles{
			arbiter:  arbiter.NewOpenAIArbiter(key, model, openaiURL),
			refiner:  ref,
			polisher: ref,
			finder:   pruner.NewOpenAIFinder(key, model, openaiURL),
		}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (use ollama or openai)", backend)
	}
}

// resolveOpenAIKey looks for the API key in the config/environment under the
// docpolish prefix first, then falls back to the conventional variable.
func resolveOpenAIKey() string {
	if key := viper.GetString("openai-api-key"); key != "" {
		return key
	}
	return os.Getenv("OPENAI_API_KEY")
}

// openStoreOrWarn opens the database for caching and run reports. Batch
// commands degrade to running without a store rather than failing.
func openStoreOrWarn(path string) *store.Store {
	if path == "" {
		return nil
	}
	db, err := store.New(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to open database: %v (continuing without it)\n", err)
		return nil
	}
	return db
}

// resolveLabels merges inline label phrases with a stored label set.
func resolveLabels(ctx context.Context, db *store.Store, set string, inline []string) []string {
	labels := append([]string(nil), inline...)
	if set == "" {
		return labels
	}
	if db == nil {
		fmt.Fprintf(os.Stderr, "Warning: label set %q requires the database, ignoring\n", set)
		return labels
	}

	phrases, err := db.GetLabelPhrases(ctx, set)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load label set %q: %v\n", set, err)
		return labels
	}
	if len(phrases) == 0 {
		fmt.Fprintf(os.Stderr, "Warning: label set %q is empty\n", set)
	}
	return append(labels, phrases...)
}

// printRunSummary reports the per-run outcome counts on stdout and failed
// files on stderr.
func printRunSummary(rep *pipeline.Report) {
	fmt.Printf("Processed %d files in %s: %d ok, %d failed, %d skipped\n",
		len(rep.Files), rep.Duration.Round(time.Millisecond),
		rep.Succeeded, rep.Failed, rep.Skipped)

	for _, f := range rep.Files {
		if f.Status == pipeline.StatusFailed {
			fmt.Fprintf(os.Stderr, "  failed: %s: %v\n", f.Path, f.Err)
		}
	}
	if rep.RunID != "" {
		fmt.Printf("Run ID: %s\n", rep.RunID)
	}
}
