// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/retrievit"
	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/jobs"
	"github.com/poiesic/retrievit/search"
)

func main() {
	app := &cli.App{
		Name:  "retrievit",
		Usage: "Hybrid document retrieval with embedding ingestion",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Embed and persist a JSONL corpus file",
				ArgsUsage: "CORPUS_FILE",
				Action:    ingestCommand,
				Flags: append(serviceFlags(),
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Embedding worker pool size",
						Value: 50,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records per ingestion batch",
						Value: 100,
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Run a hybrid query against the corpus",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: append(serviceFlags(),
					&cli.StringFlag{
						Name:  "fusion",
						Usage: "Fusion policy (weighted, rrf, weighted-reciprocal)",
						Value: string(search.FusionWeighted),
					},
					&cli.Float64Flag{
						Name:  "lexical-weight",
						Usage: "Weight of the lexical method",
						Value: 0.5,
					},
					&cli.Float64Flag{
						Name:  "vector-weight",
						Usage: "Weight of the vector method",
						Value: 0.5,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Candidates considered per method",
						Value: 50,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of final results",
						Value: 10,
					},
					&cli.Float64Flag{
						Name:  "dedup-threshold",
						Usage: "Title similarity at or above which results merge (0 disables)",
						Value: 0.9,
					},
					&cli.StringSliceFlag{
						Name:  "filter",
						Usage: "Exact-match field filter as field=value (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "summarize",
						Usage: "Summarize the result list with the configured model",
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serviceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to the document store directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "collection",
			Usage: "Document collection name",
			Value: retrievit.DefaultCollection,
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "OpenAI-compatible service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key for the AI service",
			EnvVars: []string{"RETRIEVIT_API_KEY"},
			Value:   "none",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "summary-model",
			Usage: "Summarization model name",
			Value: "qwen2.5:3b",
		},
		&cli.IntFlag{
			Name:  "dimension",
			Usage: "Embedding vector dimension",
			Value: ai.DefaultDimension,
		},
	}
}

func openService(c *cli.Context, opts ...retrievit.Option) (*retrievit.Service, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithAPIKey(c.String("api-key")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithSummaryModel(c.String("summary-model")),
		ai.WithDimension(c.Int("dimension")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts = append(opts, retrievit.WithCollection(c.String("collection")))
	return retrievit.Open(c.String("db"), aiConfig, opts...)
}

func ingestCommand(c *cli.Context) error {
	corpusPath := c.Args().First()
	if corpusPath == "" {
		return fmt.Errorf("corpus file argument is required")
	}

	records, err := readCorpus(corpusPath)
	if err != nil {
		return fmt.Errorf("failed to read corpus: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("corpus file %s contains no records", corpusPath)
	}

	service, err := openService(c,
		retrievit.WithWorkers(c.Int("workers")),
		retrievit.WithBatchSize(c.Int("batch-size")))
	if err != nil {
		return err
	}
	defer service.Close()

	ctx := context.Background()
	if err := service.Provision(ctx); err != nil {
		return fmt.Errorf("failed to provision collection: %w", err)
	}

	jobID, err := service.Ingest(records)
	if err != nil {
		return fmt.Errorf("failed to start ingestion: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Job %s: ingesting %d records\n", jobID, len(records))

	snap := waitForJob(service, jobID)
	printJob(snap)

	if failures := failedRecords(snap); len(failures) > 0 {
		fmt.Fprintf(os.Stderr, "\n%d records failed:\n", len(failures))
		for _, status := range failures {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", status.ExternalID, status.Error)
		}
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query argument is required")
	}

	filters, err := parseFilters(c.StringSlice("filter"))
	if err != nil {
		return err
	}

	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	response, err := service.Search(context.Background(), search.Request{
		Query:   query,
		Filters: filters,
		Fusion: search.FusionConfig{
			Method: search.FusionMethod(c.String("fusion")),
			Weights: map[search.Method]float64{
				search.MethodLexical: c.Float64("lexical-weight"),
				search.MethodVector:  c.Float64("vector-weight"),
			},
			TopK:           c.Int("top-k"),
			Limit:          c.Int("limit"),
			DedupThreshold: c.Float64("dedup-threshold"),
		},
		Summarize: c.Bool("summarize"),
	})
	if err != nil {
		return err
	}

	if response.Degraded {
		fmt.Fprintf(os.Stderr, "warning: degraded results, unavailable methods: %v\n\n", response.Unavailable)
	}

	for i, result := range response.Results {
		fmt.Printf("%2d. [%.4f] %s (%s, via %v)\n", i+1, result.Fused,
			result.Record.Title, result.Record.ExternalID, result.Sources)
	}
	if len(response.Results) == 0 {
		fmt.Println("no results")
	}

	for _, dup := range response.Duplicates {
		fmt.Printf("    duplicate: %q (%.2f similar to %d)\n",
			dup.Candidate.Record.Title, dup.Similarity, dup.Of)
	}

	if response.Summary != nil {
		fmt.Printf("\nSummary: %s\n", response.Summary.Text)
	}
	if response.SummaryErr != nil {
		fmt.Fprintf(os.Stderr, "warning: summarization failed: %v\n", response.SummaryErr)
	}
	return nil
}

// corpusRecord is the JSONL input line format.
type corpusRecord struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Contents string            `json:"contents"`
	Fields   map[string]string `json:"fields,omitempty"`
}

func readCorpus(path string) ([]*core.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []*core.Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var cr corpusRecord
		if err := json.Unmarshal([]byte(text), &cr); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, &core.Record{
			ExternalID: cr.ID,
			Title:      cr.Title,
			Contents:   cr.Contents,
			Fields:     cr.Fields,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func parseFilters(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	filters := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		field, value, ok := strings.Cut(pair, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid filter %q: expected field=value", pair)
		}
		filters[field] = value
	}
	return filters, nil
}

func waitForJob(service *retrievit.Service, jobID string) jobs.Snapshot {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var last int
	for range ticker.C {
		snap, ok := service.Job(jobID)
		if !ok {
			// Evicted between polls; nothing more to report.
			return jobs.Snapshot{}
		}
		if snap.Progress != last {
			fmt.Fprintf(os.Stderr, "  progress %d/%d (current: %s)\n",
				snap.Progress, snap.Total, snap.Current)
			last = snap.Progress
		}
		if snap.Done() {
			return snap
		}
	}
	return jobs.Snapshot{}
}

func printJob(snap jobs.Snapshot) {
	if snap.ID == "" {
		return
	}

	persisted := 0
	for _, status := range snap.Records {
		if status.State == jobs.RecordPersisted {
			persisted++
		}
	}
	fmt.Fprintf(os.Stderr, "Job %s %s: %d/%d persisted in %s\n",
		snap.ID, snap.Status, persisted, snap.Total,
		snap.EndedAt.Sub(snap.StartedAt).Round(time.Millisecond))
}

func failedRecords(snap jobs.Snapshot) []jobs.RecordStatus {
	var failures []jobs.RecordStatus
	for _, status := range snap.Records {
		if status.State == jobs.RecordFailed {
			failures = append(failures, status)
		}
	}
	return failures
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
