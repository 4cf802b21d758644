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
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/clausewise"
	"github.com/poiesic/clausewise/config"
	"github.com/poiesic/clausewise/core"
	"github.com/poiesic/clausewise/segment"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp(os.Stdout).RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the CLI. engineOpts are passed to every engine the commands open.
func newApp(out io.Writer, engineOpts ...clausewise.EngineOption) *cli.App {
	r := &runner{engineOpts: engineOpts}

	strategyFlag := &cli.StringFlag{
		Name:    "strategy",
		Aliases: []string{"s"},
		Usage:   "Segmentation strategy when sections must be produced (title, window)",
	}
	contextFlag := &cli.StringFlag{
		Name:  "context-hint",
		Usage: "Extra context passed to clause extraction",
	}
	progressFlag := &cli.BoolFlag{
		Name:  "progress",
		Usage: "Report extraction progress on stderr",
	}

	return &cli.App{
		Name:      "clausewise",
		Usage:     "Answer compliance questions from policy document clauses",
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				EnvVars: []string{"CLAUSEWISE_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
			},
			&cli.StringFlag{
				Name:  "raw-dir",
				Usage: "Directory holding raw policy documents",
			},
			&cli.StringFlag{
				Name:    "host",
				Usage:   "OpenAI-compatible service host URL",
				EnvVars: []string{"CLAUSEWISE_AI_HOST"},
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "API key for the model service",
				EnvVars: []string{"CLAUSEWISE_AI_TOKEN"},
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "Model used for extraction, validation and answers",
			},
			&cli.BoolFlag{
				Name:  "digest-check",
				Usage: "Rebuild artifacts whose upstream content changed",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Answer a question from validated clauses",
				ArgsUsage: "<question>",
				Action:    r.ask,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "document",
						Usage: "Document to answer from; discovered from the knowledge base when empty",
					},
					&cli.BoolFlag{
						Name:  "evidence",
						Usage: "Print the validated clauses before the answer",
					},
					strategyFlag,
					contextFlag,
					progressFlag,
				},
			},
			{
				Name:      "ingest",
				Usage:     "Convert, split and extract ranked clauses for documents",
				ArgsUsage: "<document>...",
				Action:    r.ingest,
				Flags:     []cli.Flag{strategyFlag, contextFlag, progressFlag},
			},
			{
				Name:      "split",
				Usage:     "Split a document into sections and report word and title counts",
				ArgsUsage: "<document>",
				Action:    r.split,
				Flags: []cli.Flag{
					strategyFlag,
					&cli.IntFlag{
						Name:  "window-size",
						Usage: "Window length in characters",
					},
					&cli.IntFlag{
						Name:  "overlap",
						Usage: "Characters shared by consecutive windows",
					},
				},
			},
			{
				Name:      "clauses",
				Usage:     "Print the stored ranked clauses of a document",
				ArgsUsage: "<document>",
				Action:    r.clauses,
			},
			{
				Name:      "artifacts",
				Usage:     "Show processing status of a document, or list all artifacts",
				ArgsUsage: "[document]",
				Action:    r.artifacts,
			},
		},
	}
}

type runner struct {
	engineOpts []clausewise.EngineOption
}

// loadConfig reads --config and applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if c.IsSet("db") {
		cfg.Storage.Backend = config.StorageBadger
		cfg.Storage.Path = c.String("db")
		cfg.Storage.InMemory = false
	}
	if c.IsSet("raw-dir") {
		cfg.Storage.RawDir = c.String("raw-dir")
	}
	if c.IsSet("host") {
		cfg.AI.Host = c.String("host")
	}
	if c.IsSet("token") {
		cfg.AI.Token = c.String("token")
	}
	if c.IsSet("model") {
		cfg.AI.Model = c.String("model")
	}
	if c.IsSet("digest-check") {
		cfg.Pipeline.DigestCheck = c.Bool("digest-check")
	}
	if c.IsSet("strategy") {
		if _, err := segment.ParseStrategy(c.String("strategy")); err != nil {
			return nil, err
		}
		cfg.Pipeline.Strategy = strings.ToLower(c.String("strategy"))
	}
	if c.IsSet("window-size") {
		cfg.Pipeline.WindowSize = c.Int("window-size")
	}
	if c.IsSet("overlap") {
		cfg.Pipeline.Overlap = c.Int("overlap")
	}
	return cfg, nil
}

func (r *runner) withEngine(c *cli.Context, fn func(ctx context.Context, engine *clausewise.Engine) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	opts := r.engineOpts
	if c.Bool("progress") {
		opts = append(opts[:len(opts):len(opts)], clausewise.WithProgress(c.App.ErrWriter))
	}
	engine, err := clausewise.NewEngine(c.Context, cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			slog.Error("error closing engine", "err", err)
		}
	}()
	return fn(c.Context, engine)
}

func (r *runner) ask(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}
	return r.withEngine(c, func(ctx context.Context, engine *clausewise.Engine) error {
		state, err := engine.Ask(ctx, clausewise.Request{
			Question:    question,
			Document:    c.String("document"),
			ContextHint: c.String("context-hint"),
		})
		if err != nil {
			return err
		}
		out := c.App.Writer
		if c.Bool("evidence") && state.Evidence() != nil {
			fmt.Fprintf(out, "Evidence from %s:\n%s\n\n", state.PrimaryDocument(), state.Evidence().Text)
		}
		fmt.Fprintln(out, state.Answer())
		return nil
	})
}

func (r *runner) ingest(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one document is required")
	}
	return r.withEngine(c, func(ctx context.Context, engine *clausewise.Engine) error {
		for _, document := range c.Args().Slice() {
			state, err := engine.Ingest(ctx, clausewise.Request{
				Document:    document,
				ContextHint: c.String("context-hint"),
			})
			if err != nil {
				return fmt.Errorf("ingesting %s: %w", document, err)
			}
			fmt.Fprintf(c.App.Writer, "%s: %d ranked clauses\n", state.PrimaryDocument(), len(state.RankedClauses()))
		}
		return nil
	})
}

func (r *runner) split(c *cli.Context) error {
	document := c.Args().First()
	if document == "" {
		return fmt.Errorf("a document is required")
	}
	return r.withEngine(c, func(ctx context.Context, engine *clausewise.Engine) error {
		sections, err := engine.Split(ctx, document, "")
		if err != nil {
			return err
		}
		markdown, err := engine.Markdown(ctx, document)
		if err != nil {
			return err
		}
		words, titles := segment.CountWordsAndTitles(markdown)

		out := c.App.Writer
		fmt.Fprintf(out, "Words: %d\nTitles: %d\nSections: %d\n", words, titles, len(sections))
		for i, section := range sections {
			fmt.Fprintf(out, "%3d. %s (%d words)\n", i+1, section.Title, len(strings.Fields(section.Content)))
		}
		return nil
	})
}

func (r *runner) clauses(c *cli.Context) error {
	document := c.Args().First()
	if document == "" {
		return fmt.Errorf("a document is required")
	}
	return r.withEngine(c, func(ctx context.Context, engine *clausewise.Engine) error {
		clauses, err := engine.Clauses(ctx, document)
		if err != nil {
			return err
		}
		for i, clause := range clauses {
			fmt.Fprintf(c.App.Writer, "%2d. [%s %.2f] %s (%s)\n", i+1, clause.Area, clause.Relevance, clause.Text, clause.SectionTitle)
		}
		return nil
	})
}

func (r *runner) artifacts(c *cli.Context) error {
	document := c.Args().First()
	return r.withEngine(c, func(ctx context.Context, engine *clausewise.Engine) error {
		out := c.App.Writer
		if document == "" {
			for _, kind := range []core.ArtifactKind{core.ArtifactMarkdown, core.ArtifactSections, core.ArtifactClauses} {
				names, err := engine.Artifacts(ctx, kind)
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintf(out, "%s/%s\n", kind, name)
				}
			}
			return nil
		}

		plan, err := engine.Plan(ctx, document)
		if err != nil {
			return err
		}
		for _, sp := range plan.Stages() {
			fmt.Fprintf(out, "%-9s %-30s %s\n", sp.Stage, sp.Artifact, sp.Reason)
		}
		if plan.Processed() {
			fmt.Fprintf(out, "%s has been processed\n", plan.Document)
		} else {
			fmt.Fprintf(out, "%s has not been processed\n", plan.Document)
		}
		return nil
	})
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
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
