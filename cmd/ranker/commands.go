package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/selivandex/catalog-ranker/internal/adapters/database"
	"github.com/selivandex/catalog-ranker/internal/health"
	"github.com/selivandex/catalog-ranker/internal/keywords"
	"github.com/selivandex/catalog-ranker/internal/scoring"
	"github.com/selivandex/catalog-ranker/internal/sentiment"
	"github.com/selivandex/catalog-ranker/internal/workers"
	"github.com/selivandex/catalog-ranker/pkg/logger"
	"github.com/selivandex/catalog-ranker/pkg/models"
	"github.com/selivandex/catalog-ranker/pkg/worker"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the stale score sweeper and the health/metrics server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	logger.Info("catalog ranker starting",
		zap.String("driver", a.db.Driver()),
		zap.Duration("freshness_window", a.cache.Window()),
		zap.Bool("redis_locks", a.redis != nil),
		zap.Bool("score_history", a.analytics != nil),
	)

	group := worker.NewGroup(ctx, clockwork.NewRealClock())
	if a.cfg.Scoring.SweepEnabled {
		sweeper := workers.NewStaleScoreWorker(a.scores, a.cache, nil, a.cfg.Scoring.SweepBatchSize)
		group.Add(sweeper, a.cfg.Scoring.SweepInterval)
	}
	group.Start()

	checks := map[string]health.Checker{"database": a.db.Health}
	if a.redis != nil {
		checks["redis"] = a.redis.Health
	}
	if a.analytics != nil {
		checks["clickhouse"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return a.analytics.Health(ctx)
		}
	}

	server := health.NewServer(a.cfg.Server.Port, checks)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()
	server.SetReady(true)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err = <-serverErr:
		if err != nil {
			logger.Error("health server failed", zap.Error(err))
		}
	}

	server.SetReady(false)
	group.Stop(shutdownTimeout)

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if stopErr := server.Stop(stopCtx); stopErr != nil {
		logger.Error("failed to stop health server", zap.Error(stopErr))
	}

	logger.Info("catalog ranker stopped")
	return err
}

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down|version]",
		Short:     "Apply, roll back or inspect database migrations",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "version"},
		RunE: func(_ *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}

			cfg, err := initConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, err := database.New(&cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			path := cfg.Database.MigrationsPath
			switch action {
			case "up":
				return db.RunMigrations(path)
			case "down":
				return db.RollbackMigration(path)
			case "version":
				version, dirty, err := db.MigrationVersion(path)
				if err != nil {
					return err
				}
				return printJSON(map[string]interface{}{"version": version, "dirty": dirty})
			default:
				return fmt.Errorf("unknown migrate action %q", action)
			}
		},
	}
	return cmd
}

// scoreOutput is what the score command prints
type scoreOutput struct {
	ItemID   int64          `json:"item_id"`
	Score    float64        `json:"score"`
	Source   scoring.Source `json:"source"`
	Degraded string         `json:"degraded,omitempty"`
	Error    string         `json:"error,omitempty"`
}

func newScoreCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "score <item-id>",
		Short: "Print an item's score, recomputing it when stale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseItemID(args[0])
			if err != nil {
				return err
			}

			a, err := initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			var res scoring.Result
			if force {
				res = a.service.RecomputeScore(cmd.Context(), itemID)
			} else {
				res = a.service.GetOrComputeScore(cmd.Context(), itemID)
			}

			out := scoreOutput{
				ItemID:   itemID,
				Score:    models.ToFloat64(res.Rounded()),
				Source:   res.Source,
				Degraded: string(res.Degraded),
			}
			if res.Err != nil {
				out.Error = res.Err.Error()
			}
			return printJSON(out)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "recompute even when the stored score is fresh")
	return cmd
}

func newAnalyzeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <text>",
		Short: "Score the sentiment of a text in [-1, 1]",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := initConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()

			lexicon, err := sentiment.LoadLexicon(cfg.Lexicon.PositivePath, cfg.Lexicon.NegativePath)
			if err != nil {
				logger.Warn("sentiment lexicon incomplete", zap.Error(err))
			}

			analyzer := sentiment.NewAnalyzer(lexicon)
			text := strings.Join(args, " ")
			score := analyzer.AnalyzeSentiment(text)

			return printJSON(map[string]interface{}{
				"sentiment": score,
				"label":     models.LabelFor(score),
			})
		},
	}
}

func newKeywordsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keywords <text>",
		Short: "Print the most frequent meaningful words of a text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return printJSON(keywords.NewExtractor().Extract(strings.Join(args, " ")))
		},
	}
}

func newInsightsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "insights <product>",
		Short: "Print the community insight for a product",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			product := strings.Join(args, " ")
			insight, err := a.service.GetInsight(cmd.Context(), product)
			if err != nil {
				return err
			}
			if insight == nil {
				return fmt.Errorf("no insight for %q", product)
			}
			return printJSON(insight)
		},
	}
}

func newPostCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "post <product> <text>",
		Short: "Fold a community post into its product's insight",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			product := args[0]
			score := a.service.AfterPostCreated(cmd.Context(), product, strings.Join(args[1:], " "))

			insight, err := a.service.GetInsight(cmd.Context(), product)
			if err != nil {
				return err
			}
			return printJSON(map[string]interface{}{
				"sentiment": score,
				"insight":   insight,
			})
		},
	}
}

func newRankCommand() *cobra.Command {
	var opts scoring.RankOptions

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "List items by score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			items, err := a.service.RankItems(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return printJSON(items)
		},
	}

	cmd.Flags().StringVar(&opts.Query, "q", "", "only items whose title or description contains this text")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", scoring.DefaultRankLimit, "maximum number of items")
	cmd.Flags().Float64Var(&opts.MinScore, "min-score", 0, "drop items scoring below this")
	return cmd
}

func newCompareCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <item-id> <item-id>",
		Short: "Compare two items side by side",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			first, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			second, err := parseItemID(args[1])
			if err != nil {
				return err
			}

			a, err := initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			result, err := a.service.CompareItems(cmd.Context(), first, second)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
}

func parseItemID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid item id %q: %w", arg, err)
	}
	return id, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
