package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ranker",
		Short: "Catalog ranking: item scores, review sentiment and community insights",
		Long: `ranker scores catalog items from their reviews and engagement, analyzes
review sentiment and keeps per-product community insights.

Configuration comes from the environment (DB_*, REDIS_*, CLICKHOUSE_*,
SCORING_*, LEXICON_*, LOG_*, SERVER_*).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newScoreCommand(),
		newAnalyzeCommand(),
		newKeywordsCommand(),
		newInsightsCommand(),
		newPostCommand(),
		newRankCommand(),
		newCompareCommand(),
	)

	return root
}
