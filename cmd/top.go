package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var topN int

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Print the highest-scoring neighborhoods",
	Long:  "Runs the scoring stages without writing maps or exports and prints the ranked table.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, err := newPipeline()
		if err != nil {
			return err
		}
		res, err := p.Score(ctx)
		if err != nil {
			return err
		}

		n := cfg.Scoring.TopN
		if topN > 0 {
			n = topN
		}
		printScores(os.Stdout, res.Top(n))
		return nil
	},
}

func init() {
	topCmd.Flags().IntVarP(&topN, "limit", "n", 0, "number of neighborhoods to print (default scoring.top_n)")
	rootCmd.AddCommand(topCmd)
}
