package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/housing-transit/internal/model"
	"github.com/sells-group/housing-transit/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline and write the maps and exports",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, err := newPipeline()
		if err != nil {
			return err
		}

		res, err := p.Run(ctx)
		if err != nil {
			return err
		}

		for _, ph := range res.Phases {
			zap.L().Debug("phase timing", zap.String("phase", ph.Name), zap.Duration("duration", ph.Duration))
		}
		printRunSummary(os.Stdout, res, cfg.Scoring.TopN)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func printRunSummary(w io.Writer, res *pipeline.Result, n int) {
	_, _ = fmt.Fprintf(w, "neighborhoods: %s  housing units: %s  stations: %s\n",
		count(res.Summary.Neighborhoods), count(res.Summary.TotalUnits), count(res.Summary.TotalStations))
	if len(res.After.RightOnly) > 0 {
		_, _ = fmt.Fprintf(w, "unmatched community areas: %d (%s units)\n",
			len(res.After.RightOnly), count(res.After.OrphanUnits()))
	}
	for _, p := range res.Maps {
		_, _ = fmt.Fprintf(w, "map: %s\n", p)
	}
	for _, p := range res.Exports {
		_, _ = fmt.Fprintf(w, "export: %s\n", p)
	}
	_, _ = fmt.Fprintln(w)
	printScores(w, res.Top(n))
}

// printScores writes a ranked score table.
func printScores(w io.Writer, scores []model.ScoredNeighborhood) {
	rows := make([][]string, len(scores))
	for i, s := range scores {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			s.Name,
			count(s.HousingUnits),
			strconv.Itoa(s.ConnDist),
			count(s.ScoreInt()),
		}
	}
	printTable(w, []string{"Rank", "Neighborhood", "Housing Units", "Transit", "Score"}, rows)
}
