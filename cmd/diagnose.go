package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/housing-transit/internal/reconcile"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Report housing community areas that do not match a neighborhood",
	Long:  "Loads the inputs, applies the typo and remap tables and prints the join residues before and after cleaning.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, err := newPipeline()
		if err != nil {
			return err
		}
		in, err := p.Load(ctx)
		if err != nil {
			return err
		}
		rec := p.Reconcile(in)

		printMismatch(os.Stdout, "Before cleaning", rec.Before)
		printMismatch(os.Stdout, "After cleaning", rec.After)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)
}

func printMismatch(w io.Writer, title string, m reconcile.Mismatch) {
	_, _ = fmt.Fprintf(w, "%s: %d community areas without a neighborhood (%s units), %d neighborhoods without housing\n",
		title, len(m.RightOnly), count(m.OrphanUnits()), len(m.LeftOnly))

	if len(m.RightOnly) > 0 {
		rows := make([][]string, len(m.RightOnly))
		for i, o := range m.RightOnly {
			rows[i] = []string{o.Name, count(o.Units)}
		}
		printTable(w, []string{"Community Area", "Units"}, rows)
	}
	if len(m.LeftOnly) > 0 {
		rows := make([][]string, len(m.LeftOnly))
		for i, name := range m.LeftOnly {
			rows[i] = []string{name}
		}
		printTable(w, []string{"Neighborhood Without Housing"}, rows)
	}
	_, _ = fmt.Fprintln(w)
}
