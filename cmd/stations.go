package main

import (
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/housing-transit/internal/model"
)

var stationsByConnectivity bool

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "Print per-station connectivity",
	Long:  "Prints each physical L station with its line count after endpoint removal and connectivity overrides.",
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
		stations, err := p.Stations(in)
		if err != nil {
			return err
		}

		printStations(os.Stdout, stations, stationsByConnectivity)
		return nil
	},
}

func init() {
	stationsCmd.Flags().BoolVar(&stationsByConnectivity, "by-connectivity", false, "sort by connectivity, highest first")
	rootCmd.AddCommand(stationsCmd)
}

func printStations(w io.Writer, stations []model.Station, byConnectivity bool) {
	sorted := append([]model.Station(nil), stations...)
	if byConnectivity {
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Connectivity > sorted[j].Connectivity
		})
	}

	rows := make([][]string, len(sorted))
	for i, st := range sorted {
		note := ""
		if st.Overridden {
			note = "override"
		}
		rows[i] = []string{strconv.Itoa(st.StationID), st.Name, strconv.Itoa(st.Connectivity), note}
	}
	printTable(w, []string{"Station ID", "Station", "Connectivity", "Note"}, rows)
}
