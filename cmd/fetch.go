package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/housing-transit/internal/config"
	"github.com/sells-group/housing-transit/internal/fetcher"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the input datasets",
	Long:  "Downloads the housing, boundary and L stop datasets from the configured HTTP or FTP URLs into input.dir.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		httpF := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:  cfg.Fetch.UserAgent,
			Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Fetch.MaxRetries,
		})
		ftpF := fetcher.NewFTPFetcher(time.Duration(cfg.Fetch.TimeoutSecs) * time.Second)

		results, err := fetcher.Fetch(ctx, fetchSources(cfg), cfg.Input.Dir, httpF, ftpF)
		if err != nil {
			return err
		}

		for _, r := range results {
			if r.Source.Name == "boundaries" && len(r.Extracted) > 0 && filepath.Ext(cfg.Input.Boundaries) == ".shp" {
				target := filepath.Join(cfg.Input.Dir, filepath.Base(cfg.Input.Boundaries))
				renamed, err := fetcher.RenameStem(r.Extracted, ".shp", target)
				if err != nil {
					return err
				}
				zap.L().Info("boundary shapefile unpacked", zap.Strings("files", renamed))
			}
			_, _ = fmt.Fprintf(os.Stdout, "%s: %s (%s bytes)\n", r.Source.Name, r.Path, count(int(r.Bytes)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

// fetchSources maps the configured URLs to local file names. A shapefile
// boundary target is downloaded as a zip bundle and unpacked beside it.
func fetchSources(c *config.Config) []fetcher.Source {
	boundaries := c.Input.Boundaries
	if filepath.Ext(boundaries) == ".shp" {
		boundaries = boundaries[:len(boundaries)-len(".shp")] + ".zip"
	}
	return []fetcher.Source{
		{Name: "housing", URL: c.Fetch.HousingURL, File: c.Input.Housing},
		{Name: "boundaries", URL: c.Fetch.BoundariesURL, File: boundaries},
		{Name: "stops", URL: c.Fetch.StopsURL, File: c.Input.Stops},
	}
}
