// Package fetcher downloads the pipeline's input datasets over HTTP or FTP and
// unpacks zipped shapefile bundles.
package fetcher

import "context"

// Fetcher downloads remote data to local files.
type Fetcher interface {
	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}
