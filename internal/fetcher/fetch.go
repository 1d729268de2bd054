package fetcher

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Source names one remote dataset and the local file it is stored as.
type Source struct {
	Name string
	URL  string
	File string
}

// Result describes one downloaded source.
type Result struct {
	Source    Source
	Path      string
	Bytes     int64
	Extracted []string
}

// Fetch downloads every source into dir, choosing HTTP or FTP by URL scheme.
// ZIP payloads are extracted next to the archive. Sources with an empty URL
// are skipped.
func Fetch(ctx context.Context, sources []Source, dir string, httpF, ftpF Fetcher) ([]Result, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "fetcher: create %s", dir)
	}

	log := zap.L().With(zap.String("component", "fetcher"))
	results := make([]Result, 0, len(sources))
	for _, src := range sources {
		if src.URL == "" {
			log.Info("no url configured, skipping", zap.String("source", src.Name))
			continue
		}
		if err := ctx.Err(); err != nil {
			return results, eris.Wrap(err, "fetcher: cancelled")
		}

		f, err := pick(src.URL, httpF, ftpF)
		if err != nil {
			return results, eris.Wrapf(err, "fetcher: %s", src.Name)
		}

		file := src.File
		if file == "" {
			file = urlBase(src.URL)
		}
		dest := filepath.Join(dir, filepath.Base(file))

		n, err := f.DownloadToFile(ctx, src.URL, dest)
		if err != nil {
			return results, eris.Wrapf(err, "fetcher: download %s", src.Name)
		}
		res := Result{Source: src, Path: dest, Bytes: n}

		if strings.EqualFold(filepath.Ext(dest), ".zip") {
			res.Extracted, err = ExtractZIP(dest, dir)
			if err != nil {
				return results, eris.Wrapf(err, "fetcher: extract %s", src.Name)
			}
		}

		log.Info("fetched",
			zap.String("source", src.Name),
			zap.String("path", dest),
			zap.Int64("bytes", n),
			zap.Int("extracted", len(res.Extracted)),
		)
		results = append(results, res)
	}
	return results, nil
}

func pick(rawURL string, httpF, ftpF Fetcher) (Fetcher, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrap(err, "parse url")
	}
	switch u.Scheme {
	case "http", "https":
		if httpF != nil {
			return httpF, nil
		}
	case "ftp":
		if ftpF != nil {
			return ftpF, nil
		}
	}
	return nil, eris.Errorf("unsupported url scheme %q", u.Scheme)
}

// urlBase returns the last path element of a URL, or "download" when it has none.
func urlBase(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" || strings.HasSuffix(u.Path, "/") {
		return "download"
	}
	return filepath.Base(u.Path)
}
