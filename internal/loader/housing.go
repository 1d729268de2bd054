package loader

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/housing-transit/internal/model"
)

// Housing dataset column names.
const (
	ColCommunityArea = "Community Area Name"
	ColPropertyType  = "Property Type"
	ColAddress       = "Address"
)

var housingColumns = []string{ColCommunityArea, ColPropertyType, ColAddress}

// LoadHousing reads the affordable-housing table at path (CSV or XLSX).
func LoadHousing(ctx context.Context, path string) ([]model.HousingRecord, error) {
	rows, closeFn, err := openTable(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open housing file %s", path)
	}
	defer closeFn()

	records, err := decodeHousing(ctx, rows, filepath.Base(path))
	if err != nil {
		return nil, err
	}

	zap.L().Debug("loader: housing records read",
		zap.String("file", path),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// DecodeHousing decodes housing records from r. name identifies the source in
// errors.
func DecodeHousing(ctx context.Context, r io.Reader, name string) ([]model.HousingRecord, error) {
	return decodeHousing(ctx, csvReader(r), name)
}

func decodeHousing(ctx context.Context, rows csvutil.Reader, name string) ([]model.HousingRecord, error) {
	dec, err := csvutil.NewDecoder(rows)
	if err != nil {
		if err == io.EOF {
			return nil, &SchemaError{File: name, Reason: "file is empty"}
		}
		return nil, eris.Wrapf(err, "loader: read header of %s", name)
	}
	if missing := missingColumns(dec.Header(), housingColumns); len(missing) > 0 {
		return nil, &SchemaError{File: name, Field: missing[0], Reason: "missing column"}
	}

	var records []model.HousingRecord
	for row := 1; ; row++ {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "loader: housing decode cancelled")
		}
		var rec model.HousingRecord
		if err := dec.Decode(&rec); err == io.EOF {
			break
		} else if err != nil {
			return nil, decodeErr(name, row, err)
		}
		rec.CommunityArea = strings.TrimSpace(rec.CommunityArea)
		rec.PropertyType = strings.TrimSpace(rec.PropertyType)
		rec.Address = strings.TrimSpace(rec.Address)
		records = append(records, rec)
	}
	return records, nil
}
