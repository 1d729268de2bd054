package export

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

var scoreHeader = []string{"Rank", "Neighborhood", "Housing Units", "Transit Score", "Housing-Transit Score", "Stations"}

// WriteXLSX writes a workbook with the full ranking, the top-N table and the
// station list.
func WriteXLSX(path string, in Input) error {
	f := xlsx.NewFile()

	if err := scoreSheet(f, "Scores", Rows(in.Scores)); err != nil {
		return err
	}
	if err := scoreSheet(f, fmt.Sprintf("Top %d", in.TopN), Rows(in.Top())); err != nil {
		return err
	}

	sheet, err := f.AddSheet("Stations")
	if err != nil {
		return eris.Wrap(err, "export: add stations sheet")
	}
	addRow(sheet, "Station ID", "Station", "Latitude", "Longitude", "Connectivity", "Overridden")
	for _, st := range in.Stations {
		row := sheet.AddRow()
		row.AddCell().SetInt(st.StationID)
		row.AddCell().SetString(st.Name)
		row.AddCell().SetFloat(st.Lat)
		row.AddCell().SetFloat(st.Lon)
		row.AddCell().SetInt(st.Connectivity)
		row.AddCell().SetBool(st.Overridden)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func scoreSheet(f *xlsx.File, name string, rows []ScoreRow) error {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "export: add sheet %s", name)
	}
	addRow(sheet, scoreHeader...)
	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetInt(r.Rank)
		row.AddCell().SetString(r.Neighborhood)
		row.AddCell().SetInt(r.HousingUnits)
		row.AddCell().SetInt(r.ConnDist)
		row.AddCell().SetInt(r.Score)
		row.AddCell().SetInt(r.Stations)
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
