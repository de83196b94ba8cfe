package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/pindrop/pindrop/internal/model"
)

// csvHeader is the fixed column order of CSV exports.
var csvHeader = []string{"name", "lat", "lng", "notes", "url", "category", "category_color"}

// CSV writes the batch's locations as CSV with a header row.
func CSV(w io.Writer, batch *model.Batch) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}

	for _, loc := range batch.Locations {
		record := []string{
			loc.Name,
			strconv.FormatFloat(loc.Lat, 'f', -1, 64),
			strconv.FormatFloat(loc.Lng, 'f', -1, 64),
			loc.Notes,
			loc.URL,
			loc.Category,
			loc.CategoryColor,
		}
		if err := cw.Write(record); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return nil
}
