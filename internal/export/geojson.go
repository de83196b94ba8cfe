// Package export encodes a processed batch for map tooling: GeoJSON for
// renderers, CSV for spreadsheets.
package export

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/pindrop/pindrop/internal/model"
)

// GeoJSON encodes the batch's locations as a FeatureCollection of Points.
// GeoJSON positions are [lng, lat] per RFC 7946; the conversion from the
// named Lat/Lng fields happens only here.
func GeoJSON(batch *model.Batch) ([]byte, error) {
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{}}

	for _, loc := range batch.Locations {
		properties := map[string]interface{}{
			"name": loc.Name,
		}
		if loc.Notes != "" {
			properties["notes"] = loc.Notes
		}
		if loc.URL != "" {
			properties["url"] = loc.URL
		}
		if loc.Category != "" {
			properties["category"] = loc.Category
			properties["categoryColor"] = loc.CategoryColor
		}

		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   geom.NewPointFlat(geom.XY, []float64{loc.Lng, loc.Lat}),
			Properties: properties,
		})
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "export: marshal geojson")
	}
	return data, nil
}
