// Package pipeline turns the rows of a Notion database into geolocated
// records, geocoding addresses where coordinates are missing and collecting
// per-row failures without aborting the batch.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jomei/notionapi"
	"go.uber.org/zap"

	"github.com/pindrop/pindrop/internal/model"
	"github.com/pindrop/pindrop/internal/resolve"
	"github.com/pindrop/pindrop/pkg/geocode"
	"github.com/pindrop/pindrop/pkg/notion"
)

const noLocationsMessage = "No valid locations found in database. " +
	"Please ensure your database has either Latitude/Longitude OR Address properties."

// Pipeline drives the row processor over a whole database.
type Pipeline struct {
	notion   notion.Client
	geocoder geocode.Client
}

// New creates a Pipeline from its two collaborators.
func New(notionClient notion.Client, geocoder geocode.Client) *Pipeline {
	return &Pipeline{
		notion:   notionClient,
		geocoder: geocoder,
	}
}

// Run queries the database and processes every row. It returns a Batch with
// at least one location on success; row-level failures ride along in
// Batch.Errors. A batch where no row resolves returns a *BatchError carrying
// one detail per row.
func (p *Pipeline) Run(ctx context.Context, dbID string) (*model.Batch, error) {
	if dbID == "" {
		return nil, ErrMissingDatabase
	}

	batchID := uuid.New().String()
	log := zap.L().With(zap.String("batch_id", batchID), zap.String("db", dbID))

	pages, err := notion.QueryAll(ctx, p.notion, dbID)
	if err != nil {
		return nil, err
	}
	log.Info("queried database", zap.Int("rows", len(pages)))

	batch := p.Process(ctx, pages)
	log.Info("batch processed",
		zap.Int("locations", len(batch.Locations)),
		zap.Int("row_errors", len(batch.Errors)),
	)

	if len(batch.Locations) == 0 {
		return nil, &BatchError{
			Class:   ClassClient,
			Message: noLocationsMessage,
			Details: batch.Messages(),
		}
	}
	return batch, nil
}

// Process runs the row processor over pages strictly in input order. Rows
// are handled sequentially with at most one geocoding call in flight, so the
// output is deterministic for a deterministic geocoder. Every page yields
// exactly one location or one row error.
func (p *Pipeline) Process(ctx context.Context, pages []notionapi.Page) *model.Batch {
	batch := &model.Batch{Locations: []model.Location{}}

	for _, page := range pages {
		loc, rowErr := p.processRow(ctx, page)
		if rowErr != nil {
			zap.L().Debug("row rejected",
				zap.String("page", rowErr.RowID),
				zap.String("reason", rowErr.Message),
			)
			batch.Errors = append(batch.Errors, *rowErr)
			continue
		}
		batch.Locations = append(batch.Locations, loc)
	}

	return batch
}

// processRow resolves one page and geocodes its address when needed.
func (p *Pipeline) processRow(ctx context.Context, page notionapi.Page) (model.Location, *model.RowError) {
	id := string(page.ID)
	attrs := resolve.Page(page)

	// Rows with explicit coordinates never reach the geocoder.
	if attrs.Coords != nil {
		return locationFrom(attrs, attrs.Coords.Lat, attrs.Coords.Lng), nil
	}

	if !attrs.Admissible() {
		return model.Location{}, &model.RowError{
			RowID:   id,
			Message: fmt.Sprintf("Page %s: Must have either Latitude/Longitude OR Address", id),
		}
	}

	result, err := p.geocoder.Geocode(ctx, attrs.Address)
	if err != nil {
		return model.Location{}, &model.RowError{
			RowID: id,
			Message: fmt.Sprintf("Page %s: Geocoding failed for %q. Please add Latitude/Longitude manually. (%s)",
				id, attrs.Address, err),
		}
	}
	if !result.Matched {
		return model.Location{}, &model.RowError{
			RowID: id,
			Message: fmt.Sprintf("Page %s: Could not geocode address %q. Please add Latitude/Longitude manually.",
				id, attrs.Address),
		}
	}

	return locationFrom(attrs, result.Lat, result.Lng), nil
}

// locationFrom builds the output record from resolved attributes and a
// definite coordinate pair.
func locationFrom(attrs resolve.Attributes, lat, lng float64) model.Location {
	loc := model.Location{
		Name:  attrs.Name,
		Lat:   lat,
		Lng:   lng,
		Notes: attrs.Notes,
		URL:   attrs.URL,
	}
	if attrs.Category != nil {
		loc.Category = attrs.Category.Label
		loc.CategoryColor = attrs.Category.Color
	}
	return loc
}
