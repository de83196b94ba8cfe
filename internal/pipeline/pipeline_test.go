package pipeline

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pindrop/pindrop/pkg/geocode"
)

// stubGeocoder returns canned results per address and records every call.
type stubGeocoder struct {
	results map[string]*geocode.Result
	err     error
	calls   []string
}

func (s *stubGeocoder) Geocode(_ context.Context, address string) (*geocode.Result, error) {
	s.calls = append(s.calls, address)
	if s.err != nil {
		return nil, s.err
	}
	if r, ok := s.results[address]; ok {
		return r, nil
	}
	return &geocode.Result{Matched: false}, nil
}

// stubNotion serves a fixed page list for any database ID.
type stubNotion struct {
	pages []notionapi.Page
	err   error
}

func (s *stubNotion) QueryDatabase(context.Context, string, *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &notionapi.DatabaseQueryResponse{Results: s.pages}, nil
}

func coordPage(id string, lat, lng float64) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID(id),
		Properties: notionapi.Properties{
			"Name":      &notionapi.TitleProperty{Title: []notionapi.RichText{{PlainText: "Pin " + id}}},
			"Latitude":  &notionapi.NumberProperty{Number: lat},
			"Longitude": &notionapi.NumberProperty{Number: lng},
		},
	}
}

func addressPage(id, address string) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID(id),
		Properties: notionapi.Properties{
			"Address": &notionapi.RichTextProperty{
				RichText: []notionapi.RichText{{PlainText: address}},
			},
		},
	}
}

func emptyPage(id string) notionapi.Page {
	return notionapi.Page{ID: notionapi.ObjectID(id), Properties: notionapi.Properties{}}
}

func TestProcess_CoordinatesBypassGeocoder(t *testing.T) {
	g := &stubGeocoder{}
	p := New(nil, g)

	batch := p.Process(context.Background(), []notionapi.Page{coordPage("p1", 12.3, 45.6)})

	require.Len(t, batch.Locations, 1)
	assert.Equal(t, 12.3, batch.Locations[0].Lat)
	assert.Equal(t, 45.6, batch.Locations[0].Lng)
	assert.Empty(t, g.calls, "geocoder must not be invoked when coordinates exist")
}

func TestProcess_LoneLatitudeNeedsAddress(t *testing.T) {
	g := &stubGeocoder{}
	p := New(nil, g)

	page := notionapi.Page{
		ID: "p1",
		Properties: notionapi.Properties{
			"Latitude": &notionapi.NumberProperty{Number: 12.3},
		},
	}
	batch := p.Process(context.Background(), []notionapi.Page{page})

	assert.Empty(t, batch.Locations)
	require.Len(t, batch.Errors, 1)
	assert.Equal(t, "Page p1: Must have either Latitude/Longitude OR Address", batch.Errors[0].Message)
	assert.Empty(t, g.calls)
}

func TestProcess_GeocodeSuccess(t *testing.T) {
	g := &stubGeocoder{results: map[string]*geocode.Result{
		"1 Main St": {Lat: 40.7, Lng: -74.0, Matched: true},
	}}
	p := New(nil, g)

	batch := p.Process(context.Background(), []notionapi.Page{addressPage("p1", "1 Main St")})

	require.Len(t, batch.Locations, 1)
	loc := batch.Locations[0]
	assert.Equal(t, 40.7, loc.Lat)
	assert.Equal(t, -74.0, loc.Lng)
	assert.Equal(t, "1 Main St", loc.Name, "address becomes the name when no title exists")
	assert.Equal(t, []string{"1 Main St"}, g.calls)
}

func TestProcess_GeocodeNoResult(t *testing.T) {
	p := New(nil, &stubGeocoder{})

	batch := p.Process(context.Background(), []notionapi.Page{addressPage("p1", "Nowhere, XYZ")})

	assert.Empty(t, batch.Locations)
	require.Len(t, batch.Errors, 1)
	assert.Equal(t,
		`Page p1: Could not geocode address "Nowhere, XYZ". Please add Latitude/Longitude manually.`,
		batch.Errors[0].Message)
}

func TestProcess_GeocodeFailure(t *testing.T) {
	p := New(nil, &stubGeocoder{err: eris.New("nominatim returned status 503")})

	batch := p.Process(context.Background(), []notionapi.Page{addressPage("p1", "1 Main St")})

	assert.Empty(t, batch.Locations)
	require.Len(t, batch.Errors, 1)
	assert.Contains(t, batch.Errors[0].Message, `Geocoding failed for "1 Main St"`)
	assert.Contains(t, batch.Errors[0].Message, "503", "underlying detail carried in the row message")
}

func TestProcess_ExactlyOneEmissionPerRow(t *testing.T) {
	g := &stubGeocoder{results: map[string]*geocode.Result{
		"ok street": {Lat: 1, Lng: 2, Matched: true},
	}}
	p := New(nil, g)

	pages := []notionapi.Page{
		coordPage("p1", 1, 2),
		emptyPage("p2"),
		addressPage("p3", "ok street"),
		addressPage("p4", "unknown street"),
	}
	batch := p.Process(context.Background(), pages)

	assert.Equal(t, len(pages), len(batch.Locations)+len(batch.Errors))
}

func TestProcess_PartialFailureKeepsOrder(t *testing.T) {
	p := New(nil, &stubGeocoder{})

	pages := []notionapi.Page{
		coordPage("p1", 1, 1),
		emptyPage("p2"),
		coordPage("p3", 3, 3),
	}
	batch := p.Process(context.Background(), pages)

	require.Len(t, batch.Locations, 2)
	require.Len(t, batch.Errors, 1)
	assert.Equal(t, "Pin p1", batch.Locations[0].Name)
	assert.Equal(t, "Pin p3", batch.Locations[1].Name)
	assert.Equal(t, "p2", batch.Errors[0].RowID)
}

func TestProcess_Deterministic(t *testing.T) {
	pages := []notionapi.Page{
		coordPage("p1", 1, 2),
		addressPage("p2", "1 Main St"),
		emptyPage("p3"),
	}
	g := func() geocode.Client {
		return &stubGeocoder{results: map[string]*geocode.Result{
			"1 Main St": {Lat: 40.7, Lng: -74.0, Matched: true},
		}}
	}

	first := New(nil, g()).Process(context.Background(), pages)
	second := New(nil, g()).Process(context.Background(), pages)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestRun_MissingDatabaseID(t *testing.T) {
	p := New(&stubNotion{}, &stubGeocoder{})

	_, err := p.Run(context.Background(), "")
	require.ErrorIs(t, err, ErrMissingDatabase)
	assert.Equal(t, ClassClient, Classify(err))
}

func TestRun_AllRowsFail(t *testing.T) {
	p := New(&stubNotion{pages: []notionapi.Page{emptyPage("p1"), emptyPage("p2")}}, &stubGeocoder{})

	_, err := p.Run(context.Background(), "db-1")
	require.Error(t, err)

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, ClassClient, batchErr.Class)
	assert.Len(t, batchErr.Details, 2, "one detail per failed row")
	assert.Equal(t, ClassClient, Classify(err))
}

func TestRun_PartialSuccessWins(t *testing.T) {
	p := New(&stubNotion{pages: []notionapi.Page{
		coordPage("p1", 1, 1),
		emptyPage("p2"),
		coordPage("p3", 3, 3),
	}}, &stubGeocoder{})

	batch, err := p.Run(context.Background(), "db-1")
	require.NoError(t, err, "one resolved row is enough for batch success")
	assert.Len(t, batch.Locations, 2)
	assert.Len(t, batch.Errors, 1)
}

func TestRun_QueryErrorPropagates(t *testing.T) {
	queryErr := &notionapi.Error{Code: "object_not_found", Message: "no such database"}
	p := New(&stubNotion{err: queryErr}, &stubGeocoder{})

	_, err := p.Run(context.Background(), "db-1")
	require.Error(t, err)
	assert.Equal(t, ClassNotFound, Classify(err))
}
