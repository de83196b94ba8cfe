// Package resolve turns a Notion page's property bag into the attributes the
// location pipeline needs, applying one precedence policy per attribute.
package resolve

import (
	"github.com/jomei/notionapi"

	"github.com/pindrop/pindrop/internal/props"
)

// DefaultName is used when a row carries no name, title, or address.
const DefaultName = "Unnamed Location"

// Property keys read off each row. Name and Category match case-insensitively
// because those two are the most commonly re-cased by database authors; the
// rest match exactly.
const (
	keyLatitude  = "Latitude"
	keyLongitude = "Longitude"
	keyAddress   = "Address"
	keyName      = "Name"
	keyTitle     = "Title"
	keyNotes     = "Notes"
	keyURL       = "URL"
	keyCategory  = "Category"
)

// Coordinates is an explicit lat/lng pair. Named fields, never positional:
// provider APIs disagree on [lat,lng] vs [lng,lat] order and this type is
// where that ambiguity stops.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Category is a resolved select option.
type Category struct {
	Label string
	Color string
}

// Attributes holds everything resolved from one row. Name is always
// populated; empty strings and nil pointers mean absent.
type Attributes struct {
	Name     string
	Notes    string
	URL      string
	Category *Category
	Coords   *Coordinates
	Address  string
}

// Admissible reports whether the row can be placed on a map: it needs
// resolved coordinates or an address to geocode.
func (a Attributes) Admissible() bool {
	return a.Coords != nil || a.Address != ""
}

// Page resolves the attributes of one Notion page.
func Page(page notionapi.Page) Attributes {
	properties := page.Properties

	var a Attributes

	// Latitude and Longitude only count as coordinates together; a lone
	// value is treated as absent rather than half-resolved.
	lat, latOK := props.Number(properties, keyLatitude)
	lng, lngOK := props.Number(properties, keyLongitude)
	if latOK && lngOK {
		a.Coords = &Coordinates{Lat: lat, Lng: lng}
	}

	if addr, ok := props.Text(properties, keyAddress); ok {
		a.Address = addr
	}

	a.Name = resolveName(properties, a.Address)

	if notes, ok := props.Text(properties, keyNotes); ok {
		a.Notes = notes
	}

	if u, ok := props.URL(properties, keyURL); ok {
		a.URL = u
	}

	if key, ok := props.FindKeyFold(properties, keyCategory); ok {
		if opt, ok := props.Select(properties, key); ok {
			a.Category = &Category{Label: opt.Name, Color: opt.Color}
		}
	}

	return a
}

// resolveName applies the name precedence: case-insensitive "Name" title,
// exact "Title" title, the address string, then the default.
func resolveName(properties notionapi.Properties, address string) string {
	if key, ok := props.FindKeyFold(properties, keyName); ok {
		if name, ok := props.Title(properties, key); ok {
			return name
		}
	}
	if name, ok := props.Title(properties, keyTitle); ok {
		return name
	}
	if address != "" {
		return address
	}
	return DefaultName
}
