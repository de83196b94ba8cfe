// Package model defines the output types of the location pipeline.
package model

// Location is one geolocated record ready for map rendering.
type Location struct {
	Name          string  `json:"name"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	Notes         string  `json:"notes,omitempty"`
	URL           string  `json:"url,omitempty"`
	Category      string  `json:"category,omitempty"`
	CategoryColor string  `json:"categoryColor,omitempty"`
}

// InBounds reports whether the coordinates are finite and within
// lat [-90,90], lng [-180,180].
func (l Location) InBounds() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

// RowError records why a single source row could not be turned into a Location.
type RowError struct {
	RowID   string `json:"row_id"`
	Message string `json:"message"`
}

func (e RowError) Error() string { return e.Message }

// Batch is the result of processing every row of one database query.
// Each source row contributes exactly one Location or one RowError.
type Batch struct {
	Locations []Location `json:"locations"`
	Errors    []RowError `json:"errors,omitempty"`
}

// Messages returns the error messages in row order.
func (b Batch) Messages() []string {
	if len(b.Errors) == 0 {
		return nil
	}
	msgs := make([]string, len(b.Errors))
	for i, e := range b.Errors {
		msgs[i] = e.Message
	}
	return msgs
}
