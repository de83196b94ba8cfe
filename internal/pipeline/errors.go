package pipeline

import (
	"errors"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// Class buckets a batch-level failure for the response layer. The pipeline
// decides the class; mapping classes to transport status codes is the
// caller's job.
type Class int

const (
	ClassClient   Class = iota // caller mistake: bad input, nothing resolvable
	ClassAuth                  // data source rejected our credentials
	ClassNotFound              // unknown database
	ClassServer                // configuration or upstream failure
)

// Sentinel errors for failures detected before any row is read.
var (
	ErrMissingDatabase = eris.New("missing database ID")
	ErrMissingToken    = eris.New("notion token not configured")
)

// BatchError is a batch-level failure carrying every collected row message.
type BatchError struct {
	Class   Class
	Message string
	Details []string
}

func (e *BatchError) Error() string { return e.Message }

// Classify maps an error from Run to a failure class.
func Classify(err error) Class {
	var batchErr *BatchError
	if errors.As(err, &batchErr) {
		return batchErr.Class
	}

	switch {
	case errors.Is(err, ErrMissingDatabase):
		return ClassClient
	case errors.Is(err, ErrMissingToken):
		return ClassServer
	}

	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case "unauthorized", "restricted_resource":
			return ClassAuth
		case "object_not_found":
			return ClassNotFound
		}
	}

	return ClassServer
}
