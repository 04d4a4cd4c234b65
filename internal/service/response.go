package service

import (
	"encoding/json"
	"errors"

	"github.com/AnyUserName/pixhash/internal/apperr"
	"github.com/AnyUserName/pixhash/internal/phash"
)

// Response is a successful hash result.
type Response struct {
	HashBase64  string          `json:"hash_base64"`
	Algorithm   phash.Algorithm `json:"algorithm"`
	HashSize    int             `json:"hash_size"`
	ImageSize   [2]uint32       `json:"image_size"`   // width, height of the decoded raster
	TimeElapsed float64         `json:"time_elapsed"` // seconds
}

// ErrorBody is the wire shape of a failed request.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the kind tags and a human-readable message.
type ErrorDetail struct {
	Kind      string `json:"kind"`
	FetchKind string `json:"fetch_kind,omitempty"`
	Message   string `json:"message"`
}

// NewErrorBody renders err for the wire. Errors outside the taxonomy get
// kind "Unknown".
func NewErrorBody(err error) ErrorBody {
	d := ErrorDetail{Kind: apperr.KindUnknown.String(), Message: err.Error()}
	var e *apperr.Error
	if errors.As(err, &e) {
		d.Kind = e.Kind.String()
		d.FetchKind = e.FetchKind.String()
	}
	return ErrorBody{Error: d}
}

// MarshalError is a convenience for harnesses writing JSON.
func MarshalError(err error) []byte {
	b, _ := json.Marshal(NewErrorBody(err))
	return b
}
