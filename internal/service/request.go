package service

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/AnyUserName/pixhash/internal/apperr"
	"github.com/AnyUserName/pixhash/internal/phash"
)

// Request is the incoming hash request. Optional fields are pointers so an
// omitted field is distinguishable from an empty one.
type Request struct {
	Path      string  `json:"path"`
	Algorithm *string `json:"algorithm,omitempty"`
	HashSize  *int    `json:"hash_size,omitempty"`
}

// UnmarshalJSON accepts "algo" as an alias of "algorithm".
func (r *Request) UnmarshalJSON(data []byte) error {
	var raw struct {
		Path      string  `json:"path"`
		Algorithm *string `json:"algorithm"`
		Algo      *string `json:"algo"`
		HashSize  *int    `json:"hash_size"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Path = raw.Path
	r.Algorithm = raw.Algorithm
	if r.Algorithm == nil {
		r.Algorithm = raw.Algo
	}
	r.HashSize = raw.HashSize
	return nil
}

// ParseRequest decodes a JSON request envelope. Malformed JSON is an
// InvalidRequest.
func ParseRequest(data []byte) (Request, error) {
	var req Request
	if len(bytes.TrimSpace(data)) == 0 {
		return req, apperr.InvalidRequest("empty request body")
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, &apperr.Error{Kind: apperr.KindInvalidRequest, Msg: "malformed request", Err: err}
	}
	return req, nil
}

// Params is a validated Request.
type Params struct {
	Path      string
	Algorithm phash.Algorithm
	HashSize  int
}

// Defaults supplies values for omitted request fields.
type Defaults struct {
	Algorithm phash.Algorithm
	HashSize  int
}

// StandardDefaults are Gradient / 64 bits.
var StandardDefaults = Defaults{Algorithm: phash.DefaultAlgorithm, HashSize: phash.DefaultSize}

// Validate checks req once, at the boundary, before any pipeline work.
func (d Defaults) Validate(req Request) (Params, error) {
	p := Params{Path: req.Path, Algorithm: d.Algorithm, HashSize: d.HashSize}

	if strings.TrimSpace(req.Path) == "" {
		return p, apperr.InvalidRequest("path is required")
	}
	if req.Algorithm != nil {
		alg, err := phash.ParseAlgorithm(*req.Algorithm)
		if err != nil {
			return p, &apperr.Error{Kind: apperr.KindInvalidRequest, Msg: "algorithm", Err: err}
		}
		p.Algorithm = alg
	}
	if req.HashSize != nil {
		p.HashSize = *req.HashSize
	}
	if !phash.ValidSize(p.HashSize) {
		return p, &apperr.Error{Kind: apperr.KindInvalidRequest, Msg: "hash_size",
			Err: phash.ErrUnsupportedSize{Size: p.HashSize}}
	}
	return p, nil
}
