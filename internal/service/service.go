// Package service is the request orchestrator: it validates a Request,
// fetches the object, decodes and hashes it, and times the whole call.
//
// A Service holds no per-request state. Concurrent Handle calls share only
// the read-only Fetcher and Decoder they were built with.
package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AnyUserName/pixhash/internal/apperr"
	"github.com/AnyUserName/pixhash/internal/digest"
	"github.com/AnyUserName/pixhash/internal/phash"
	"github.com/AnyUserName/pixhash/internal/raster"
)

// Fetcher retrieves raw object bytes. Implementations return
// *apperr.Error values of KindFetch.
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// Decoder turns bytes into a raster. *raster.Registry implements it.
type Decoder interface {
	Decode(data []byte, claimed string) (*raster.Image, error)
}

// Service wires a Fetcher and a Decoder to the hash engine.
type Service struct {
	fetcher  Fetcher
	decoder  Decoder
	defaults Defaults
	log      logrus.FieldLogger
}

// Option configures a Service.
type Option func(*Service)

// WithDefaults overrides the values used for omitted request fields.
func WithDefaults(d Defaults) Option {
	return func(s *Service) { s.defaults = d }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.log = l }
}

// New creates a Service.
func New(f Fetcher, d Decoder, opts ...Option) *Service {
	s := &Service{
		fetcher:  f,
		decoder:  d,
		defaults: StandardDefaults,
		log:      discardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle runs one request. Validation failures return before the fetch.
// No step is retried; the first error is returned and no partial hash is
// produced.
func (s *Service) Handle(ctx context.Context, req Request) (*Response, error) {
	params, err := s.defaults.Validate(req)
	if err != nil {
		s.log.WithError(err).WithField("path", req.Path).Warn("rejected request")
		return nil, err
	}
	log := s.log.WithFields(logrus.Fields{
		"path":      params.Path,
		"algorithm": params.Algorithm.String(),
		"hash_size": params.HashSize,
	})
	log.Debug("handling a request")

	start := time.Now()
	data, err := s.fetcher.Fetch(ctx, params.Path)
	if err != nil {
		err = classifyFetch(params.Path, err)
		log.WithError(err).Error("failed to retrieve object")
		return nil, err
	}
	log = log.WithField("digest", digest.Sum(data))
	log.WithField("bytes", len(data)).Debug("object retrieved")

	resp, err := HashBytes(s.decoder, data, params.Algorithm, params.HashSize)
	if err != nil {
		log.WithError(err).Error("failed to hash object")
		return nil, err
	}
	resp.TimeElapsed = time.Since(start).Seconds()

	log.WithFields(logrus.Fields{
		"width":   resp.ImageSize[0],
		"height":  resp.ImageSize[1],
		"elapsed": resp.TimeElapsed,
	}).Info("hashed object")
	return resp, nil
}

// HashBytes is the pure pipeline: decode, reduce, hash, encode. It touches
// no shared state and performs no I/O. TimeElapsed covers decode and hash.
func HashBytes(d Decoder, data []byte, alg phash.Algorithm, size int) (*Response, error) {
	if !alg.Valid() {
		return nil, apperr.InvalidRequest("invalid algorithm %d", int(alg))
	}
	if !phash.ValidSize(size) {
		return nil, &apperr.Error{Kind: apperr.KindInvalidRequest, Msg: "hash_size",
			Err: phash.ErrUnsupportedSize{Size: size}}
	}

	start := time.Now()
	img, err := d.Decode(data, "")
	if err != nil {
		return nil, err
	}
	h, err := phash.Compute(img.Pix, alg, size)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindDecode, Msg: img.Format, Err: err}
	}
	return &Response{
		HashBase64:  h.Base64(),
		Algorithm:   alg,
		HashSize:    size,
		ImageSize:   [2]uint32{uint32(img.Width()), uint32(img.Height())},
		TimeElapsed: time.Since(start).Seconds(),
	}, nil
}

// classifyFetch passes store errors through unchanged and files anything
// else (cancellation, deadline, unclassified transport failures) as Network.
func classifyFetch(path string, err error) error {
	var e *apperr.Error
	if errors.As(err, &e) && e.Kind == apperr.KindFetch {
		return err
	}
	return apperr.Fetch(apperr.FetchNetwork, path, err)
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
