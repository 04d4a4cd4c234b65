package raster

import (
	"errors"
	"fmt"
	"strings"
)

var errEmptyImage = errors.New("image has zero width or height")

type errTooLarge struct {
	w, h, limit int
}

func (e errTooLarge) Error() string {
	return fmt.Sprintf("image %dx%d exceeds the %d pixel limit", e.w, e.h, e.limit)
}

func joinFormats(f []string) string {
	if len(f) == 0 {
		return "none"
	}
	return strings.Join(f, ", ")
}
