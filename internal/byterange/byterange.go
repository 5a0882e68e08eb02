// Package byterange parses and validates HTTP Range headers of the
// form "bytes=<start>-[<end>]" against a known resource size.
package byterange

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMalformed means the header could not be parsed at all.
	ErrMalformed = errors.New("malformed range header")
	// ErrUnsatisfiable means the header parsed but no byte of the
	// resource satisfies it.
	ErrUnsatisfiable = errors.New("range not satisfiable")
)

// Range is an inclusive byte span within a resource of Size bytes.
// Invariant: 0 <= Start <= End < Size.
type Range struct {
	Start int64
	End   int64
	Size  int64
}

// Parse interprets a Range header against a resource of the given
// size. A missing end bound defaults to size-1. Multi-range and
// suffix ("bytes=-N") forms are rejected as malformed. Any range
// request against a zero-length resource is unsatisfiable.
func Parse(header string, size int64) (Range, error) {
	spec, ok := strings.CutPrefix(strings.TrimSpace(header), "bytes=")
	if !ok {
		return Range{}, ErrMalformed
	}
	spec = strings.TrimSpace(spec)
	if spec == "" || strings.Contains(spec, ",") {
		return Range{}, ErrMalformed
	}

	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok || startStr == "" {
		return Range{}, ErrMalformed
	}

	if size <= 0 {
		return Range{}, ErrUnsatisfiable
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil {
		return Range{}, ErrMalformed
	}

	end := size - 1
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil {
			return Range{}, ErrMalformed
		}
	}

	if start < 0 || start >= size || end >= size || start > end {
		return Range{}, ErrUnsatisfiable
	}
	return Range{Start: start, End: end, Size: size}, nil
}

// Length returns the number of bytes the range covers.
func (r Range) Length() int64 {
	return r.End - r.Start + 1
}

// ContentRange formats the Content-Range header value for the span.
func (r Range) ContentRange() string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, r.Size)
}
