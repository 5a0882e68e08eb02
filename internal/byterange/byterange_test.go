package byterange

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		size    int64
		want    Range
		wantErr error
	}{
		{"full range explicit", "bytes=0-999", 1000, Range{0, 999, 1000}, nil},
		{"open ended defaults to size-1", "bytes=100-", 1000, Range{100, 999, 1000}, nil},
		{"interior span", "bytes=100-199", 1000, Range{100, 199, 1000}, nil},
		{"single byte", "bytes=0-0", 1, Range{0, 0, 1}, nil},
		{"last byte", "bytes=999-999", 1000, Range{999, 999, 1000}, nil},
		{"whitespace tolerated", " bytes=5-9 ", 100, Range{5, 9, 100}, nil},

		{"start at size", "bytes=1000-", 1000, Range{}, ErrUnsatisfiable},
		{"start past size", "bytes=1500-1600", 1000, Range{}, ErrUnsatisfiable},
		{"end past size", "bytes=0-1000", 1000, Range{}, ErrUnsatisfiable},
		{"start after end", "bytes=200-100", 1000, Range{}, ErrUnsatisfiable},
		{"zero length resource", "bytes=0-", 0, Range{}, ErrUnsatisfiable},
		{"zero length any range", "bytes=0-0", 0, Range{}, ErrUnsatisfiable},

		{"missing prefix", "0-100", 1000, Range{}, ErrMalformed},
		{"wrong unit", "chunks=0-100", 1000, Range{}, ErrMalformed},
		{"empty spec", "bytes=", 1000, Range{}, ErrMalformed},
		{"suffix form rejected", "bytes=-500", 1000, Range{}, ErrMalformed},
		{"no dash", "bytes=100", 1000, Range{}, ErrMalformed},
		{"multi range rejected", "bytes=0-10,20-30", 1000, Range{}, ErrMalformed},
		{"non numeric start", "bytes=abc-", 1000, Range{}, ErrMalformed},
		{"non numeric end", "bytes=0-xyz", 1000, Range{}, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.header, tt.size)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse(%q, %d) error = %v, want %v", tt.header, tt.size, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("Parse(%q, %d) = %+v, want %+v", tt.header, tt.size, got, tt.want)
			}
		})
	}
}

func TestRangeHelpers(t *testing.T) {
	r := Range{Start: 100, End: 199, Size: 1000}
	if got := r.Length(); got != 100 {
		t.Errorf("Length() = %d, want 100", got)
	}
	if got := r.ContentRange(); got != "bytes 100-199/1000" {
		t.Errorf("ContentRange() = %q, want %q", got, "bytes 100-199/1000")
	}
}
