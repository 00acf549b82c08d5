package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// ErrNotFound is returned when the asset does not exist or its resolved
	// path escapes the content root.
	ErrNotFound = errors.New("media: asset not found")

	// ErrMalformedRange is returned for a Range header this server cannot
	// parse (missing start, multiple ranges, end before start).
	ErrMalformedRange = errors.New("media: malformed range header")

	// ErrUnsatisfiableRange is returned when the requested start lies at or
	// beyond the end of the asset.
	ErrUnsatisfiableRange = errors.New("media: range not satisfiable")
)

// Root resolves two-level asset paths (container/name) against a content
// root directory and confines every resolved path to it.
type Root struct {
	dir string
}

// NewRoot returns a Root for the given directory. The directory is
// canonicalized once so later prefix checks compare like with like.
func NewRoot(dir string) (*Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("media: resolving root %q: %w", dir, err)
	}
	return &Root{dir: abs}, nil
}

// Resolve maps container/name onto a filesystem path under the root and
// stats it. Paths that traverse outside the root and missing files both
// report ErrNotFound; the caller cannot distinguish the two, by contract.
func (r *Root) Resolve(container, name string) (path string, size int64, err error) {
	path = filepath.Join(r.dir, filepath.Clean("/"+container), filepath.Clean("/"+name))
	if path != r.dir && !strings.HasPrefix(path, r.dir+string(filepath.Separator)) {
		return "", 0, ErrNotFound
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", 0, ErrNotFound
	}
	return path, info.Size(), nil
}

// ByteRange is one contiguous inclusive byte span of an asset.
type ByteRange struct {
	Start int64
	End   int64
}

// Length returns the number of bytes the range covers.
func (br ByteRange) Length() int64 {
	return br.End - br.Start + 1
}

// ParseRange parses a single-range header of the form "bytes=<start>-[<end>]"
// against an asset of the given size. A missing end defaults to size-1 and an
// end beyond the asset is clamped to it. A missing start is malformed rather
// than a suffix range; multi-range requests are not supported.
func ParseRange(header string, size int64) (ByteRange, error) {
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok || strings.Contains(spec, ",") {
		return ByteRange{}, ErrMalformedRange
	}

	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok {
		return ByteRange{}, ErrMalformedRange
	}

	start, err := strconv.ParseInt(strings.TrimSpace(startStr), 10, 64)
	if err != nil || start < 0 {
		return ByteRange{}, ErrMalformedRange
	}
	if start >= size {
		return ByteRange{}, ErrUnsatisfiableRange
	}

	end := size - 1
	if s := strings.TrimSpace(endStr); s != "" {
		end, err = strconv.ParseInt(s, 10, 64)
		if err != nil || end < start {
			return ByteRange{}, ErrMalformedRange
		}
		if end > size-1 {
			end = size - 1
		}
	}

	return ByteRange{Start: start, End: end}, nil
}
