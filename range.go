package bdispatch

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

var rangeExpr = regexp.MustCompile(`^bytes=(\d*)-(\d*)$`)

// byteRange is a single "bytes=<first>-<last>" range. Empty bounds are -1.
type byteRange struct {
	first, last int64
}

// parseRange reads a Range header. Anything that is not exactly one byte range is ignored, as are
// bounds too large to represent.
func parseRange(s string) (byteRange, bool) {
	m := rangeExpr.FindStringSubmatch(s)
	if m == nil {
		return byteRange{}, false
	}

	first, ok := parseBound(m[1])
	if !ok {
		return byteRange{}, false
	}

	last, ok := parseBound(m[2])
	if !ok {
		return byteRange{}, false
	}

	return byteRange{first, last}, true
}

func parseBound(s string) (int64, bool) {
	if s == "" {
		return -1, true
	}

	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

// resolve turns the range into inclusive offsets for a resource of the given size. A suffix range
// selects the last bytes, the last offset is clamped to the end of the resource.
func (br byteRange) resolve(size int64) (start, end int64, err error) {
	start, end = 0, size-1

	switch {
	case br.first < 0 && br.last < 0:
		return 0, 0, NewError(CodeRequestedRangeNotSatisfiable, errors.New("range without bounds"))
	case br.first < 0:
		start = max(size-br.last, 0)
	default:
		start = br.first
		if br.last >= 0 {
			end = min(br.last, size-1)
		}
	}

	if start > end {
		return 0, 0, NewError(CodeRequestedRangeNotSatisfiable,
			errors.Newf("range %d-%d outside of %d bytes", start, end, size))
	}

	return start, end, nil
}

// ifRange reports whether the If-Range precondition holds. A quoted value is an entity tag that must
// match, anything else is a date that must not be older than the resource.
func ifRange(v, etag string, modTime time.Time) bool {
	if v == "" {
		return true
	}

	if strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		return v == etag
	}

	t, err := http.ParseTime(v)
	if err != nil {
		return false
	}

	return !modTime.After(t)
}
