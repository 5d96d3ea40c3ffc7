// Package timestamp formats the raw timestamps found in Docker metadata.
package timestamp

import (
	"regexp"
	"time"

	"github.com/cockroachdb/errors"
)

var isoPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d{1,9})?`)

const (
	parseLayout = "2006-01-02T15:04:05.999999999"
	microLayout = "2006-01-02T15:04:05.000000"
	secLayout   = "2006-01-02T15:04:05"
)

// Format extracts the ISO-8601 prefix of raw and returns it with fractional
// seconds truncated to microseconds. Anything after the fraction (zone
// designator, free text) is dropped. A zero fraction is omitted.
func Format(raw string) (string, error) {
	prefix := isoPrefix.FindString(raw)
	if prefix == "" {
		return "", errors.Newf("invalid timestamp %q", raw)
	}

	t, err := time.Parse(parseLayout, prefix)
	if err != nil {
		return "", errors.Wrapf(err, "invalid timestamp %q", raw)
	}

	t = t.Truncate(time.Microsecond)
	if t.Nanosecond() == 0 {
		return t.Format(secLayout), nil
	}
	return t.Format(microLayout), nil
}
