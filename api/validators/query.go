package validators

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/basket-activity/pkg/errors"
)

const dateLayout = "2006-01-02"

// ParseQueryUint returns nil when key is absent.
func ParseQueryUint(r *http.Request, key string) (*uint, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := ParseUint(raw, key)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// ParseUint parses a positive identifier supplied as a path or query value.
func ParseUint(raw, field string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 0)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeBadRequest, "parameter must be numeric").WithDetails(map[string]any{"field": field})
	}
	if value == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{field: "must be greater than 0"})
	}
	return uint(value), nil
}

// ParseQueryDate accepts an RFC 3339 timestamp or a YYYY-MM-DD date. A bare date
// maps to the start of that day, or to its last instant when endOfDay is set.
func ParseQueryDate(r *http.Request, key string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts, nil
	}
	day, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "invalid date").
			WithDetails(map[string]any{"field": key, "expected": "YYYY-MM-DD or RFC 3339"})
	}
	if endOfDay {
		day = day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &day, nil
}
