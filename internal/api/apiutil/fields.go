package apiutil

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

func ParseNonNegativeInt64Field(raw string, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%s must be 0 or greater", field)
	}
	return value, nil
}

func ParsePositiveInt64Field(raw string, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", field)
	}
	return value, nil
}

// PathID parses a positive integer path value, writing a 400 on failure.
func PathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := ParsePositiveInt64Field(r.PathValue(name), name)
	if err != nil {
		WriteError(w, r, BadRequest(err.Error()))
		return 0, false
	}
	return id, true
}

// ParseTime accepts RFC 3339, a bare date, or a minute-precision time. Inputs
// without an offset are read as UTC.
func ParseTime(raw string, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", field)
	}

	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.UTC(), nil
	}
	for _, layout := range []string{dateLayout, "2006-01-02T15:04", "2006-01-02 15:04"} {
		parsed, err := time.ParseInLocation(layout, raw, time.UTC)
		if err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%s must be a valid date", field)
}

// DateRange reads optional from/to query values. Missing bounds become open.
func DateRange(r *http.Request) (time.Time, time.Time, error) {
	from := time.Unix(0, 0).UTC()
	to := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

	query := r.URL.Query()
	if raw := strings.TrimSpace(query.Get("from")); raw != "" {
		parsed, err := ParseTime(raw, "from")
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	if raw := strings.TrimSpace(query.Get("to")); raw != "" {
		parsed, err := ParseTime(raw, "to")
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if len(raw) == len(dateLayout) {
			parsed = parsed.Add(24*time.Hour - time.Nanosecond)
		}
		to = parsed
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to must not be before from")
	}
	return from, to, nil
}
