package api

import (
	"net/http"
	"strconv"
	"time"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// parsePagination extracts the before cursor and limit from query parameters.
// limit defaults to 50 and is silently capped at 200. before is an RFC 3339
// timestamp; a missing before starts at the newest entry.
func parsePagination(r *http.Request) (before time.Time, limit int, err error) {
	limit = defaultLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	if v := r.URL.Query().Get("before"); v != "" {
		before, err = time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, 0, err
		}
	}
	return before, limit, nil
}

// encodeCursor formats the created_at of the last item on a page.
func encodeCursor(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
