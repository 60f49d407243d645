package api

import (
	"net/http"
	"strconv"
	"time"
)

// jsonTime marshals as RFC 3339 and keeps zero values out of responses
// when used behind optTime.
type jsonTime time.Time

func (t jsonTime) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(time.Time(t).UTC().Format(time.RFC3339))), nil
}

func optTime(t *time.Time) *jsonTime {
	if t == nil {
		return nil
	}
	jt := jsonTime(*t)
	return &jt
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// pageParams reads ?page and ?limit, clamping both to sane bounds.
func pageParams(r *http.Request) (page, limit int) {
	page, limit = 1, defaultPageLimit
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}
