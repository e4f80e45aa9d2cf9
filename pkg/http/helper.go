package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"roomdesk/pkg/config"
	apperrors "roomdesk/pkg/errors"
)

const DateLayout = "2006-01-02"

// ExtractDate reads the required "date" query parameter in YYYY-MM-DD form.
func ExtractDate(r *http.Request) (string, error) {
	date := r.URL.Query().Get("date")
	if date == "" {
		return "", apperrors.InvalidInput("date query parameter is required")
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return "", apperrors.InvalidInput("invalid date parameter, expected YYYY-MM-DD: " + date)
	}
	return date, nil
}

// ExtractLimit reads an optional "limit" query parameter clamped to the
// contact search bounds.
func ExtractLimit(r *http.Request) (int, error) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}
	return config.NormalizeContactLimit(limit), nil
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return apperrors.InvalidInput("Invalid JSON body: " + err.Error())
	}
	return nil
}
