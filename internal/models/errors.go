package models

import "errors"

var (
	ErrNetwork          = errors.New("network failure")
	ErrNoResults        = errors.New("no results")
	ErrPermissionDenied = errors.New("permission denied")
	ErrStorageCorrupt   = errors.New("storage corrupt")

	// ErrGeocodeFailed and ErrForecastFailed tag which endpoint failed.
	ErrGeocodeFailed  = errors.New("geo_failed")
	ErrForecastFailed = errors.New("forecast_failed")
)

type FriendlyError struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (e FriendlyError) Error() string {
	return e.Title + " " + e.Message
}

// FriendlyErrorFrom turns any failure into copy a child can read.
func FriendlyErrorFrom(err error) FriendlyError {
	if errors.Is(err, ErrGeocodeFailed) || errors.Is(err, ErrNoResults) {
		return FriendlyError{Title: "Oops!", Message: "I can't find that city. Try another!"}
	}
	return FriendlyError{Title: "Oops!", Message: "Clouds got in the way. Try again!"}
}
