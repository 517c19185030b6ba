package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrTransport indicates the catalog API could not be reached (network down, timeout)
	ErrTransport = errors.New("catalog API is unreachable")

	// ErrProtocol indicates the catalog API answered with a non-2xx status or an unreadable body
	ErrProtocol = errors.New("catalog API returned an invalid response")

	// ErrMovieNotFound indicates no persisted movie has the requested identifier
	ErrMovieNotFound = errors.New("movie not found")

	// ErrMalformedStoredData indicates a persisted value could not be decoded.
	// The mapper swallows it and substitutes sentinel values.
	ErrMalformedStoredData = errors.New("malformed stored data")

	// ErrMissingAPIKey indicates the catalog API key is not configured
	ErrMissingAPIKey = errors.New("missing TMDB API key")
)

// User-facing messages carried by Failure states
const (
	MsgLoadMoviesFailed = "Error loading movies"
	MsgNoSuchMovie      = "Error no such movie"
)
