// Package fetcher retrieves survey exports from the Kobo API or the local filesystem.
package fetcher

import "context"

// Fetcher retrieves a survey export.
type Fetcher interface {
	// FetchText reads the whole export and returns it decoded to UTF-8.
	FetchText(ctx context.Context, location string) (string, error)
}
