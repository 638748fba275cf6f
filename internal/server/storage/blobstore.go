// Package storage abstracts the audio blob store behind a small interface so
// services never talk to S3 directly.
package storage

import (
	"context"
	"time"
)

// BlobStore is the persistence contract for uploaded audio. PublicURL is the
// durable reference persisted with an entry; SignedURL is a short-lived link
// used when the server itself needs to fetch the bytes back.
type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) error
	PublicURL(key string) string
	SignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}
