package loader

import "errors"

var (
	// ErrInvalidSource is returned when a catalog source cannot be interpreted.
	ErrInvalidSource = errors.New("invalid catalog source")
	// ErrNoObjectStore is returned when an s3:// source is used without an S3 client.
	ErrNoObjectStore = errors.New("no S3 client configured for s3:// catalog source")
)
