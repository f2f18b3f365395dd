package secondary

import (
	"context"
	"io"
)

// PhotoStore defines the secondary port for the placement photo upload target.
type PhotoStore interface {
	// Upload stores the photo and returns where it can be found.
	Upload(ctx context.Context, photo PhotoUpload) (*PhotoReceipt, error)
}

// PhotoUpload is a single placement photo on its way to storage.
type PhotoUpload struct {
	SessionID string
	Filename  string
	Content   io.Reader
}

// PhotoReceipt describes a stored photo.
type PhotoReceipt struct {
	Location string // URL or path, depending on the store
}
