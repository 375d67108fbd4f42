package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Package storage contains content-store client abstractions. A content
// store accepts a byte blob and returns a content identifier (CID); it owns
// blob persistence and CID assignment. Implementations must stream, never
// buffer to local disk.

// FailureReason classifies why an upload was refused or lost.
type FailureReason string

const (
	ReasonUnreachable FailureReason = "store_unreachable"
	ReasonRejected    FailureReason = "payload_rejected"
	ReasonTooLarge    FailureReason = "payload_too_large"
	ReasonInternal    FailureReason = "internal"
)

// UploadError is the typed failure surfaced by Upload. Failures are never
// silently swallowed; the reason code travels with the wrapped cause.
type UploadError struct {
	Reason FailureReason
	Err    error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed (%s): %v", e.Reason, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// AsUploadError unwraps err into an *UploadError if one is in the chain.
func AsUploadError(err error) (*UploadError, bool) {
	var ue *UploadError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// UploadResult carries the store-assigned identity of a freshly stored blob.
type UploadResult struct {
	CID           string `json:"cid"`
	FileName      string `json:"fileName"`
	FileSizeBytes int64  `json:"fileSizeBytes"`
}

// StoredObject describes a blob already in the store. Used only by the
// legacy listing path; committed datasets are discovered via the ledger.
type StoredObject struct {
	CID           string `json:"cid"`
	FileName      string `json:"fileName"`
	FileSizeBytes int64  `json:"fileSizeInBytes"`
	CreatedAt     int64  `json:"createdAt"`
}

// Store is a content-store client. Upload is not idempotent at this layer:
// two uploads of identical bytes may or may not yield the same CID depending
// on the backend, and callers must not assume either.
type Store interface {
	// Upload durably writes the blob and returns its CID and size.
	Upload(ctx context.Context, r io.Reader, fileName string, size int64) (UploadResult, error)
	// List returns descriptors of stored blobs and the total count.
	// Read-only, no side effects.
	List(ctx context.Context) ([]StoredObject, int, error)
}
