package port

import (
	"context"
	"io"
)

// ImageStore holds externally stored item images addressed by opaque
// references.
type ImageStore interface {
	// Save stores the uploaded content and returns its reference.
	Save(ctx context.Context, filename string, r io.Reader) (string, error)

	// Release deletes the stored content behind ref. Callers treat
	// failures as best-effort: log and move on.
	Release(ctx context.Context, ref string) error
}
