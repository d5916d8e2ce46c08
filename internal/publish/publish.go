package publish

import (
	"context"
	"errors"
)

// Sentinel failures at the publishing boundary.
var (
	ErrContainerFailed = errors.New("media container processing failed")
	ErrContainerStuck  = errors.New("media container not ready within poll budget")
	ErrNotPublishable  = errors.New("media reference not publishable")
)

// Publisher posts a finished, spec-compliant media reference and returns the
// platform post id. Callers validate the asset against its RenderSpec before
// handing it over.
type Publisher interface {
	Publish(ctx context.Context, contentType, mediaReference, caption string) (string, error)
}
