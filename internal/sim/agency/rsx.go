package agency

import (
	"context"
	"fmt"
)

// StatusClient is an optional external capability for querying field
// equipment status. The engine never requires it; hosts may wire a real
// implementation.
type StatusClient interface {
	Authenticate(ctx context.Context) error
	FetchStatus(ctx context.Context, id string) (string, error)
}

// NoopStatusClient is the default StatusClient: every call succeeds and
// reports nothing.
type NoopStatusClient struct{}

func (NoopStatusClient) Authenticate(context.Context) error { return nil }

func (NoopStatusClient) FetchStatus(context.Context, string) (string, error) {
	return "", nil
}

// AssetFieldStatus asks the wired status capability about one asset's
// field equipment. Returns ErrNotFound for unknown assets. The registry
// lookup makes this a single-writer call; concurrent hosts check
// existence through a StateQuery and use FieldStatus instead.
func (e *Engine) AssetFieldStatus(ctx context.Context, assetID int) (string, error) {
	a := e.assets[assetID]
	if a == nil {
		return "", fmt.Errorf("asset %d: %w", assetID, ErrNotFound)
	}
	return e.FieldStatus(ctx, assetID)
}

// FieldStatus performs the external status fetch without touching any
// registry, so it is safe to call while Run is stepping; the status
// client is fixed before the loop starts.
func (e *Engine) FieldStatus(ctx context.Context, assetID int) (string, error) {
	if err := e.status.Authenticate(ctx); err != nil {
		return "", fmt.Errorf("status auth: %w", err)
	}
	return e.status.FetchStatus(ctx, fmt.Sprintf("asset:%d", assetID))
}
