package session

import (
	"context"

	"github.com/rbright/voicecmd/internal/registry"
	"github.com/rbright/voicecmd/internal/syncer"
)

// Syncer pushes one full registry snapshot to the recognition host.
type Syncer interface {
	Sync(context.Context, registry.Snapshot) (syncer.BatchStats, error)
}

// SyncFunc adapts a function to the Syncer interface.
type SyncFunc func(context.Context, registry.Snapshot) (syncer.BatchStats, error)

func (f SyncFunc) Sync(ctx context.Context, snap registry.Snapshot) (syncer.BatchStats, error) {
	return f(ctx, snap)
}
