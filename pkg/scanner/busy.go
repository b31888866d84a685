package scanner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jasonzFong/aura-editor/pkg/storage"
)

// busyGuard holds the persisted scanning flag for one user. It is acquired
// before the first oracle call and must be released with a deferred call so
// the flag clears on every exit path, panics included.
type busyGuard struct {
	ctx    context.Context
	store  storage.UserStore
	userID string
	logger *slog.Logger
}

func acquireBusy(ctx context.Context, store storage.UserStore, userID string, logger *slog.Logger) (*busyGuard, error) {
	if err := store.SetScanning(ctx, userID, true); err != nil {
		return nil, fmt.Errorf("setting scan flag: %w", err)
	}
	return &busyGuard{
		ctx:    context.WithoutCancel(ctx),
		store:  store,
		userID: userID,
		logger: logger,
	}, nil
}

func (g *busyGuard) release() {
	if err := g.store.SetScanning(g.ctx, g.userID, false); err != nil {
		g.logger.Error("scanner: failed to clear scan flag", "user_id", g.userID, "error", err)
	}
}
