package repository

import (
	"context"

	"recordstore/internal/records/domain/model"
)

// ChangeLog persists the recent change events of a collection so clients can
// replay what they missed. Append returns the resume token assigned to the
// event; Replay returns events strictly after the given token (or the oldest
// retained events when the token is empty).
type ChangeLog interface {
	Append(ctx context.Context, event model.ChangeEvent) (string, error)
	Replay(ctx context.Context, ref model.CollectionRef, sinceToken string, limit int) ([]model.ChangeEvent, error)
}
