package repository

import (
	"context"

	"recordstore/internal/records/domain/model"
)

// ContainerStore is the storage engine boundary: it reads and writes the full
// record map of one collection as a single persisted unit. Write serialization
// is enforced by the caller (the engine holds the resource lock around
// Load+Persist); the store itself only guarantees that one Persist call
// replaces the whole container.
//
// Whole-container rewrite is a deliberate fidelity choice and a known
// scalability ceiling; an incremental implementation can substitute behind
// this interface without touching callers.
type ContainerStore interface {
	// Load returns the persisted record map, or an empty map if the
	// collection has never been written.
	Load(ctx context.Context, ref model.CollectionRef) (model.RecordMap, error)

	// Persist replaces the entire stored content of the collection.
	Persist(ctx context.Context, ref model.CollectionRef, records model.RecordMap) error

	// Exists reports whether a container has ever been written for ref.
	Exists(ctx context.Context, ref model.CollectionRef) (bool, error)

	// Drop deletes the container. Dropping an absent container is a no-op.
	Drop(ctx context.Context, ref model.CollectionRef) error

	// Names lists the container names persisted for a project.
	Names(ctx context.Context, projectID string) ([]string, error)

	// DropProject removes every container of a project.
	DropProject(ctx context.Context, projectID string) error
}
