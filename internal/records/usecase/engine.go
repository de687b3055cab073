package usecase

import (
	"context"
	"sync"
	"time"

	"recordstore/internal/records/domain/model"
	"recordstore/internal/records/domain/repository"
	"recordstore/internal/records/domain/service"
	"recordstore/internal/shared/eventbus"
	"recordstore/internal/shared/logger"
)

// Engine is the per-server context object holding every piece of core state:
// the storage engine, the project metadata repository, the write serializer,
// the collection registry cache, the event bus and the change log. One Engine
// exists per running server instance and is injected into every call; there
// is no package-level state.
type Engine struct {
	store     repository.ContainerStore
	projects  repository.ProjectRepository
	locker    *service.ResourceLocker
	bus       eventbus.EventBusInterface
	changeLog repository.ChangeLog
	logger    logger.Logger
	now       func() time.Time

	// registry cache: projectID → set of known collection names. Kept in
	// lockstep with the persisted project metadata on every
	// registration-affecting operation.
	regMu    sync.RWMutex
	registry map[string]map[string]struct{}
}

// EngineOption customizes an Engine at construction time.
type EngineOption func(*Engine)

// WithChangeLog attaches a persisted change log; mutations append to it and
// the changes operation replays from it.
func WithChangeLog(log repository.ChangeLog) EngineOption {
	return func(e *Engine) { e.changeLog = log }
}

// WithClock overrides the engine clock. Tests use this to get deterministic
// timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine wires an engine from its collaborators.
func NewEngine(
	store repository.ContainerStore,
	projects repository.ProjectRepository,
	locker *service.ResourceLocker,
	bus eventbus.EventBusInterface,
	log logger.Logger,
	opts ...EngineOption,
) *Engine {
	e := &Engine{
		store:    store,
		projects: projects,
		locker:   locker,
		bus:      bus,
		logger:   log.WithComponent("engine"),
		now:      time.Now,
		registry: make(map[string]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// timestamp returns the engine's current wall clock reading.
func (e *Engine) timestamp() time.Time {
	return e.now()
}

// publishChange appends the event to the change log (when configured) and
// fans it out on the bus. Feed delivery is best-effort: a failure is logged
// and never fails the mutation that produced the event.
func (e *Engine) publishChange(ctx context.Context, event model.ChangeEvent) {
	if e.changeLog != nil {
		token, err := e.changeLog.Append(ctx, event)
		if err != nil {
			e.logger.Error("Failed to append change event", "resource", event.ResourceKey(), "error", err)
		} else {
			event.ResumeToken = token
		}
	}
	if e.bus != nil {
		e.bus.PublishAndForget(ctx, eventbus.NewBasicEventWithSource(busEventType(event.Type), event, "engine"))
	}
}

func busEventType(t model.ChangeType) string {
	switch t {
	case model.ChangeRecordCreated:
		return eventbus.EventTypeRecordCreated
	case model.ChangeRecordUpdated:
		return eventbus.EventTypeRecordUpdated
	case model.ChangeRecordDeleted:
		return eventbus.EventTypeRecordDeleted
	case model.ChangeCollectionCreated:
		return eventbus.EventTypeCollectionCreated
	case model.ChangeCollectionDeleted:
		return eventbus.EventTypeCollectionDeleted
	default:
		return string(t)
	}
}
