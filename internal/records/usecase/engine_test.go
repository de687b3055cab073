package usecase_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"recordstore/internal/records/domain/model"
	"recordstore/internal/records/domain/service"
	. "recordstore/internal/records/usecase"
	"recordstore/internal/shared/eventbus"
	"recordstore/internal/shared/logger"
)

// memStore is an in-memory ContainerStore. Optional hook fields inject
// failures per call.
type memStore struct {
	mu         sync.Mutex
	containers map[string]model.RecordMap

	LoadFn    func(ref model.CollectionRef) (model.RecordMap, error)
	PersistFn func(ref model.CollectionRef, records model.RecordMap) error
}

func newMemStore() *memStore {
	return &memStore{containers: make(map[string]model.RecordMap)}
}

func (s *memStore) Load(_ context.Context, ref model.CollectionRef) (model.RecordMap, error) {
	if s.LoadFn != nil {
		return s.LoadFn(ref)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.containers[ref.ResourceKey()].Clone(), nil
}

func (s *memStore) Persist(_ context.Context, ref model.CollectionRef, records model.RecordMap) error {
	if s.PersistFn != nil {
		return s.PersistFn(ref, records)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.containers[ref.ResourceKey()] = records.Clone()
	return nil
}

func (s *memStore) Exists(_ context.Context, ref model.CollectionRef) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.containers[ref.ResourceKey()]
	return ok, nil
}

func (s *memStore) Drop(_ context.Context, ref model.CollectionRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.containers, ref.ResourceKey())
	return nil
}

func (s *memStore) Names(_ context.Context, projectID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := fmt.Sprintf("projects/%s/collections/", projectID)
	names := []string{}
	for key := range s.containers {
		if strings.HasPrefix(key, prefix) {
			names = append(names, strings.TrimPrefix(key, prefix))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *memStore) DropProject(_ context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := fmt.Sprintf("projects/%s/collections/", projectID)
	for key := range s.containers {
		if strings.HasPrefix(key, prefix) {
			delete(s.containers, key)
		}
	}
	return nil
}

// memProjects is an in-memory ProjectRepository.
type memProjects struct {
	mu       sync.Mutex
	projects map[string]*model.Project
}

func newMemProjects() *memProjects {
	return &memProjects{projects: make(map[string]*model.Project)}
}

func (p *memProjects) CreateProject(_ context.Context, project *model.Project) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.projects[project.ID]; ok {
		return fmt.Errorf("project %q already exists", project.ID)
	}
	cp := *project
	p.projects[project.ID] = &cp
	return nil
}

func (p *memProjects) GetProject(_ context.Context, projectID string) (*model.Project, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	project, ok := p.projects[projectID]
	if !ok {
		return nil, fmt.Errorf("project %q not found", projectID)
	}
	cp := *project
	return &cp, nil
}

func (p *memProjects) ListProjectsByOwner(_ context.Context, ownerID string) ([]*model.Project, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := []*model.Project{}
	for _, project := range p.projects {
		if project.OwnerID == ownerID {
			cp := *project
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (p *memProjects) DeleteProject(_ context.Context, projectID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.projects, projectID)
	return nil
}

func (p *memProjects) AddCollection(_ context.Context, projectID string, info model.CollectionInfo) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	project, ok := p.projects[projectID]
	if !ok {
		return fmt.Errorf("project %q not found", projectID)
	}
	for i, existing := range project.Collections {
		if existing.Name == info.Name {
			project.Collections[i].UpdatedAt = info.UpdatedAt
			return nil
		}
	}
	project.Collections = append(project.Collections, info)
	return nil
}

func (p *memProjects) RemoveCollection(_ context.Context, projectID, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	project, ok := p.projects[projectID]
	if !ok {
		return fmt.Errorf("project %q not found", projectID)
	}
	kept := project.Collections[:0]
	for _, existing := range project.Collections {
		if existing.Name != name {
			kept = append(kept, existing)
		}
	}
	project.Collections = kept
	return nil
}

// memChangeLog records appended events per resource key with sequential
// tokens.
type memChangeLog struct {
	mu     sync.Mutex
	events map[string][]model.ChangeEvent
	seq    int
}

func newMemChangeLog() *memChangeLog {
	return &memChangeLog{events: make(map[string][]model.ChangeEvent)}
}

func (l *memChangeLog) Append(_ context.Context, event model.ChangeEvent) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	event.ResumeToken = fmt.Sprintf("%06d", l.seq)
	key := event.ResourceKey()
	l.events[key] = append(l.events[key], event)
	return event.ResumeToken, nil
}

func (l *memChangeLog) Replay(_ context.Context, ref model.CollectionRef, sinceToken string, limit int) ([]model.ChangeEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []model.ChangeEvent{}
	for _, event := range l.events[ref.ResourceKey()] {
		if sinceToken != "" && event.ResumeToken <= sinceToken {
			continue
		}
		out = append(out, event)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// testClock hands out strictly increasing timestamps so updatedAt always
// moves.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

type engineFixture struct {
	engine    *Engine
	store     *memStore
	projects  *memProjects
	changeLog *memChangeLog
	clock     *testClock
}

func newEngineFixture() *engineFixture {
	store := newMemStore()
	projects := newMemProjects()
	changeLog := newMemChangeLog()
	clock := newTestClock()

	engine := NewEngine(
		store,
		projects,
		service.NewResourceLocker(time.Second),
		eventbus.NewEventBus(logger.NewLogger()),
		logger.NewLogger(),
		WithChangeLog(changeLog),
		WithClock(clock.Now),
	)
	return &engineFixture{
		engine:    engine,
		store:     store,
		projects:  projects,
		changeLog: changeLog,
		clock:     clock,
	}
}

// seedProject registers a project so collection metadata sync has a target.
func (f *engineFixture) seedProject(projectID string) {
	f.projects.CreateProject(context.Background(), &model.Project{
		ID:      projectID,
		Name:    projectID,
		OwnerID: "owner1",
	})
}
