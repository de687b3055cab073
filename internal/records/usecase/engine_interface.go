package usecase

import (
	"context"

	"recordstore/internal/records/domain/model"
)

// EngineInterface is the contract the HTTP adapter programs against. It
// mirrors every core operation of the engine so handlers can be tested with
// lightweight mocks.
type EngineInterface interface {
	// Projects
	CreateProject(ctx context.Context, projectID, name, ownerID string) (*model.Project, error)
	GetProject(ctx context.Context, projectID string) (*model.Project, error)
	ListProjects(ctx context.Context, ownerID string) ([]*model.Project, error)
	DeleteProject(ctx context.Context, projectID string) error

	// Collections
	CreateCollection(ctx context.Context, projectID, name string) error
	ListCollections(ctx context.Context, projectID string) ([]model.CollectionInfo, error)
	DeleteCollection(ctx context.Context, projectID, name string) error

	// Single records
	CreateRecord(ctx context.Context, projectID, collection string, data map[string]interface{}) (model.Record, error)
	GetRecord(ctx context.Context, projectID, collection, recordID string) (model.Record, error)
	FindRecord(ctx context.Context, projectID, collection, recordID string) (model.Record, error)
	UpdateRecord(ctx context.Context, projectID, collection, recordID string, patch map[string]interface{}) (model.Record, error)
	DeleteRecord(ctx context.Context, projectID, collection, recordID string) (bool, error)
	Increment(ctx context.Context, projectID, collection, recordID, field string, delta float64) (model.Record, error)

	// Queries
	QueryRecords(ctx context.Context, projectID, collection string, opts model.QueryOptions) (*model.QueryResult, error)
	SearchRecords(ctx context.Context, projectID, collection, term string, opts model.QueryOptions) (*model.QueryResult, error)
	CountRecords(ctx context.Context, projectID, collection string, filter model.Filter) (int, error)
	Keys(ctx context.Context, projectID, collection string) ([]string, error)
	Entries(ctx context.Context, projectID, collection string) ([]model.Entry, error)
	Size(ctx context.Context, projectID, collection string) (int, error)
	Changes(ctx context.Context, projectID, collection, sinceToken string, limit int) ([]model.ChangeEvent, error)

	// Batches
	BatchCreate(ctx context.Context, projectID, collection string, records []map[string]interface{}) (*model.BatchResult, error)
	BatchGet(ctx context.Context, projectID, collection string, ids []string) (*model.BatchResult, error)
	BatchUpdate(ctx context.Context, projectID, collection string, updates []model.BatchUpdate) (*model.BatchResult, error)
	BatchDelete(ctx context.Context, projectID, collection string, ids []string) (*model.BatchResult, error)
}

// compile-time conformance check
var _ EngineInterface = (*Engine)(nil)
