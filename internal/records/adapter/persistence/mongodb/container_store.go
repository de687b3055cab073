package mongodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"recordstore/internal/records/domain/model"
	"recordstore/internal/records/domain/repository"
	"recordstore/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const containersCollection = "containers"

// containerDoc is the MongoDB shape of one collection container: the full
// record map JSON-encoded as a single unit. Records are schema-less, so raw
// BSON maps are unsafe (field names with dots or dollars); the container is
// stored as bytes instead.
type containerDoc struct {
	Name      string    `bson:"_id"`
	Records   []byte    `bson:"records"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// ContainerStore implements the storage engine on MongoDB: one database per
// project (name-prefixed), one `containers` collection, one document per
// collection name.
type ContainerStore struct {
	client   *mongo.Client
	dbPrefix string
	logger   logger.Logger
}

// NewContainerStore creates a MongoDB-backed container store. dbPrefix
// namespaces the per-project databases (e.g. "rs_" → "rs_<projectID>").
func NewContainerStore(client *mongo.Client, dbPrefix string, log logger.Logger) *ContainerStore {
	return &ContainerStore{
		client:   client,
		dbPrefix: dbPrefix,
		logger:   log.WithComponent("container_store"),
	}
}

var _ repository.ContainerStore = (*ContainerStore)(nil)

func (s *ContainerStore) containers(projectID string) *mongo.Collection {
	return s.client.Database(s.dbPrefix + projectID).Collection(containersCollection)
}

// Load returns the persisted record map, or an empty map if the collection
// has never been written.
func (s *ContainerStore) Load(ctx context.Context, ref model.CollectionRef) (model.RecordMap, error) {
	var doc containerDoc
	err := s.containers(ref.ProjectID).FindOne(ctx, bson.M{"_id": ref.Name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.RecordMap{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load container %s: %w", ref, err)
	}

	records := model.RecordMap{}
	if len(doc.Records) > 0 {
		if err := json.Unmarshal(doc.Records, &records); err != nil {
			return nil, fmt.Errorf("corrupt container %s: %w", ref, err)
		}
	}
	return records, nil
}

// Persist replaces the entire stored content of the collection in one upsert.
func (s *ContainerStore) Persist(ctx context.Context, ref model.CollectionRef, records model.RecordMap) error {
	if records == nil {
		records = model.RecordMap{}
	}
	encoded, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode container %s: %w", ref, err)
	}

	now := time.Now().UTC()
	_, err = s.containers(ref.ProjectID).UpdateOne(ctx,
		bson.M{"_id": ref.Name},
		bson.M{
			"$set":         bson.M{"records": encoded, "updatedAt": now},
			"$setOnInsert": bson.M{"createdAt": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to persist container %s: %w", ref, err)
	}
	return nil
}

// Exists reports whether a container has ever been written for ref.
func (s *ContainerStore) Exists(ctx context.Context, ref model.CollectionRef) (bool, error) {
	err := s.containers(ref.ProjectID).FindOne(ctx,
		bson.M{"_id": ref.Name},
		options.FindOne().SetProjection(bson.M{"_id": 1}),
	).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to probe container %s: %w", ref, err)
	}
	return true, nil
}

// Drop deletes the container. Dropping an absent container is a no-op.
func (s *ContainerStore) Drop(ctx context.Context, ref model.CollectionRef) error {
	_, err := s.containers(ref.ProjectID).DeleteOne(ctx, bson.M{"_id": ref.Name})
	if err != nil {
		return fmt.Errorf("failed to drop container %s: %w", ref, err)
	}
	return nil
}

// Names lists the container names persisted for a project.
func (s *ContainerStore) Names(ctx context.Context, projectID string) ([]string, error) {
	cursor, err := s.containers(projectID).Find(ctx,
		bson.M{},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list containers for project %s: %w", projectID, err)
	}
	defer cursor.Close(ctx)

	var names []string
	for cursor.Next(ctx) {
		var doc struct {
			Name string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode container name: %w", err)
		}
		names = append(names, doc.Name)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate containers for project %s: %w", projectID, err)
	}
	return names, nil
}

// DropProject removes the whole per-project database and every container in
// it.
func (s *ContainerStore) DropProject(ctx context.Context, projectID string) error {
	if err := s.client.Database(s.dbPrefix + projectID).Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop project database %s: %w", projectID, err)
	}
	s.logger.Info("Project database dropped", "projectID", projectID)
	return nil
}
