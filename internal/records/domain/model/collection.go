package model

import (
	"fmt"
	"time"
)

// CollectionRef identifies one collection container: (projectId, name).
type CollectionRef struct {
	ProjectID string
	Name      string
}

// NewCollectionRef builds a reference to the named collection of a project.
func NewCollectionRef(projectID, name string) CollectionRef {
	return CollectionRef{ProjectID: projectID, Name: name}
}

// ResourceKey is the identity the write serializer locks on and the change
// feed publishes under.
func (c CollectionRef) ResourceKey() string {
	return fmt.Sprintf("projects/%s/collections/%s", c.ProjectID, c.Name)
}

func (c CollectionRef) String() string {
	return c.ResourceKey()
}

// ValidCollectionName reports whether name is acceptable as a collection name.
// The same charset as record ids applies.
func ValidCollectionName(name string) bool {
	return ValidID(name)
}

// CollectionInfo is the metadata entry a project keeps per known collection.
type CollectionInfo struct {
	Name      string    `bson:"name" json:"name"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
