package model

import "time"

// Project is the persisted metadata entry owning a set of collections.
// Lifecycle lives in the metadata database, not in per-project containers.
type Project struct {
	ID          string           `bson:"_id" json:"id"`
	Name        string           `bson:"name" json:"name"`
	OwnerID     string           `bson:"ownerId" json:"ownerId"`
	Collections []CollectionInfo `bson:"collections" json:"collections"`
	CreatedAt   time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// HasCollection reports whether the project's metadata lists the collection.
func (p *Project) HasCollection(name string) bool {
	for _, c := range p.Collections {
		if c.Name == name {
			return true
		}
	}
	return false
}

// CollectionNames returns the names the project's metadata lists, in order.
func (p *Project) CollectionNames() []string {
	names := make([]string, 0, len(p.Collections))
	for _, c := range p.Collections {
		names = append(names, c.Name)
	}
	return names
}
