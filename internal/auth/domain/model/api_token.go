package model

import "time"

// APIToken is a project-scoped opaque credential carrying a fixed tier. Only
// the SHA-256 of the secret is stored; the secret itself is returned once at
// creation time.
type APIToken struct {
	ID         string    `bson:"_id" json:"id"`
	ProjectID  string    `bson:"projectId" json:"projectId"`
	Name       string    `bson:"name" json:"name"`
	Tier       string    `bson:"tier" json:"tier"`
	SecretHash string    `bson:"secretHash" json:"-"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	LastUsedAt time.Time `bson:"lastUsedAt,omitempty" json:"lastUsedAt,omitempty"`
}
