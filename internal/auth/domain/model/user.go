package model

import "time"

// User is a stored account. Grants maps project ids to tier strings; the
// project owner is granted "full" at project creation.
type User struct {
	ID           string            `bson:"_id" json:"id"`
	Email        string            `bson:"email" json:"email"`
	PasswordHash string            `bson:"passwordHash" json:"-"`
	FirstName    string            `bson:"firstName" json:"firstName"`
	LastName     string            `bson:"lastName" json:"lastName"`
	Grants       map[string]string `bson:"grants" json:"grants"`
	CreatedAt    time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// TierFor returns the tier string granted for a project, or empty.
func (u *User) TierFor(projectID string) string {
	if u.Grants == nil {
		return ""
	}
	return u.Grants[projectID]
}
