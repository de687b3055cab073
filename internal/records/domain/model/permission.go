package model

// Tier is the permission scope the auth collaborator resolves for a caller
// before any core call. The core trusts the resolution and only checks that
// the tier covers the operation's category.
type Tier string

const (
	TierNone  Tier = "none"
	TierRead  Tier = "read"
	TierWrite Tier = "write"
	TierFull  Tier = "full"
)

// Category classifies operations by the access they require.
type Category int

const (
	CategoryRead Category = iota
	CategoryWrite
	CategoryAdmin
)

var tierRank = map[Tier]int{
	TierNone:  0,
	TierRead:  1,
	TierWrite: 2,
	TierFull:  3,
}

// ParseTier parses a wire-form tier string. Unknown values resolve to
// TierNone, false.
func ParseTier(s string) (Tier, bool) {
	t := Tier(s)
	if _, ok := tierRank[t]; ok {
		return t, true
	}
	return TierNone, false
}

// Covers reports whether the tier grants the operation category: read-only
// needs read or better, write needs write or better, full-destructive needs
// full.
func (t Tier) Covers(c Category) bool {
	rank, ok := tierRank[t]
	if !ok {
		return false
	}
	switch c {
	case CategoryRead:
		return rank >= tierRank[TierRead]
	case CategoryWrite:
		return rank >= tierRank[TierWrite]
	case CategoryAdmin:
		return rank >= tierRank[TierFull]
	default:
		return false
	}
}

// Principal is the resolved caller identity injected by the auth middleware.
type Principal struct {
	UserID    string `json:"userId"`
	ProjectID string `json:"projectId"`
	Tier      Tier   `json:"tier"`
}
