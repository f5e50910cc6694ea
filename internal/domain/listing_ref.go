package domain

import "github.com/google/uuid"

// ListingKind tags which listing table a reference points at.
type ListingKind string

const (
	KindScrap    ListingKind = "scrap"
	KindReusable ListingKind = "reusable"
)

// ListingRef is a tagged reference to exactly one listing. Inquiries and
// transactions embed it instead of carrying two nullable foreign keys, so
// "both set" and "neither set" are unrepresentable.
type ListingRef struct {
	ListingKind ListingKind `gorm:"column:listing_kind;type:varchar(10);not null" json:"listing_kind"`
	ListingID   uuid.UUID   `gorm:"column:listing_id;type:uuid;not null" json:"listing_id"`
}

// ScrapRef builds a reference to a scrap listing.
func ScrapRef(id uuid.UUID) ListingRef {
	return ListingRef{ListingKind: KindScrap, ListingID: id}
}

// ReusableRef builds a reference to a reusable item listing.
func ReusableRef(id uuid.UUID) ListingRef {
	return ListingRef{ListingKind: KindReusable, ListingID: id}
}

// Model returns an empty instance of the listing table the reference points
// at, for use as a gorm query target. Callers must check Valid first.
func (r ListingRef) Model() any {
	if r.ListingKind == KindReusable {
		return &ReusableItemListing{}
	}
	return &ScrapListing{}
}

// Valid reports whether the reference names a known kind and a non-nil listing.
func (r ListingRef) Valid() bool {
	if r.ListingID == uuid.Nil {
		return false
	}
	return r.ListingKind == KindScrap || r.ListingKind == KindReusable
}
