package models

// PlaceholderAuthor fills the author list when the catalog has none.
const PlaceholderAuthor = "No author to display"

// SavedBook is embedded in a user's savedBooks list. BookID is the external
// catalog identifier; it is only meaningful as a dedup key within one list.
type SavedBook struct {
	BookID      string   `bson:"bookId" json:"bookId"`
	Title       string   `bson:"title" json:"title"`
	Description string   `bson:"description,omitempty" json:"description,omitempty"`
	Image       string   `bson:"image,omitempty" json:"image,omitempty"`
	Link        string   `bson:"link,omitempty" json:"link,omitempty"`
	Authors     []string `bson:"authors" json:"authors"`
}
