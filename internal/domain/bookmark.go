package domain

// BookmarkEntry is a user-saved tab snapshot.
//
// Entries are immutable once created: there is no update operation,
// only append and delete. The collection keeps insertion order.
type BookmarkEntry struct {
	// ID is time-based (epoch milliseconds as a string), matching the
	// ids the product has always written to the synced store.
	ID string `json:"id"`

	Title      string `json:"title"`
	URL        string `json:"url"`
	FavIconURL string `json:"favIconUrl,omitempty"`

	// Timestamp is epoch milliseconds at creation.
	Timestamp int64 `json:"timestamp"`
}
