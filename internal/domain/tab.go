package domain

import "time"

// TabID identifies a single open tab. The id is assigned by the browser
// host and may be reused after the tab is closed, so stale entries keyed
// by it must be purged on removal.
type TabID string

// Tab is the browser's view of one open tab at enumeration time.
type Tab struct {
	// ID is the host-assigned identifier (a CDP target id).
	ID TabID

	// Title is the current document title.
	Title string

	// URL is the current document URL.
	URL string

	// FavIconURL is the favicon URL, if the host reports one.
	FavIconURL string

	// Active reports whether the tab is currently in use.
	// Active tabs are never auto-closed regardless of inactivity.
	Active bool

	// Pinned tabs are never auto-closed either.
	Pinned bool
}

// TabTimer tracks when a tab was first observed and last used.
// Timers live only in memory: a daemon restart loses them all, and a tab
// that survives the restart stays invisible to the inactivity scanner
// until a creation or activation event is observed for it again.
type TabTimer struct {
	// Created is set when the tab is first observed.
	Created time.Time

	// LastActive is updated whenever the tab becomes the active tab
	// or its URL changes.
	LastActive time.Time
}

// TabStats summarizes the currently open tabs for the popup view.
type TabStats struct {
	TotalTabs       int           `json:"totalTabs"`
	InactiveTabs    int           `json:"inactiveTabs"`
	AvgInactiveTime time.Duration `json:"avgInactiveTime"`
}
