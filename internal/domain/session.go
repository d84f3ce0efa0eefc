package domain

// Session is the link between a web account and an extension install,
// as mirrored into the storage backbone.
//
// The web dashboard's account record is the source of truth; this copy
// is a cache that only changes through explicit relay messages or
// storage-change events.
type Session struct {
	// SyncToken is the bearer credential linking the account to the
	// install. Format: one of five 4-char prefixes + 50 alphanumerics.
	SyncToken string `json:"syncToken"`

	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail"`

	// AvatarImage is a URL reference to the user's avatar.
	AvatarImage string `json:"avatarImage,omitempty"`

	// AuthTimestamp is epoch milliseconds of the authentication that
	// produced this session.
	AuthTimestamp int64 `json:"authTimestamp"`
}

// Authenticated reports whether the session carries a token.
func (s *Session) Authenticated() bool {
	return s != nil && s.SyncToken != ""
}
