package relay

import (
	"encoding/json"
	"fmt"
)

// Message kinds, as they appear on the wire. Window messages use the
// "type" discriminator; extension-internal messages use "action".
const (
	KindAuthSuccess            = "TABKEEP_AUTH_SUCCESS"
	KindAuthConfirmed          = "TABKEEP_AUTH_CONFIRMED"
	KindProfileUpdate          = "TABKEEP_PROFILE_UPDATE"
	KindProfileUpdateConfirmed = "TABKEEP_PROFILE_UPDATE_CONFIRMED"
	KindExtensionDetected      = "TABKEEP_EXTENSION_DETECTED"
	KindAuthStateChanged       = "AUTH_STATE_CHANGED"
	KindToggleAutoClose        = "toggleAutoClose"
	KindGetTabStats            = "getTabStats"
)

// Message is the closed set of relay messages. The sealed marker method
// means adding a kind forces every switch over Message to be revisited,
// instead of a stringly-typed map lookup silently ignoring it.
type Message interface {
	Kind() string
	sealed()
}

// AuthSuccess carries a freshly established web session into the
// extension side of the world.
type AuthSuccess struct {
	SyncToken string `json:"syncToken"`
	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail,omitempty"`
	AvatarID  string `json:"avatarId,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// AuthConfirmed is posted back to the web page once the session has
// been persisted.
type AuthConfirmed struct {
	Success bool `json:"success"`
}

// ProfileUpdate carries an avatar image reference from the web page.
type ProfileUpdate struct {
	AvatarImage string `json:"avatarImage"`
	Timestamp   int64  `json:"timestamp,omitempty"`
}

// ProfileUpdateConfirmed acknowledges a ProfileUpdate.
type ProfileUpdateConfirmed struct {
	Success bool `json:"success"`
}

// ExtensionDetected signals to the web page that the extension side is
// present; the page sends nothing until it has seen one.
type ExtensionDetected struct {
	Installed bool `json:"installed"`
}

// AuthStateChanged is broadcast to extension contexts after the session
// changes in either direction.
type AuthStateChanged struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	SyncToken       string `json:"syncToken,omitempty"`
	UserID          string `json:"userId,omitempty"`
	UserEmail       string `json:"userEmail,omitempty"`
}

// ToggleAutoClose asks the background side to flip the auto-close flag.
type ToggleAutoClose struct {
	Enabled bool `json:"enabled"`
}

// GetTabStats requests the current tab statistics.
type GetTabStats struct{}

func (AuthSuccess) Kind() string            { return KindAuthSuccess }
func (AuthConfirmed) Kind() string          { return KindAuthConfirmed }
func (ProfileUpdate) Kind() string          { return KindProfileUpdate }
func (ProfileUpdateConfirmed) Kind() string { return KindProfileUpdateConfirmed }
func (ExtensionDetected) Kind() string      { return KindExtensionDetected }
func (AuthStateChanged) Kind() string       { return KindAuthStateChanged }
func (ToggleAutoClose) Kind() string        { return KindToggleAutoClose }
func (GetTabStats) Kind() string            { return KindGetTabStats }

func (AuthSuccess) sealed()            {}
func (AuthConfirmed) sealed()          {}
func (ProfileUpdate) sealed()          {}
func (ProfileUpdateConfirmed) sealed() {}
func (ExtensionDetected) sealed()      {}
func (AuthStateChanged) sealed()       {}
func (ToggleAutoClose) sealed()        {}
func (GetTabStats) sealed()            {}

// envelope peeks at the discriminator fields of a raw message.
type envelope struct {
	Type   string `json:"type"`
	Action string `json:"action"`
}

// Decode parses a raw wire message into its typed form.
// Unknown discriminators are an error; the caller decides whether that
// means "reject" (internal channel) or "silently ignore" (window hop).
func Decode(raw []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}

	kind := env.Type
	if kind == "" {
		kind = env.Action
	}

	switch kind {
	case KindAuthSuccess:
		var m AuthSuccess
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("malformed %s: %w", kind, err)
		}
		return m, nil
	case KindAuthConfirmed:
		var m AuthConfirmed
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("malformed %s: %w", kind, err)
		}
		return m, nil
	case KindProfileUpdate:
		var m ProfileUpdate
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("malformed %s: %w", kind, err)
		}
		return m, nil
	case KindProfileUpdateConfirmed:
		var m ProfileUpdateConfirmed
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("malformed %s: %w", kind, err)
		}
		return m, nil
	case KindExtensionDetected:
		var m ExtensionDetected
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("malformed %s: %w", kind, err)
		}
		return m, nil
	case KindAuthStateChanged:
		var m AuthStateChanged
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("malformed %s: %w", kind, err)
		}
		return m, nil
	case KindToggleAutoClose:
		var m ToggleAutoClose
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("malformed %s: %w", kind, err)
		}
		return m, nil
	case KindGetTabStats:
		return GetTabStats{}, nil
	case "":
		return nil, fmt.Errorf("message has no type or action")
	default:
		return nil, fmt.Errorf("unknown message kind %q", kind)
	}
}

// Encode renders a message back to its wire form, including the
// discriminator the JS side dispatches on.
func Encode(m Message) ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", m.Kind(), err)
	}

	disc := "type"
	switch m.(type) {
	case ToggleAutoClose, GetTabStats:
		disc = "action"
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		obj = map[string]interface{}{}
	}
	obj[disc] = m.Kind()
	return json.Marshal(obj)
}
