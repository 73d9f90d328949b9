package runtime

import "github.com/google/uuid"

// MediaState tracks a participant's live media toggles, last-write-wins.
type MediaState struct {
	AudioEnabled  bool `json:"audioEnabled"`
	VideoEnabled  bool `json:"videoEnabled"`
	ScreenSharing bool `json:"screenSharing"`
}

// DefaultMediaState is the state every participant starts a meeting with.
func DefaultMediaState() MediaState {
	return MediaState{
		AudioEnabled:  true,
		VideoEnabled:  true,
		ScreenSharing: false,
	}
}

// Session is the server-side record of one live connection. It exists for
// the lifetime of the connection and evaporates with it; RoomID stays empty
// until the first join.
type Session struct {
	ID         uuid.UUID
	UserID     string
	RoomID     string
	IsHost     bool
	Media      MediaState
	RaisedHand bool
}

// Joined reports whether the session is currently a member of a room.
func (s Session) Joined() bool {
	return s.RoomID != ""
}
