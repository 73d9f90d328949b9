package constant

// Shared slog attribute keys.
const (
	Error     = "error"
	SessionID = "session_id"
	RoomID    = "room_id"
	UserID    = "user_id"
	EventType = "event_type"
)
