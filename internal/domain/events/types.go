package events

import (
	"encoding/json"
	"fmt"
)

// Inbound event types (client -> server).
const (
	TypeJoinMeeting        = "join-meeting"
	TypeLeaveMeeting       = "leave-meeting"
	TypeOffer              = "offer"
	TypeAnswer             = "answer"
	TypeICECandidate       = "ice-candidate"
	TypeAudioToggle        = "audio-toggle"
	TypeVideoToggle        = "video-toggle"
	TypeScreenShareStarted = "screen-share-started"
	TypeScreenShareStopped = "screen-share-stopped"
	TypeChatMessage        = "chat-message"
	TypeReaction           = "reaction"
	TypeRaiseHand          = "raise-hand"
)

// Outbound event types (server -> client). Chat and reaction events reuse
// their inbound names.
const (
	TypeConnected            = "connected"
	TypeExistingParticipants = "existing-participants"
	TypeParticipantJoined    = "participant-joined"
	TypeParticipantLeft      = "participant-left"
	TypeParticipantUpdated   = "participant-updated"
	TypeHandRaised           = "hand-raised"
)

// Message is the wire envelope for every signaling event in both directions.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Wrap marshals a typed payload into an envelope.
func Wrap(eventType string, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	return Message{Type: eventType, Data: data}, nil
}

// JoinEvent starts a session's membership in a meeting.
//
// UserID and IsHost are caller-supplied and trusted as-is: verifying them
// belongs to the identity service fronting this server, not to the
// signaling layer.
type JoinEvent struct {
	MeetingID string `json:"meetingId"`
	UserID    string `json:"userId"`
	IsHost    bool   `json:"isHost,omitempty"`
}

// SignalEvent is a point-to-point connection-negotiation message. Exactly
// one of Offer/Answer/Candidate is set, matching the envelope type; the
// relay never looks inside it.
type SignalEvent struct {
	To        string          `json:"to"`
	MeetingID string          `json:"meetingId"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// SignalForward is the relayed form of a SignalEvent, tagged with the
// sender's session id.
type SignalForward struct {
	From      string          `json:"from"`
	MeetingID string          `json:"meetingId"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

type MediaToggleEvent struct {
	MeetingID string `json:"meetingId"`
	UserID    string `json:"userId"`
	Enabled   bool   `json:"enabled"`
}

type ChatMessageEvent struct {
	MeetingID string `json:"meetingId"`
	UserID    string `json:"userId"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type ReactionEvent struct {
	MeetingID string `json:"meetingId"`
	UserID    string `json:"userId"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

type RaiseHandEvent struct {
	MeetingID string `json:"meetingId"`
	UserID    string `json:"userId"`
	Raised    bool   `json:"raised"`
}

// ConnectedEvent greets a fresh connection with its session id, the address
// other peers use to reach it through the relay.
type ConnectedEvent struct {
	SessionID string `json:"sessionId"`
}

// ExistingParticipantsEvent is sent only to the joining session.
type ExistingParticipantsEvent struct {
	Participants []string `json:"participants"`
}

type ParticipantJoinedEvent struct {
	ID            string `json:"id"`
	UserID        string `json:"userId"`
	AudioEnabled  bool   `json:"audioEnabled"`
	VideoEnabled  bool   `json:"videoEnabled"`
	ScreenSharing bool   `json:"screenSharing"`
	IsHost        bool   `json:"isHost"`
	RaisedHand    bool   `json:"raisedHand"`
}

type ParticipantLeftEvent struct {
	ID string `json:"id"`
}

// ParticipantUpdatedEvent carries the full media state after a change;
// receivers apply it last-write-wins.
type ParticipantUpdatedEvent struct {
	ID            string `json:"id"`
	UserID        string `json:"userId"`
	AudioEnabled  bool   `json:"audioEnabled"`
	VideoEnabled  bool   `json:"videoEnabled"`
	ScreenSharing bool   `json:"screenSharing"`
}

type ChatMessageBroadcast struct {
	From      string `json:"from"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type ReactionBroadcast struct {
	UserID    string `json:"userId"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

type HandRaisedEvent struct {
	ParticipantID string `json:"participantId"`
	Raised        bool   `json:"raised"`
}
