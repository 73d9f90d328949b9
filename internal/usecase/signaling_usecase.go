package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/ostanin/huddle/internal/application/constant"
	"github.com/ostanin/huddle/internal/application/metric"
	"github.com/ostanin/huddle/internal/domain/events"
	"github.com/ostanin/huddle/internal/domain/runtime"
	"github.com/ostanin/huddle/internal/infra/adapters/memory"
)

// SignalingUsecase owns the per-connection lifecycle state machine
// (Connected -> Joined -> Closed), the point-to-point relay and the room
// fan-out.
//
// Protocol-level faults (malformed payloads, unknown targets, redundant
// transitions) are swallowed after logging: the channel favors liveness,
// and nothing here is ever reported back to the peer as an error event.
type SignalingUsecase interface {
	HandleConnect(ctx context.Context, sessionID uuid.UUID) error
	HandleDisconnect(ctx context.Context, sessionID uuid.UUID) error

	HandleJoin(ctx context.Context, sessionID uuid.UUID, ev events.JoinEvent) error
	HandleLeave(ctx context.Context, sessionID uuid.UUID) error

	HandleSignal(ctx context.Context, sessionID uuid.UUID, kind string, ev events.SignalEvent) error

	HandleAudioToggle(ctx context.Context, sessionID uuid.UUID, ev events.MediaToggleEvent) error
	HandleVideoToggle(ctx context.Context, sessionID uuid.UUID, ev events.MediaToggleEvent) error
	HandleScreenShare(ctx context.Context, sessionID uuid.UUID, sharing bool) error

	HandleChatMessage(ctx context.Context, sessionID uuid.UUID, ev events.ChatMessageEvent) error
	HandleReaction(ctx context.Context, sessionID uuid.UUID, ev events.ReactionEvent) error
	HandleRaiseHand(ctx context.Context, sessionID uuid.UUID, ev events.RaiseHandEvent) error
}

type signalingUsecase struct {
	registry    memory.RoomRegistry
	sessionRepo memory.SessionRepository
	wsRepo      memory.WebsocketConnectionRepository

	// mu serializes every room-mutating operation together with its
	// fan-out, so a join/leave and the broadcast it triggers are observed
	// atomically by all other participants. Fan-out under the lock is
	// enqueue-only: the connection repository never does socket I/O on
	// the caller's goroutine. The relay does not take mu at all,
	// point-to-point delivery only needs the sender's own read-loop order.
	mu sync.Mutex
}

func NewSignalingUsecase(
	registry memory.RoomRegistry,
	sessionRepo memory.SessionRepository,
	wsRepo memory.WebsocketConnectionRepository,
) SignalingUsecase {
	return &signalingUsecase{
		registry:    registry,
		sessionRepo: sessionRepo,
		wsRepo:      wsRepo,
	}
}

func (s *signalingUsecase) HandleConnect(ctx context.Context, sessionID uuid.UUID) error {
	s.sessionRepo.Add(runtime.Session{ID: sessionID})

	msg, err := events.Wrap(events.TypeConnected, events.ConnectedEvent{SessionID: sessionID.String()})
	if err != nil {
		return err
	}

	s.wsRepo.Write(sessionID, msg)

	return nil
}

func (s *signalingUsecase) HandleJoin(ctx context.Context, sessionID uuid.UUID, ev events.JoinEvent) error {
	if ev.MeetingID == "" {
		slog.Warn("join without meetingId dropped", slog.Any(constant.SessionID, sessionID))
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessionRepo.Get(sessionID)
	if !ok {
		return nil
	}

	// Room switching: the old room must see the session leave, otherwise
	// its members keep a ghost entry.
	if sess.Joined() && sess.RoomID != ev.MeetingID {
		s.registry.Leave(sessionID)
		s.announceLeft(sess.RoomID, sessionID)
	}

	existing := s.membersExcept(ev.MeetingID, sessionID)

	s.registry.Join(sessionID, ev.MeetingID)

	sess.UserID = ev.UserID
	sess.RoomID = ev.MeetingID
	sess.IsHost = ev.IsHost
	sess.Media = runtime.DefaultMediaState()
	sess.RaisedHand = false
	s.sessionRepo.Add(sess)

	reply, err := events.Wrap(events.TypeExistingParticipants, events.ExistingParticipantsEvent{
		Participants: existing,
	})
	if err != nil {
		return err
	}
	s.wsRepo.Write(sessionID, reply)

	joined, err := events.Wrap(events.TypeParticipantJoined, events.ParticipantJoinedEvent{
		ID:            sessionID.String(),
		UserID:        sess.UserID,
		AudioEnabled:  sess.Media.AudioEnabled,
		VideoEnabled:  sess.Media.VideoEnabled,
		ScreenSharing: sess.Media.ScreenSharing,
		IsHost:        sess.IsHost,
		RaisedHand:    sess.RaisedHand,
	})
	if err != nil {
		return err
	}
	s.broadcast(ev.MeetingID, joined, sessionID)

	metric.SetActiveRooms(s.registry.RoomCount())

	slog.Info(
		"session joined room",
		slog.Any(constant.SessionID, sessionID),
		slog.String(constant.RoomID, ev.MeetingID),
		slog.String(constant.UserID, ev.UserID),
	)

	return nil
}

func (s *signalingUsecase) HandleLeave(ctx context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leaveLocked(sessionID)

	return nil
}

func (s *signalingUsecase) HandleDisconnect(ctx context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Second disconnect for the same session finds no record and stops
	// here, so cleanup never announces twice.
	if _, ok := s.sessionRepo.Get(sessionID); !ok {
		return nil
	}

	s.leaveLocked(sessionID)
	s.sessionRepo.Remove(sessionID)

	slog.Info("session closed", slog.Any(constant.SessionID, sessionID))

	return nil
}

// leaveLocked removes the session from its room and announces the departure
// to the remaining members. No-op when the session never joined or already
// left. Caller holds s.mu.
func (s *signalingUsecase) leaveLocked(sessionID uuid.UUID) {
	sess, ok := s.sessionRepo.Get(sessionID)
	if !ok || !sess.Joined() {
		return
	}

	roomID := sess.RoomID

	s.registry.Leave(sessionID)

	sess.RoomID = ""
	s.sessionRepo.Add(sess)

	s.announceLeft(roomID, sessionID)

	metric.SetActiveRooms(s.registry.RoomCount())

	slog.Info(
		"session left room",
		slog.Any(constant.SessionID, sessionID),
		slog.String(constant.RoomID, roomID),
	)
}

func (s *signalingUsecase) announceLeft(roomID string, sessionID uuid.UUID) {
	left, err := events.Wrap(events.TypeParticipantLeft, events.ParticipantLeftEvent{
		ID: sessionID.String(),
	})
	if err != nil {
		slog.Error("wrap participant-left", slog.Any(constant.Error, err))
		return
	}

	s.broadcast(roomID, left, sessionID)
}

// HandleSignal is the store-and-forward relay for offer/answer/ice-candidate
// messages. The payload is never interpreted; delivery is at-most-once and a
// disconnected target drops the message silently.
func (s *signalingUsecase) HandleSignal(ctx context.Context, sessionID uuid.UUID, kind string, ev events.SignalEvent) error {
	if ev.To == "" {
		slog.Warn("signal without target dropped", slog.Any(constant.SessionID, sessionID))
		return nil
	}

	target, err := uuid.Parse(ev.To)
	if err != nil {
		slog.Warn(
			"signal with malformed target dropped",
			slog.Any(constant.SessionID, sessionID),
			slog.Any(constant.Error, err),
		)
		return nil
	}

	msg, err := events.Wrap(kind, events.SignalForward{
		From:      sessionID.String(),
		MeetingID: ev.MeetingID,
		Offer:     ev.Offer,
		Answer:    ev.Answer,
		Candidate: ev.Candidate,
	})
	if err != nil {
		return err
	}

	s.wsRepo.Write(target, msg)

	return nil
}

func (s *signalingUsecase) HandleAudioToggle(ctx context.Context, sessionID uuid.UUID, ev events.MediaToggleEvent) error {
	return s.updateMedia(sessionID, func(m *runtime.MediaState) {
		m.AudioEnabled = ev.Enabled
	})
}

func (s *signalingUsecase) HandleVideoToggle(ctx context.Context, sessionID uuid.UUID, ev events.MediaToggleEvent) error {
	return s.updateMedia(sessionID, func(m *runtime.MediaState) {
		m.VideoEnabled = ev.Enabled
	})
}

func (s *signalingUsecase) HandleScreenShare(ctx context.Context, sessionID uuid.UUID, sharing bool) error {
	return s.updateMedia(sessionID, func(m *runtime.MediaState) {
		m.ScreenSharing = sharing
	})
}

// updateMedia applies a media-state change and announces the new state to
// the rest of the room. The originator is excluded: it already knows.
func (s *signalingUsecase) updateMedia(sessionID uuid.UUID, apply func(*runtime.MediaState)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessionRepo.Get(sessionID)
	if !ok || !sess.Joined() {
		return nil
	}

	apply(&sess.Media)
	s.sessionRepo.Add(sess)

	msg, err := events.Wrap(events.TypeParticipantUpdated, events.ParticipantUpdatedEvent{
		ID:            sessionID.String(),
		UserID:        sess.UserID,
		AudioEnabled:  sess.Media.AudioEnabled,
		VideoEnabled:  sess.Media.VideoEnabled,
		ScreenSharing: sess.Media.ScreenSharing,
	})
	if err != nil {
		return err
	}

	s.broadcast(sess.RoomID, msg, sessionID)

	return nil
}

func (s *signalingUsecase) HandleChatMessage(ctx context.Context, sessionID uuid.UUID, ev events.ChatMessageEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessionRepo.Get(sessionID)
	if !ok || !sess.Joined() {
		return nil
	}

	msg, err := events.Wrap(events.TypeChatMessage, events.ChatMessageBroadcast{
		From:      sess.UserID,
		Message:   ev.Message,
		Timestamp: ev.Timestamp,
	})
	if err != nil {
		return err
	}

	// Chat goes to everyone in the room, sender included: the sender's UI
	// renders from the broadcast too.
	s.broadcast(sess.RoomID, msg, uuid.Nil)

	return nil
}

func (s *signalingUsecase) HandleReaction(ctx context.Context, sessionID uuid.UUID, ev events.ReactionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessionRepo.Get(sessionID)
	if !ok || !sess.Joined() {
		return nil
	}

	msg, err := events.Wrap(events.TypeReaction, events.ReactionBroadcast{
		UserID:    sess.UserID,
		Type:      ev.Type,
		Timestamp: ev.Timestamp,
	})
	if err != nil {
		return err
	}

	s.broadcast(sess.RoomID, msg, uuid.Nil)

	return nil
}

func (s *signalingUsecase) HandleRaiseHand(ctx context.Context, sessionID uuid.UUID, ev events.RaiseHandEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessionRepo.Get(sessionID)
	if !ok || !sess.Joined() {
		return nil
	}

	sess.RaisedHand = ev.Raised
	s.sessionRepo.Add(sess)

	msg, err := events.Wrap(events.TypeHandRaised, events.HandRaisedEvent{
		ParticipantID: sessionID.String(),
		Raised:        ev.Raised,
	})
	if err != nil {
		return err
	}

	s.broadcast(sess.RoomID, msg, sessionID)

	return nil
}

// broadcast fans a message out to the room's current members, skipping
// exclude (uuid.Nil excludes nobody). Each Write only enqueues into the
// recipient's send buffer; a slow or failed recipient never stalls the
// loop.
func (s *signalingUsecase) broadcast(roomID string, msg events.Message, exclude uuid.UUID) {
	for _, member := range s.registry.MembersOf(roomID) {
		if member == exclude {
			continue
		}

		s.wsRepo.Write(member, msg)
	}
}

func (s *signalingUsecase) membersExcept(roomID string, sessionID uuid.UUID) []string {
	members := s.registry.MembersOf(roomID)

	ids := make([]string, 0, len(members))
	for _, member := range members {
		if member == sessionID {
			continue
		}
		ids = append(ids, member.String())
	}

	return ids
}
