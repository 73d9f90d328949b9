package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ostanin/huddle/internal/domain/runtime"
	"github.com/ostanin/huddle/internal/infra/adapters/memory"
)

type RoomHandler struct {
	registry    memory.RoomRegistry
	sessionRepo memory.SessionRepository
}

func NewRoomHandler(registry memory.RoomRegistry, sessionRepo memory.SessionRepository) *RoomHandler {
	return &RoomHandler{
		registry:    registry,
		sessionRepo: sessionRepo,
	}
}

type participantView struct {
	ID         string             `json:"id"`
	UserID     string             `json:"userId"`
	IsHost     bool               `json:"isHost"`
	Media      runtime.MediaState `json:"mediaState"`
	RaisedHand bool               `json:"raisedHand"`
}

type roomParticipantsResponse struct {
	RoomID       string            `json:"roomId"`
	Participants []participantView `json:"participants"`
}

// Participants is a read-only view over the registry, computed per request
// and never stored. An unknown room is just an empty room.
func (h *RoomHandler) Participants(c echo.Context) error {
	roomID := c.Param("id")

	members := h.registry.MembersOf(roomID)

	resp := roomParticipantsResponse{
		RoomID:       roomID,
		Participants: make([]participantView, 0, len(members)),
	}

	for _, member := range members {
		sess, ok := h.sessionRepo.Get(member)
		if !ok {
			continue
		}

		resp.Participants = append(resp.Participants, participantView{
			ID:         sess.ID.String(),
			UserID:     sess.UserID,
			IsHost:     sess.IsHost,
			Media:      sess.Media,
			RaisedHand: sess.RaisedHand,
		})
	}

	return c.JSON(http.StatusOK, resp)
}
