package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ogurasousui/jobswap-backend/internal/core/chat"
)

type sendMessageRequest struct {
	Content string `json:"content"`
}

type channelResponse struct {
	ID             string     `json:"id"`
	ExchangeID     string     `json:"exchange_id"`
	ParticipantIDs []string   `json:"participant_ids"`
	Active         bool       `json:"active"`
	LastMessageAt  *time.Time `json:"last_message_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type messageResponse struct {
	ID         string    `json:"id"`
	ChannelID  string    `json:"channel_id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name,omitempty"`
	Content    string    `json:"content"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

func toChannelResponse(c *chat.Channel) channelResponse {
	return channelResponse{
		ID:             c.ID,
		ExchangeID:     c.ExchangeID,
		ParticipantIDs: c.ParticipantIDs,
		Active:         c.Active,
		LastMessageAt:  c.LastMessageAt,
		CreatedAt:      c.CreatedAt,
	}
}

func (h *Handler) handleListChannels(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	channels, err := h.chats.ListMine(r.Context(), claims.UserID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	out := make([]channelResponse, 0, len(channels))
	for _, c := range channels {
		out = append(out, toChannelResponse(c))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	views, err := h.chats.Messages(r.Context(), claims.UserID, chi.URLParam(r, "channelID"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	out := make([]messageResponse, 0, len(views))
	for _, v := range views {
		resp := messageResponse{
			ID:        v.Message.ID,
			ChannelID: v.Message.ChannelID,
			SenderID:  v.Message.SenderID,
			Content:   v.Message.Content,
			Read:      v.Message.Read,
			CreatedAt: v.Message.CreatedAt,
		}
		if v.Sender != nil {
			resp.SenderName = v.Sender.Name
		}
		out = append(out, resp)
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if !h.decode(w, r, &req) {
		return
	}
	claims := claimsFromContext(r.Context())
	m, err := h.chats.Send(r.Context(), claims.UserID, chi.URLParam(r, "channelID"), req.Content)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, messageResponse{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
	})
}

func (h *Handler) handleMarkChannelRead(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if err := h.chats.MarkRead(r.Context(), claims.UserID, chi.URLParam(r, "channelID")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
