package bot

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/crewsight/nonengage/internal/engage"
	"github.com/crewsight/nonengage/internal/logger"
)

// ShortcutCallbackID is the message-shortcut callback configured in the
// platform app settings.
const ShortcutCallbackID = "find_non_engagers"

const usageText = "Usage: `/nonengagers <message link>`\n" +
	"Tip: Long-press a message → *Copy link* and paste here."

// Handler handles HTTP requests from the platform.
type Handler struct {
	manager *RunManager
	log     *logger.Logger
}

// NewHandler creates a new handler with the given run manager.
func NewHandler(manager *RunManager) *Handler {
	return &Handler{
		manager: manager,
		log:     logger.Get(),
	}
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	resp := map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		_ = err // Client disconnected
	}
}

// HandleCommand handles POST /slack/commands — the /nonengagers command.
// The ack is the HTTP response itself; the computation runs detached.
func (h *Handler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	text := strings.TrimSpace(r.PostForm.Get("text"))
	channel, ts, err := engage.ParsePermalink(text)
	if err != nil {
		respondEphemeral(w, usageText)
		return
	}

	opts := RunOptions{
		UserID:      r.PostForm.Get("user_id"),
		ChannelID:   channel,
		MessageTS:   ts,
		ResponseURL: r.PostForm.Get("response_url"),
	}

	if _, err := h.manager.Start(r.Context(), opts); err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			respondEphemeral(w, "Still working on that message — hang tight.")
			return
		}
		respondEphemeral(w, "Sorry, I couldn't start that: "+err.Error())
		return
	}

	respondEphemeral(w, "On it — I'll DM you the results (summary + CSV).")
}

// interactionPayload is the subset of the interactivity payload we read.
type interactionPayload struct {
	Type       string `json:"type"`
	CallbackID string `json:"callback_id"`
	User       struct {
		ID string `json:"id"`
	} `json:"user"`
	Channel struct {
		ID string `json:"id"`
	} `json:"channel"`
	Message struct {
		TS string `json:"ts"`
	} `json:"message"`
}

// HandleInteraction handles POST /slack/interactions — the message
// shortcut. Acks with an empty 200 and runs the computation detached.
func (h *Handler) HandleInteraction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	var payload interactionPayload
	if err := json.Unmarshal([]byte(r.PostForm.Get("payload")), &payload); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if payload.Type != "message_action" || payload.CallbackID != ShortcutCallbackID {
		// not ours; ack so the platform doesn't retry
		w.WriteHeader(http.StatusOK)
		return
	}

	opts := RunOptions{
		UserID:    payload.User.ID,
		ChannelID: payload.Channel.ID,
		MessageTS: payload.Message.TS,
	}

	if _, err := h.manager.Start(r.Context(), opts); err != nil && !errors.Is(err, ErrAlreadyRunning) {
		h.log.Error().Err(err).Msg("failed to start report run")
	}

	w.WriteHeader(http.StatusOK)
}

// respondEphemeral writes an ephemeral command response. The platform
// shows it only to the requester.
func respondEphemeral(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	resp := map[string]string{
		"response_type": "ephemeral",
		"text":          text,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		_ = err // Client disconnected
	}
}
