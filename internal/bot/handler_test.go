package bot

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func postForm(t *testing.T, router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestHandler_Health(t *testing.T) {
	handler := NewHandler(NewRunManager(NewMockRunner(false)))
	router := NewRouter(handler, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Health() status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestHandler_HandleCommand(t *testing.T) {
	t.Run("responds with usage on missing permalink", func(t *testing.T) {
		runner := NewMockRunner(false)
		router := NewRouter(NewHandler(NewRunManager(runner)), "")

		rec := postForm(t, router, "/slack/commands", url.Values{
			"text":    {"not a link"},
			"user_id": {"U9"},
		})

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		resp := decodeResponse(t, rec)
		if !strings.Contains(resp["text"], "Usage:") {
			t.Errorf("text = %q, want usage hint", resp["text"])
		}
		if runner.RunCount() != 0 {
			t.Errorf("runner called %d times, want 0", runner.RunCount())
		}
	})

	t.Run("acks and starts run on valid permalink", func(t *testing.T) {
		runner := NewMockRunner(false)
		router := NewRouter(NewHandler(NewRunManager(runner)), "")

		rec := postForm(t, router, "/slack/commands", url.Values{
			"text":         {"https://acme.slack.com/archives/C123/p1700000000123456"},
			"user_id":      {"U9"},
			"response_url": {"https://hooks.test/respond"},
		})

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		resp := decodeResponse(t, rec)
		if resp["response_type"] != "ephemeral" {
			t.Errorf("response_type = %q, want ephemeral", resp["response_type"])
		}

		<-runner.started
		runner.mu.Lock()
		run := runner.runs[0]
		runner.mu.Unlock()

		if run.Options.ChannelID != "C123" {
			t.Errorf("ChannelID = %q, want C123", run.Options.ChannelID)
		}
		if run.Options.MessageTS != "1700000000.123456" {
			t.Errorf("MessageTS = %q, want 1700000000.123456", run.Options.MessageTS)
		}
		if run.Options.ResponseURL != "https://hooks.test/respond" {
			t.Errorf("ResponseURL = %q", run.Options.ResponseURL)
		}
	})

	t.Run("tells the requester when run already in flight", func(t *testing.T) {
		runner := NewMockRunner(true)
		defer close(runner.release)
		router := NewRouter(NewHandler(NewRunManager(runner)), "")

		form := url.Values{
			"text":    {"https://acme.slack.com/archives/C123/p1700000000123456"},
			"user_id": {"U9"},
		}
		postForm(t, router, "/slack/commands", form)
		<-runner.started

		rec := postForm(t, router, "/slack/commands", form)
		resp := decodeResponse(t, rec)
		if !strings.Contains(resp["text"], "Still working") {
			t.Errorf("text = %q, want duplicate-run notice", resp["text"])
		}
	})
}

func TestHandler_HandleInteraction(t *testing.T) {
	t.Run("starts run for message shortcut", func(t *testing.T) {
		runner := NewMockRunner(false)
		router := NewRouter(NewHandler(NewRunManager(runner)), "")

		payload := `{
			"type": "message_action",
			"callback_id": "find_non_engagers",
			"user": {"id": "U9"},
			"channel": {"id": "C123"},
			"message": {"ts": "1700000000.123456"}
		}`
		rec := postForm(t, router, "/slack/interactions", url.Values{"payload": {payload}})

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}

		<-runner.started
		runner.mu.Lock()
		run := runner.runs[0]
		runner.mu.Unlock()

		if run.Options.UserID != "U9" || run.Options.ChannelID != "C123" {
			t.Errorf("unexpected run options: %+v", run.Options)
		}
		if run.Options.ResponseURL != "" {
			t.Errorf("ResponseURL = %q, want empty for shortcuts", run.Options.ResponseURL)
		}
	})

	t.Run("ignores other callbacks", func(t *testing.T) {
		runner := NewMockRunner(false)
		router := NewRouter(NewHandler(NewRunManager(runner)), "")

		payload := `{"type": "message_action", "callback_id": "something_else"}`
		rec := postForm(t, router, "/slack/interactions", url.Values{"payload": {payload}})

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if runner.RunCount() != 0 {
			t.Errorf("runner called %d times, want 0", runner.RunCount())
		}
	})

	t.Run("rejects invalid payload", func(t *testing.T) {
		router := NewRouter(NewHandler(NewRunManager(NewMockRunner(false))), "")

		rec := postForm(t, router, "/slack/interactions", url.Values{"payload": {"not json"}})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})
}
