package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kalambet/boardbi/internal/agent"
	"github.com/kalambet/boardbi/internal/monday"
)

type stubAgent struct {
	lastMessage string
}

func (s *stubAgent) Chat(ctx context.Context, message string) string {
	s.lastMessage = message
	return "answer to: " + message
}

func (s *stubAgent) Report(ctx context.Context) string { return "# Leadership Update" }

func (s *stubAgent) Refresh() string { return "Data cache cleared." }

func (s *stubAgent) Health(ctx context.Context) agent.HealthStatus {
	return agent.HealthStatus{
		Status:           "healthy",
		Monday:           monday.Health{Status: "connected", BoardsFound: 2},
		GeminiConfigured: true,
		WorkOrdersBoard:  "1",
		DealsBoard:       "2",
	}
}

func TestHandleChat(t *testing.T) {
	stub := &stubAgent{}
	srv := httptest.NewServer(NewHandler(stub))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/chat", "application/json",
		strings.NewReader(`{"message":"  What is our pipeline?  "}`))
	if err != nil {
		t.Fatalf("POST /chat: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
	if body["response"] != "answer to: What is our pipeline?" {
		t.Errorf("response = %q", body["response"])
	}
	if stub.lastMessage != "What is our pipeline?" {
		t.Errorf("message not trimmed: %q", stub.lastMessage)
	}
}

func TestHandleChat_EmptyMessage(t *testing.T) {
	srv := httptest.NewServer(NewHandler(&stubAgent{}))
	defer srv.Close()

	for _, payload := range []string{`{"message":""}`, `{"message":"   "}`, `{}`} {
		resp, err := http.Post(srv.URL+"/chat", "application/json", strings.NewReader(payload))
		if err != nil {
			t.Fatalf("POST /chat: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("payload %s: status = %d, want 400", payload, resp.StatusCode)
		}
		var body struct {
			Error struct {
				Message string `json:"message"`
				Type    string `json:"type"`
			} `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if body.Error.Type != "invalid_request_error" {
			t.Errorf("payload %s: error type = %q", payload, body.Error.Type)
		}
	}
}

func TestHandleChat_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(NewHandler(&stubAgent{}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/chat", "application/json", strings.NewReader(`{not json`))
	if err != nil {
		t.Fatalf("POST /chat: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleReport(t *testing.T) {
	srv := httptest.NewServer(NewHandler(&stubAgent{}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/report", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /report: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if body["report"] != "# Leadership Update" || body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestHandleRefresh(t *testing.T) {
	srv := httptest.NewServer(NewHandler(&stubAgent{}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/refresh", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /refresh: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if body["message"] != "Data cache cleared." {
		t.Errorf("body = %v", body)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := httptest.NewServer(NewHandler(&stubAgent{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	var h agent.HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		t.Fatalf("decoding health: %v", err)
	}
	if h.Status != "healthy" || h.Monday.BoardsFound != 2 || !h.GeminiConfigured {
		t.Errorf("health = %+v", h)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := httptest.NewServer(NewHandler(&stubAgent{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/chat")
	if err != nil {
		t.Fatalf("GET /chat: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}
