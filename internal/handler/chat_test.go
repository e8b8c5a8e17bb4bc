package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"egile/internal/catalog"
	"egile/internal/config"
	"egile/internal/engine"
	"egile/internal/model"
	"egile/internal/service"
)

func testConfig() config.EngineConfig {
	return config.EngineConfig{
		MinActionConfidence:  0.6,
		PrimaryMinConfidence: 0.7,
		PenaltyMissingParam:  0.15,
		PenaltyUnresolved:    0.20,
		UnknownConfidence:    0.2,
	}
}

// stubResolver maps folded mentions to ids without touching a catalog.
type stubResolver map[string]string

func (s stubResolver) Resolve(ctx context.Context, mention string) (string, bool) {
	id, ok := s[strings.ToLower(strings.TrimSpace(mention))]
	return id, ok
}

func (s stubResolver) ResolveItems(ctx context.Context, items []model.LineItem) []model.LineItem {
	out := make([]model.LineItem, len(items))
	copy(out, items)
	for i := range out {
		if out[i].Resolved() {
			continue
		}
		if id, ok := s.Resolve(ctx, out[i].ProductMention); ok {
			out[i].ProductID = id
		}
	}
	return out
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	store := catalog.NewMemoryStore("USD")
	if err := catalog.SeedDemo(context.Background(), store, 0); err != nil {
		t.Fatalf("SeedDemo: %v", err)
	}

	res := stubResolver{
		"microphone egile": "prod_000001",
		"test laptop":      "prod_000002",
	}
	resolving := engine.New(res, cfg)
	plain := engine.New(nil, cfg)
	dispatcher := service.NewDispatcher(store, "", 10)
	assistant := service.NewAssistant(nil, resolving, res, dispatcher, nil, cfg)

	chat := NewChatHandler(assistant, 5*time.Second)
	interpret := NewInterpretHandler(resolving, plain)

	r := gin.New()
	r.POST("/api/v1/chat", chat.Chat)
	r.POST("/api/v1/chat/stream", chat.ChatStream)
	r.POST("/api/v1/interpret", interpret.Interpret)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := postJSON(t, r, "/api/v1/chat", `{"message": "list products"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp model.ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Source != service.SourceFallback {
		t.Errorf("source = %s", resp.Source)
	}
	if resp.Intent == nil || resp.Intent.Action != model.ActionListProducts {
		t.Errorf("intent = %+v", resp.Intent)
	}
	if resp.Reply == "" || resp.RequestID == "" {
		t.Errorf("response incomplete: %+v", resp)
	}
}

func TestChatEndpointRejectsEmptyMessage(t *testing.T) {
	r := newTestRouter(t)

	for _, body := range []string{`{}`, `{"message": ""}`, `not json`} {
		w := postJSON(t, r, "/api/v1/chat", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestChatStreamEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := postJSON(t, r, "/api/v1/chat/stream", `{"message": "list products"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("content type = %s", ct)
	}

	body := w.Body.String()
	for _, event := range []string{"event: start", "event: typing", "event: intent", "event: result", "event: response", "event: done"} {
		if !strings.Contains(body, event) {
			t.Errorf("stream missing %q:\n%s", event, body)
		}
	}
}

func TestInterpretEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := postJSON(t, r, "/api/v1/interpret", `{"message": "create order for demo for 2 microphone egile"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var result model.IntentResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Action != model.ActionCreateOrder {
		t.Fatalf("action = %s", result.Action)
	}
	if len(result.Parameters.Items) != 1 || result.Parameters.Items[0].ProductID != "prod_000001" {
		t.Errorf("items = %+v, want resolved microphone", result.Parameters.Items)
	}
	if !result.RequiresAction {
		t.Error("resolved order should require action")
	}
}

func TestInterpretEndpointWithoutResolution(t *testing.T) {
	r := newTestRouter(t)

	w := postJSON(t, r, "/api/v1/interpret", `{"message": "create order for demo for 2 microphone egile", "resolve": false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var result model.IntentResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Parameters.Items) != 1 || result.Parameters.Items[0].ProductID != "" {
		t.Errorf("items = %+v, want raw extraction", result.Parameters.Items)
	}
	if result.RequiresAction {
		t.Error("unresolved order must not require action")
	}
	if result.Action != model.ActionHelpCreateOrder {
		t.Errorf("action = %s, want the help downgrade", result.Action)
	}
}
