package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func TestWSConnect_StreamsFeedEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)

	feed := service.NewFeedService()
	auth := &mockAuth{authUser: &models.User{ID: 1}}
	s := &service.Service{Authorization: auth, Feed: feed}

	h := NewHandler(s, nil)
	r := gin.New()
	r.GET("/ws", h.authMiddleware, h.wsConnect)

	srv := httptest.NewServer(r)
	defer srv.Close()

	// browsers cannot set an Authorization header on a WebSocket dial; the
	// query-token mode exists for exactly this path
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=tok123"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v (resp=%+v)", err, resp)
	}
	defer func() { _ = conn.Close() }()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	// greeting envelope first
	var hello wsEnvelope
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("read greeting: %v", err)
	}
	if hello.Type != "connected" {
		t.Fatalf("greeting type=%q, want connected", hello.Type)
	}

	feed.Publish(models.Event{
		EventID: "ev1",
		Type:    models.EventItemCreated,
		Message: "item created",
	})

	var envelope wsEnvelope
	if err := conn.ReadJSON(&envelope); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if envelope.Type != models.EventItemCreated {
		t.Fatalf("event type=%q, want %q", envelope.Type, models.EventItemCreated)
	}

	data, _ := json.Marshal(envelope.Data)
	var ev models.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("decode event payload: %v", err)
	}
	if ev.EventID != "ev1" {
		t.Fatalf("event id=%q, want ev1", ev.EventID)
	}
}

func TestWSConnect_RejectsUnauthenticatedDial(t *testing.T) {
	gin.SetMode(gin.TestMode)

	auth := &mockAuth{authErr: service.ErrInvalidToken}
	s := &service.Service{Authorization: auth, Feed: service.NewFeedService()}

	h := NewHandler(s, nil)
	r := gin.New()
	r.GET("/ws", h.authMiddleware, h.wsConnect)

	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatalf("expected dial to fail without a token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake rejection, got %+v", resp)
	}
}
