package live_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/podiumd/podium/internal/adapters/http/live"
	"github.com/podiumd/podium/internal/domain/model"
	"github.com/podiumd/podium/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := live.NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Give the register message time to land before broadcasting.
	time.Sleep(50 * time.Millisecond)

	rank := 1
	agg := 86.0
	hub.PublishRanking(ctx, "comp-1", []model.RankedEntry{
		{SubmissionID: "sub-1", Aggregate: &agg, Rank: &rank},
	})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var update struct {
		Type          string              `json:"type"`
		CompetitionID string              `json:"competition_id"`
		Entries       []model.RankedEntry `json:"entries"`
	}
	if err := json.Unmarshal(payload, &update); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if update.Type != "ranking" {
		t.Errorf("expected type ranking, got %q", update.Type)
	}
	if update.CompetitionID != "comp-1" {
		t.Errorf("expected comp-1, got %q", update.CompetitionID)
	}
	if len(update.Entries) != 1 || update.Entries[0].SubmissionID != "sub-1" {
		t.Errorf("unexpected entries: %+v", update.Entries)
	}
	if *update.Entries[0].Aggregate != 86.0 || *update.Entries[0].Rank != 1 {
		t.Errorf("unexpected head entry: %+v", update.Entries[0])
	}
}

func TestHub_MultipleClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := live.NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	conns := make([]*websocket.Conn, 0, 3)
	for i := 0; i < 3; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial %d: %v", i, err)
		}
		defer conn.Close()
		conns = append(conns, conn)
	}
	time.Sleep(50 * time.Millisecond)

	hub.PublishRanking(ctx, "comp-1", nil)

	for i, conn := range conns {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		if _, _, err := conn.ReadMessage(); err != nil {
			t.Errorf("client %d never saw the broadcast: %v", i, err)
		}
	}
}

func TestHub_ClientDisconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := live.NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	_ = conn.Close()
	time.Sleep(50 * time.Millisecond)

	// Broadcasting after the disconnect must not panic or block.
	hub.PublishRanking(ctx, "comp-1", nil)
}
