package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mickeyshaughnessy/TexasDoT/internal/protocol"
	"github.com/mickeyshaughnessy/TexasDoT/internal/sim/agency"
)

func startTestServer(t *testing.T) (*httptest.Server, func()) {
	t.Helper()
	// A very slow day clock so the handshake runs against a quiet engine.
	eng, err := agency.New(agency.Config{ID: "agency_test", Seed: 1, DaySeconds: 3600}, agency.StarterAssets(), agency.StarterContractors())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go eng.Run(ctx)

	logger := log.New(os.Stdout, "[test] ", 0)
	srv := httptest.NewServer(NewServer(eng, logger).Handler())
	return srv, func() {
		cancel()
		srv.Close()
	}
}

func TestHandshakeHelloWelcome(t *testing.T) {
	srv, stop := startTestServer(t)
	defer stop()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      "dispatch1",
		Role:            "operator",
	}
	if err := conn.WriteJSON(hello); err != nil {
		t.Fatalf("send hello: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	var welcome protocol.WelcomeMsg
	if err := json.Unmarshal(msg, &welcome); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if welcome.Type != protocol.TypeWelcome || welcome.ProtocolVersion != protocol.Version {
		t.Fatalf("welcome frame: %+v", welcome)
	}
	if welcome.ClientID == "" {
		t.Fatal("empty client id")
	}
	if welcome.EngineParams.AgencyID != "agency_test" || welcome.EngineParams.Seed != 1 {
		t.Fatalf("engine params: %+v", welcome.EngineParams)
	}
}

func TestHandshakeRejectsNonHello(t *testing.T) {
	srv, stop := startTestServer(t)
	defer stop()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"type": "CMD"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected close after bad handshake")
	}
}

