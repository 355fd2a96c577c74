package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mickeyshaughnessy/TexasDoT/internal/protocol"
	"github.com/mickeyshaughnessy/TexasDoT/internal/sim/agency"
)

// Server bridges websocket clients to the engine's attach/inbox
// channels. Each connection is one observer; operators additionally
// queue commands for the next day boundary.
type Server struct {
	engine *agency.Engine
	log    *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(e *agency.Engine, logger *log.Logger) *Server {
	return &Server{
		engine: e,
		log:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send HELLO first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var hello protocol.HelloMsg
		if err := json.Unmarshal(msg, &hello); err != nil {
			closeWith(conn, websocket.ClosePolicyViolation, "bad hello")
			return
		}
		if hello.Type != protocol.TypeHello || hello.ProtocolVersion != protocol.Version {
			closeWith(conn, websocket.ClosePolicyViolation, "expected HELLO")
			return
		}

		queue := hello.MaxQueue
		if queue <= 0 {
			queue = 256
		}
		if queue > 4096 {
			queue = 4096
		}
		out := make(chan []byte, queue)
		resp := make(chan protocol.WelcomeMsg, 1)

		select {
		case s.engine.Attach() <- agency.ObserverRequest{Name: hello.ClientName, Out: out, Resp: resp}:
		default:
			closeWith(conn, websocket.CloseTryAgainLater, "server busy")
			return
		}

		var welcome protocol.WelcomeMsg
		select {
		case welcome = <-resp:
		case <-time.After(5 * time.Second):
			closeWith(conn, websocket.CloseTryAgainLater, "attach timeout")
			return
		}
		clientID := welcome.ClientID
		defer func() {
			select {
			case s.engine.Detach() <- clientID:
			default:
				// Engine loop is stopping; nothing else to do.
			}
		}()

		wb, _ := json.Marshal(welcome)
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, wb); err != nil {
			return
		}
		s.log.Printf("client %s (%q) connected from %s", clientID, hello.ClientName, r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b, ok := <-out:
					if !ok {
						writeErr <- nil
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Reader loop: forward CMDs to the day queue.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeCmd {
				continue
			}
			var cmd protocol.CmdMsg
			if err := json.Unmarshal(msg, &cmd); err != nil {
				continue
			}
			if cmd.ProtocolVersion != protocol.Version {
				continue
			}
			select {
			case s.engine.Inbox() <- agency.CommandEnvelope{ClientID: clientID, Cmd: cmd}:
			default:
				// Inbox full; the client can resend next day.
			}
		}

		cancel()
		closeWith(conn, websocket.CloseNormalClosure, "bye")

		// Best-effort wait for the writer to stop so it doesn't outlive conn.
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func closeWith(conn *websocket.Conn, code int, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(time.Second))
}
