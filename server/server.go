// Package server exposes the query engine over a WebSocket endpoint.
// Each text message is one query; the answer streams back as chunk
// messages followed by a sources message with the ranked nodes.
package server

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"docquery/internal/types"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // single-user local tool
	},
}

type Message struct {
	Type    string      `json:"type"`
	Content string      `json:"content,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type SourceNode struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
	Text   string  `json:"text"`
}

type Config struct {
	Engine types.QueryEngine
}

type Server struct {
	config Config
	mux    *http.ServeMux
}

func New(config Config) *Server {
	s := &Server{config: config, mux: http.NewServeMux()}
	s.mux.HandleFunc("/ws", s.handleWS)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		query := string(payload)
		if query == "" {
			continue
		}

		if err := s.answer(r.Context(), conn, query); err != nil {
			return
		}
	}
}

// answer runs one query and streams its output to the connection.
// Query failures are reported to the client and keep the connection
// open; only write failures end it.
func (s *Server) answer(ctx context.Context, conn *websocket.Conn, query string) error {
	result, err := s.config.Engine.Query(ctx, query)
	if err != nil {
		return conn.WriteJSON(Message{Type: "error", Content: err.Error()})
	}

	for fragment := range result.Fragments {
		if err := conn.WriteJSON(Message{Type: "chunk", Content: fragment}); err != nil {
			return err
		}
	}

	if err := <-result.Done; err != nil {
		return conn.WriteJSON(Message{Type: "error", Content: err.Error()})
	}

	nodes := make([]SourceNode, 0, len(result.Nodes))
	for _, n := range result.Nodes {
		nodes = append(nodes, SourceNode{
			ID:     n.ID,
			Source: n.Source,
			Score:  n.Score,
			Text:   n.Text,
		})
	}
	if err := conn.WriteJSON(Message{Type: "sources", Data: nodes}); err != nil {
		return err
	}

	return conn.WriteJSON(Message{Type: "done"})
}
