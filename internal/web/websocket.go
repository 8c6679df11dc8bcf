package web

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboard is meant to run behind a trusted reverse proxy
	},
}

// handleWebSocket sends a visit's current progress to a dashboard client
// when it connects and again each time the client sends a message,
// stopping once the visit has a final status or the client disconnects.
// It sends nothing between client messages.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	visitID := chi.URLParam(r, "id")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Printf("Warning: failed to close WebSocket connection: %v", err)
		}
	}()

	s.sendProgressEvent(conn, visitID, "connected", "Connected to visit progress")

	s.mu.RLock()
	v, exists := s.visits[visitID]
	s.mu.RUnlock()

	if !exists {
		s.sendProgressEvent(conn, visitID, "error", "Visit not found")
		return
	}

	s.sendFullProgress(conn, v)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}

		s.mu.RLock()
		current, stillExists := s.visits[visitID]
		s.mu.RUnlock()

		if !stillExists {
			s.sendProgressEvent(conn, visitID, "error", "Visit no longer exists")
			break
		}

		s.sendFullProgress(conn, current)

		if current.Status == "eventful" || current.Status == "uneventful" || current.Status == "failed" || current.Status == "not_found" {
			s.sendProgressEvent(conn, visitID, current.Status, "Visit "+current.Status)
			break
		}
	}
}

func (s *Server) sendProgressEvent(conn *websocket.Conn, visitID, eventType, message string) {
	event := ProgressEvent{
		Type: eventType,
		Data: ProgressData{
			VisitID:   visitID,
			Status:    eventType,
			Operation: message,
			Errors:    []string{},
		},
	}
	s.sendJSON(conn, event)
}

func (s *Server) sendFullProgress(conn *websocket.Conn, v *VisitStatus) {
	event := ProgressEvent{
		Type: "progress",
		Data: ProgressData{
			VisitID:         v.ID,
			Status:          v.Status,
			Operation:       v.Operation,
			Percentage:      v.Percentage,
			ChangesetsTotal: v.ChangesetsTotal,
			ChangesetsDone:  v.ChangesetsDone,
			Errors:          v.Errors,
		},
	}
	s.sendJSON(conn, event)
}

func (s *Server) sendJSON(conn *websocket.Conn, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("JSON marshal error: %v", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("WebSocket write error: %v", err)
	}
}
