package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"vidlib/internal/models"
	"vidlib/internal/player"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// playerCommand is the inbound control message on the player socket.
type playerCommand struct {
	Type  string  `json:"type"`
	Value float64 `json:"value,omitempty"`
	Video string  `json:"video,omitempty"`
}

type wsMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// handlePlayerWS binds a playback session to a websocket: commands
// come in as JSON, session snapshots go out on every state change.
// Closing the socket tears the session down.
func (s *Server) handlePlayerWS(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("video")
	video, err := s.store.GetVideoByFilename(filename)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Video not found")
		} else {
			writeError(w, http.StatusInternalServerError, "failed to resolve video")
		}
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrading player socket: %v", err)
		return
	}
	defer conn.Close()

	engine := player.New(s.pipelineFactory(r))
	engine.Start(r.Context())
	defer engine.Close()

	id := s.registry.Add(engine)
	defer s.registry.Remove(id)

	engine.Bind(*video)

	// Single writer: the snapshot relay owns the connection's write
	// side until the session ends.
	writeDone := make(chan struct{})
	snapshots := engine.Subscribe()
	go func() {
		defer close(writeDone)
		for snap := range snapshots {
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(wsMessage{Type: "state", Data: snap}); err != nil {
				return
			}
		}
	}()
	defer engine.Unsubscribe(snapshots)

	for {
		var cmd playerCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("player socket closed: %v", err)
			}
			return
		}
		s.applyCommand(engine, cmd)

		select {
		case <-writeDone:
			return
		default:
		}
	}
}

func (s *Server) applyCommand(engine *player.Engine, cmd playerCommand) {
	switch cmd.Type {
	case "load":
		video, err := s.store.GetVideoByFilename(cmd.Video)
		if err != nil {
			log.Printf("loading %q: %v", cmd.Video, err)
			return
		}
		engine.Bind(*video)
	case "play":
		engine.Play()
	case "pause":
		engine.Pause()
	case "seek":
		engine.Seek(cmd.Value)
	case "volume":
		engine.SetVolume(cmd.Value)
	case "mute":
		engine.ToggleMute()
	case "fullscreen":
		engine.ToggleFullscreen()
	case "pointer_enter":
		engine.PointerEnter()
	case "pointer_leave":
		engine.PointerLeave()
	default:
		log.Printf("unknown player command %q", cmd.Type)
	}
}
