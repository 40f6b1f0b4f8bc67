package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rvflabs/rvf-go/pkg/reassembly"
	"github.com/rvflabs/rvf-go/pkg/rvf"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// sessionStatus is the JSON shape served by /api/status
type sessionStatus struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	State              string    `json:"state"`
	DatagramsReceived  uint64    `json:"datagrams_received"`
	BytesReceived      uint64    `json:"bytes_received"`
	BadDatagrams       uint64    `json:"bad_datagrams"`
	ParseErrors        uint64    `json:"parse_errors"`
	ChunksApplied      uint64    `json:"chunks_applied"`
	ChunksDropped      uint64    `json:"chunks_dropped"`
	SeqGaps            uint64    `json:"seq_gaps"`
	FramesCompleted    uint64    `json:"frames_completed"`
	FramesPartial      uint64    `json:"frames_partial"`
	LastFrameTime      time.Time `json:"last_frame_time"`
}

func newRouter(manager *rvf.Manager, log rvf.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/api/status", func(w http.ResponseWriter, req *http.Request) {
		statuses := make([]sessionStatus, 0)
		for _, session := range manager.Sessions() {
			recv := session.Receiver()
			rs := recv.Statistics()
			ms := recv.Reassembler().Statistics()
			statuses = append(statuses, sessionStatus{
				ID:                session.ID(),
				Name:              session.Name(),
				State:             recv.State().String(),
				DatagramsReceived: rs.GetDatagramsReceived(),
				BytesReceived:     rs.GetBytesReceived(),
				BadDatagrams:      rs.GetBadDatagrams(),
				ParseErrors:       rs.GetParseErrors(),
				ChunksApplied:     ms.GetChunksApplied(),
				ChunksDropped:     ms.GetChunksDropped(),
				SeqGaps:           ms.GetSeqGaps(),
				FramesCompleted:   ms.GetFramesCompleted(),
				FramesPartial:     ms.GetFramesPartial(),
				LastFrameTime:     ms.GetLastFrameTime(),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(statuses); err != nil {
			log.Error("Failed to encode status response: %v", err)
		}
	})

	r.Get("/ws/preview", func(w http.ResponseWriter, req *http.Request) {
		name := req.URL.Query().Get("session")
		session, ok := manager.GetSession(name)
		if !ok {
			http.Error(w, "unknown session", http.StatusNotFound)
			return
		}

		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			log.Warn("Preview upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		servePreview(conn, session, log)
	})

	return r
}

// previewHello is the first message on a preview socket, so clients
// know the pixel geometry before any binary frame arrives.
type previewHello struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func servePreview(conn *websocket.Conn, session *rvf.Session, log rvf.Logger) {
	sub := session.Subscribe(rvf.DefaultSubscriptionDepth)
	defer sub.Cancel()

	// Drain client messages so control frames are processed and we
	// notice a closed peer.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	first := true
	for {
		select {
		case <-done:
			return
		case item, ok := <-sub.Frames():
			if !ok {
				return
			}
			frame := item.(*reassembly.Frame)

			if first {
				hello, _ := json.Marshal(previewHello{Width: frame.Width, Height: frame.Height})
				if err := conn.WriteMessage(websocket.TextMessage, hello); err != nil {
					return
				}
				first = false
			}

			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.BinaryMessage, frame.Pixels); err != nil {
				log.Debug("Preview write failed for session %s: %v", session.Name(), err)
				return
			}
		}
	}
}
