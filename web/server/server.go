package server

import (
	"encoding/binary"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kellandavis/lumenmlt/log"
)

var logger = log.New("web-server")

// Server serves the live front framebuffer over a websocket connection
// and static assets for the browser presenter.
type Server struct {
	port      int
	driver    *ProgressiveDriver
	upgrader  websocket.Upgrader
	frameRate time.Duration
}

// NewServer builds a server around an already-running ProgressiveDriver.
func NewServer(port int, driver *ProgressiveDriver) *Server {
	return &Server{
		port:      port,
		driver:    driver,
		frameRate: 100 * time.Millisecond,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1 << 20,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Start serves static/ and the /ws framebuffer stream until the process
// exits or ListenAndServe returns an error.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir("static/")))
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)

	addr := fmt.Sprintf(":%d", s.port)
	logger.Noticef("web server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleWebSocket streams the driver's front framebuffer as a sequence
// of binary messages: a small header (width, height uint32) followed by
// the RGB float pixels reinterpreted as raw bytes. The client is
// responsible for tonemapping display scaling if it wants anything
// beyond the already-corrected [0,1] values the core produces.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warningf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(s.frameRate)
	defer ticker.Stop()

	for range ticker.C {
		frame := s.driver.Front()
		payload := encodeFrame(frame.Width, frame.Height, frame.Pixels)
		if err := conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
			logger.Debugf("websocket write stopped: %v", err)
			return
		}
	}
}

func encodeFrame(width, height int, pixels []float32) []byte {
	buf := make([]byte, 8+len(pixels)*4)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(width))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(height))
	for i, p := range pixels {
		binary.LittleEndian.PutUint32(buf[8+i*4:12+i*4], math.Float32bits(p))
	}
	return buf
}
