package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/bluecall/callsim_backend/internal/agent"
	"github.com/bluecall/callsim_backend/internal/audio"
	"github.com/bluecall/callsim_backend/internal/database"
	"github.com/bluecall/callsim_backend/internal/llm"
	"github.com/bluecall/callsim_backend/internal/logging"
	"github.com/bluecall/callsim_backend/internal/persona"
	"github.com/bluecall/callsim_backend/internal/simulation"
	"github.com/bluecall/callsim_backend/internal/types"
)

type Server struct {
	router     *gin.Engine
	cfg        Config
	db         database.Store
	manager    *SimulationManager
	tts        *audio.TTSService
	audioCache map[string]audioCache
	cacheMutex sync.RWMutex
}

type audioCache struct {
	data      []byte
	timestamp time.Time
}

// StartRequest is the first message a WebSocket client sends.
type StartRequest struct {
	CallerType          string                  `json:"caller_type"`
	MaxTurns            int                     `json:"max_turns"`
	PersuasionThreshold float64                 `json:"persuasion_threshold"`
	Scenario            *persona.FamilyScenario `json:"scenario"`
}

type controlMessage struct {
	Type string `json:"type"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
	EnableCompression: true,
}

// NewServer creates a new HTTP server with WebSocket support
func NewServer(cfg Config, db database.Store, gen llm.Generator) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware())
	router.Use(ErrorHandler())

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, Range")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, HEAD")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range, Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	server := &Server{
		router:     router,
		cfg:        cfg,
		db:         db,
		manager:    NewSimulationManager(db, gen),
		audioCache: make(map[string]audioCache),
	}

	if cfg.EnableVoice && cfg.OpenAIKey != "" {
		server.tts = audio.NewTTSService(cfg.OpenAIKey)
	}

	// Setup routes
	router.GET("/ws/simulation", server.handleSimulationWebSocket)
	router.GET("/api/audio/:id", server.handleAudioStream)
	router.GET("/api/status/:id", server.handleStatus)
	router.GET("/api/simulations", server.handleListSimulations)
	router.GET("/api/simulations/:id", server.handleGetSimulation)
	router.POST("/api/simulations/:id/stop", server.handleStopSimulation)
	router.GET("/api/scenarios", server.handleListScenarios)

	return server
}

// Manager exposes the simulation manager, mainly for tests.
func (s *Server) Manager() *SimulationManager {
	return s.manager
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// handleSimulationWebSocket drives one simulation over a WebSocket: the
// client sends a StartRequest, receives the ordered event stream, and may
// send {"type":"stop"} to cancel between turns.
func (s *Server) handleSimulationWebSocket(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Error("Failed to upgrade connection", map[string]interface{}{"error": err.Error()})
		return
	}
	defer ws.Close()

	var req StartRequest
	if err := ws.ReadJSON(&req); err != nil {
		logging.Error("Invalid start request", map[string]interface{}{"error": err.Error()})
		return
	}

	callerType, err := types.ParseCallerType(req.CallerType)
	if err != nil {
		callerType = types.CallerScammer
	}

	cfg := simulation.Config{
		CallerType:          callerType,
		MaxTurns:            req.MaxTurns,
		PersuasionThreshold: req.PersuasionThreshold,
		Scenario:            req.Scenario,
		TurnDelay:           s.cfg.TurnDelay,
	}

	// One write mutex per connection; the event sink and the final report
	// write from the simulation goroutine.
	var wsWriteMutex sync.Mutex
	writeJSON := func(v interface{}) {
		wsWriteMutex.Lock()
		defer wsWriteMutex.Unlock()
		if err := ws.WriteJSON(v); err != nil {
			logging.Error("Failed to write WebSocket message", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	sink := simulation.SinkFunc(func(event simulation.Event) {
		writeJSON(event)
		s.speakEvent(event, writeJSON)
	})

	done := make(chan struct{})
	session, err := s.manager.StartSimulation(cfg, sink, func(sess *Session) {
		if report := sess.Report(); report != nil {
			writeJSON(gin.H{"type": "evaluation", "report": report})
		}
		if sess.Status() == StatusFailed {
			writeJSON(gin.H{"type": "error", "message": sess.ErrMsg()})
		}
		close(done)
	})
	if err != nil {
		writeJSON(gin.H{"type": "error", "message": err.Error()})
		return
	}

	logging.LogWebSocketEvent("client_connected", session.ID, c.ClientIP(), nil)

	// Read loop: watch for a stop request or the client going away.
	go func() {
		for {
			var msg controlMessage
			if err := ws.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logging.Error("WebSocket error", map[string]interface{}{"error": err.Error()})
				}
				// Client gone; stop the simulation to free the generator.
				s.manager.StopSimulation(session.ID)
				return
			}
			if msg.Type == "stop" {
				s.manager.StopSimulation(session.ID)
			}
		}
	}()

	<-done
	logging.LogWebSocketEvent("session_complete", session.ID, c.ClientIP(), map[string]interface{}{
		"status": session.Status(),
	})
}

// speakEvent renders a spoken version of caller/senior messages and sends
// the client a URL to fetch the audio from. Voice is best-effort; failures
// are logged and skipped.
func (s *Server) speakEvent(event simulation.Event, writeJSON func(interface{})) {
	if s.tts == nil || event.Message == "" {
		return
	}

	var voice types.Voice
	var speaker string
	switch event.Type {
	case simulation.EventCallerMessage, simulation.EventScammerGaveUp:
		voice, speaker = s.cfg.CallerVoice, "caller"
	case simulation.EventSeniorMessage:
		voice, speaker = s.cfg.SeniorVoice, "senior"
	default:
		return
	}
	if event.Message == agent.HandoffSentinel {
		return
	}

	data, err := s.tts.GenerateAudio(context.Background(), event.Message, voice)
	if err != nil {
		logging.Error("Failed to generate audio", map[string]interface{}{
			"simulation_id": event.SimulationID,
			"error":         err.Error(),
		})
		return
	}

	audioID := fmt.Sprintf("%s_%d", speaker, time.Now().UnixNano())
	s.cacheMutex.Lock()
	s.audioCache[audioID] = audioCache{data: data, timestamp: time.Now()}
	s.cacheMutex.Unlock()

	writeJSON(gin.H{
		"type":     "audio",
		"speaker":  speaker,
		"turn":     event.Turn,
		"audioUrl": fmt.Sprintf("/api/audio/%s", audioID),
		"duration": audio.EstimateSpokenDuration(event.Message),
	})
}

// handleAudioStream streams audio data for a given ID
func (s *Server) handleAudioStream(c *gin.Context) {
	audioID := c.Param("id")

	s.cacheMutex.RLock()
	cache, exists := s.audioCache[audioID]
	s.cacheMutex.RUnlock()

	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Audio not found"})
		return
	}

	c.Header("Cache-Control", "public, max-age=31536000")
	c.Data(http.StatusOK, "audio/mp3", cache.data)

	// Clean up old cache entries in a separate goroutine
	go s.cleanupCache()
}

// cleanupCache removes old cache entries
func (s *Server) cleanupCache() {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	threshold := time.Now().Add(-1 * time.Hour)
	for id, cache := range s.audioCache {
		if cache.timestamp.Before(threshold) {
			delete(s.audioCache, id)
		}
	}
}

// handleStatus reports the live state of a session
func (s *Server) handleStatus(c *gin.Context) {
	session, exists := s.manager.GetSession(c.Param("id"))
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Simulation not found"})
		return
	}

	resp := gin.H{
		"id":          session.ID,
		"caller_type": session.CallerType,
		"status":      session.Status(),
	}
	if result := session.Result(); result != nil {
		resp["end_reason"] = result.EndReason
		resp["total_turns"] = result.TotalTurns
	}
	if report := session.Report(); report != nil {
		resp["report"] = report
	}
	c.JSON(http.StatusOK, resp)
}

// handleStopSimulation requests cancellation of a running session
func (s *Server) handleStopSimulation(c *gin.Context) {
	id := c.Param("id")
	if !s.manager.StopSimulation(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No running simulation with that id"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stop requested", "id": id})
}

// handleListSimulations returns persisted simulation summaries
func (s *Server) handleListSimulations(c *gin.Context) {
	records, err := s.db.ListSimulations(100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"simulations": records})
}

// handleGetSimulation returns one persisted simulation with its transcript
func (s *Server) handleGetSimulation(c *gin.Context) {
	record, err := s.db.GetSimulation(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}

// handleListScenarios returns the preset family scenarios
func (s *Server) handleListScenarios(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"scenarios": persona.PresetScenarios})
}

func (s *Server) Run() error {
	addr := ":" + s.cfg.Port
	logging.Info("Starting server", map[string]interface{}{"addr": addr})
	return s.router.Run(addr)
}
