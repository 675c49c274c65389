// Package server exposes the session over HTTP: an embedded dashboard, a
// websocket render surface, and a REST API for filter, search, import and
// export operations.
package server

import (
	"embed"
	"io/fs"
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rkot1/rtt-viewer/internal/aggregator"
	"github.com/rkot1/rtt-viewer/internal/ingest"
	"github.com/rkot1/rtt-viewer/internal/model"
	"github.com/rkot1/rtt-viewer/internal/parser"
	"github.com/rkot1/rtt-viewer/internal/profile"
	"github.com/rkot1/rtt-viewer/internal/search"
)

//go:embed all:web
var webFS embed.FS

// Server holds the Gin engine and the session it fronts.
type Server struct {
	engine   *gin.Engine
	coord    *ingest.Coordinator
	agg      *aggregator.Aggregator
	profiles *profile.Store
	clients  *wsClients
	debounce *search.Debouncer
	logger   *zap.Logger
	addr     string
}

// New creates the dashboard server and installs its websocket fan-out as the
// coordinator's render surface.
func New(coord *ingest.Coordinator, agg *aggregator.Aggregator, profiles *profile.Store, addr string, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false

	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		engine:   engine,
		coord:    coord,
		agg:      agg,
		profiles: profiles,
		clients:  newWSClients(logger),
		debounce: search.NewDebouncer(search.DefaultDebounce),
		logger:   logger,
		addr:     addr,
	}

	coord.SetRenderer(s.clients)
	coord.SetObservers(ingest.Observers{
		TagsChanged:      s.clients.tagsChanged,
		TerminalsChanged: s.clients.terminalsChanged,
		CountChanged:     s.clients.countChanged,
	})

	s.setupRoutes()
	return s
}

// serveEmbedded reads a file from the embedded FS once and serves it with
// the given content type.
func serveEmbedded(webContent fs.FS, name string, contentType string) gin.HandlerFunc {
	data, err := fs.ReadFile(webContent, name)
	return func(c *gin.Context) {
		if err != nil {
			c.String(http.StatusNotFound, "file not found: %s", name)
			return
		}
		c.Data(http.StatusOK, contentType, data)
	}
}

func (s *Server) setupRoutes() {
	webContent, _ := fs.Sub(webFS, "web")

	s.engine.GET("/", serveEmbedded(webContent, "index.html", "text/html; charset=utf-8"))
	s.engine.GET("/style.css", serveEmbedded(webContent, "style.css", "text/css; charset=utf-8"))
	s.engine.GET("/app.js", serveEmbedded(webContent, "app.js", "application/javascript; charset=utf-8"))

	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"entries": s.coord.Len(),
			"clients": s.clients.count(),
		})
	})

	s.engine.GET("/ws", s.handleWebSocket)

	api := s.engine.Group("/api")
	api.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.agg.Snapshot())
	})
	api.GET("/state", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.coord.State())
	})
	api.GET("/entries", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.coord.Visible())
	})
	api.GET("/matches", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.coord.Matches())
	})

	api.POST("/filter/level", s.handleToggleLevel)
	api.POST("/filter/tag", s.handleToggleTag)
	api.POST("/filter/terminal", s.handleToggleTerminal)

	api.POST("/search", s.handleSearch)
	api.POST("/search/mode", func(c *gin.Context) {
		mode := s.coord.CycleSearchMode()
		c.JSON(http.StatusOK, gin.H{"mode": mode.String()})
	})
	api.POST("/search/next", func(c *gin.Context) {
		id, ok := s.coord.SearchNext()
		c.JSON(http.StatusOK, matchResponse(id, ok, s.coord.State()))
	})
	api.POST("/search/prev", func(c *gin.Context) {
		id, ok := s.coord.SearchPrev()
		c.JSON(http.StatusOK, matchResponse(id, ok, s.coord.State()))
	})

	api.POST("/entries", s.handleAppendEntry)
	api.POST("/import", s.handleImport)
	api.GET("/export", s.handleExport)
	api.POST("/clear", func(c *gin.Context) {
		s.coord.Clear()
		c.Status(http.StatusNoContent)
	})

	api.GET("/profiles", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.profiles.List())
	})
	api.PUT("/profiles", s.handleSaveProfile)
	api.DELETE("/profiles/:name", s.handleDeleteProfile)

	// pprof profiling endpoints.
	s.engine.GET("/debug/pprof/", gin.WrapF(pprof.Index))
	s.engine.GET("/debug/pprof/cmdline", gin.WrapF(pprof.Cmdline))
	s.engine.GET("/debug/pprof/profile", gin.WrapF(pprof.Profile))
	s.engine.GET("/debug/pprof/symbol", gin.WrapF(pprof.Symbol))
	s.engine.GET("/debug/pprof/trace", gin.WrapF(pprof.Trace))
	s.engine.GET("/debug/pprof/heap", gin.WrapH(pprof.Handler("heap")))
	s.engine.GET("/debug/pprof/goroutine", gin.WrapH(pprof.Handler("goroutine")))
}

func matchResponse(id uint64, ok bool, state ingest.SessionState) gin.H {
	resp := gin.H{
		"matches": state.SearchMatches,
		"current": state.CurrentMatch,
	}
	if ok {
		resp["id"] = id
	}
	return resp
}

func (s *Server) handleToggleLevel(c *gin.Context) {
	var req struct {
		Level string `json:"level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.coord.ToggleLevel(strings.ToLower(req.Level))
	c.JSON(http.StatusOK, s.coord.State())
}

func (s *Server) handleToggleTag(c *gin.Context) {
	var req struct {
		Tag     string `json:"tag" binding:"required"`
		Exclude bool   `json:"exclude"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Exclude {
		s.coord.ToggleExcludeTag(req.Tag)
	} else {
		s.coord.ToggleTag(req.Tag)
	}
	c.JSON(http.StatusOK, s.coord.State())
}

func (s *Server) handleToggleTerminal(c *gin.Context) {
	var req struct {
		Terminal *int `json:"terminal" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.coord.ToggleTerminal(*req.Terminal)
	c.JSON(http.StatusOK, s.coord.State())
}

// handleSearch coalesces query updates through the debouncer so fast typing
// triggers one recompute, not one per keystroke.
func (s *Server) handleSearch(c *gin.Context) {
	var req struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	query := req.Query
	s.debounce.Trigger(func() {
		s.coord.SetSearchQuery(query)
	})
	c.Status(http.StatusAccepted)
}

// handleAppendEntry ingests one structured entry, skipping the heuristic
// line recognizers. Clients that already know the level and tag use this
// instead of POSTing raw text.
func (s *Server) handleAppendEntry(c *gin.Context) {
	var cand model.Candidate
	if err := c.ShouldBindJSON(&cand); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.coord.Append(cand)
	c.JSON(http.StatusOK, s.coord.State())
}

func (s *Server) handleImport(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	text := string(body)
	name := c.Query("name")
	var importErr error
	if format := parser.Format(c.Query("format")); format != "" {
		importErr = s.coord.Import(format, text)
	} else {
		importErr = s.coord.ImportAuto(text, name)
	}
	if importErr != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": importErr.Error()})
		return
	}
	c.JSON(http.StatusOK, s.coord.State())
}

func (s *Server) handleExport(c *gin.Context) {
	format := parser.Format(c.DefaultQuery("format", "json"))
	data, err := s.coord.Export(format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contentType := "text/plain; charset=utf-8"
	switch format {
	case parser.FormatJSON:
		contentType = "application/json"
	case parser.FormatCSV:
		contentType = "text/csv"
	}
	c.Header("Content-Disposition", `attachment; filename="rtt-log.`+string(format)+`"`)
	c.Data(http.StatusOK, contentType, data)
}

func (s *Server) handleSaveProfile(c *gin.Context) {
	var p profile.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if p.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile name is required"})
		return
	}
	profiles, err := s.profiles.Upsert(p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profiles)
}

func (s *Server) handleDeleteProfile(c *gin.Context) {
	profiles, err := s.profiles.Delete(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// Start runs the server. Blocks until the listener fails.
func (s *Server) Start() error {
	s.logger.Info("dashboard listening", zap.String("addr", s.addr))
	return s.engine.Run(s.addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}
