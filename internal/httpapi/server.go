package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/AndreDVil/p05-chat-memory/internal/memory"
)

// Server is the gin-backed HTTP surface over a SessionRegistry.
type Server struct {
	registry  *SessionRegistry
	jwtSecret []byte
	router    *gin.Engine
}

// NewServer wires session, message, summary, and window routes. jwtSecret
// may be empty, in which case the auth middleware is a no-op passthrough.
func NewServer(registry *SessionRegistry, jwtSecret []byte) *Server {
	s := &Server{registry: registry, jwtSecret: jwtSecret}
	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(s.authMiddleware())

	s.router.POST("/sessions", s.createSession)
	s.router.POST("/sessions/:id/messages", s.postMessage)
	s.router.GET("/sessions/:id/summary", s.getSummary)
	s.router.GET("/sessions/:id/window", s.getWindow)
	return s
}

// Handler returns the underlying http.Handler for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// authMiddleware gates every route with a bearer JWT when a secret is
// configured; otherwise it is a passthrough.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(s.jwtSecret) == 0 {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		tokenString := header[len(prefix):]
		_, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			return s.jwtSecret, nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Next()
	}
}

func (s *Server) createSession(c *gin.Context) {
	id := uuid.NewString()
	if _, err := s.registry.GetOrCreate(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session_id": id})
}

type postMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

type postMessageResponse struct {
	Reply string               `json:"reply"`
	Fold  memory.TriggerResult `json:"fold"`
}

func (s *Server) postMessage(c *gin.Context) {
	sessionID := c.Param("id")

	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := s.registry.GetOrCreate(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	reply, fold, err := m.SubmitUser(c.Request.Context(), req.Text)
	if err != nil {
		if errors.Is(err, memory.ErrInvariantViolation) {
			s.registry.Drop(sessionID)
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, postMessageResponse{Reply: reply, Fold: fold})
}

func (s *Server) getSummary(c *gin.Context) {
	m, err := s.registry.GetOrCreate(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": m.SnapshotSummary()})
}

func (s *Server) getWindow(c *gin.Context) {
	m, err := s.registry.GetOrCreate(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"window": m.SnapshotWindow()})
}
