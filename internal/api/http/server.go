// Package http serves the read-only admin API: health, token mint and
// report rollups over the data the bot produces.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/taroverse/engagebot/internal/logger"
	"github.com/taroverse/engagebot/internal/model"
	"github.com/taroverse/engagebot/internal/service"
)

type Server struct {
	report   *service.Report
	tokens   model.TokenManager
	adminKey string
	logger   *logger.Logger
	srv      *http.Server
}

func NewServer(report *service.Report, tokens model.TokenManager, adminKey string, logger *logger.Logger) *Server {
	return &Server{
		report:   report,
		tokens:   tokens,
		adminKey: adminKey,
		logger:   logger,
	}
}

// Handler builds the gin engine with all routes registered.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.health)
	r.POST("/api/token", s.mintToken)

	authorized := r.Group("/api", s.authenticate)
	authorized.GET("/reports/summary", s.summary)
	authorized.GET("/reports/drip", s.drip)
	authorized.GET("/reports/users", s.users)

	return r
}

// Start blocks serving HTTP until the listener fails or Stop is called.
func (s *Server) Start(port string) error {
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: s.Handler(),
	}

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("admin api server failed: %w", err)
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type tokenRequest struct {
	Key string `json:"key" binding:"required"`
}

func (s *Server) mintToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	if s.adminKey == "" || req.Key != s.adminKey {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
		return
	}

	tokenString, err := s.tokens.Generate("admin")
	if err != nil {
		s.logger.Error("admin api: failed to generate token", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": tokenString})
}

func (s *Server) authenticate(c *gin.Context) {
	header := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == "" || tokenString == header {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	if _, err := s.tokens.Parse(tokenString); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	c.Next()
}

func (s *Server) summary(c *gin.Context) {
	summary, err := s.report.Summary(c.Request.Context())
	if err != nil {
		s.logger.Error("admin api: failed to build summary", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (s *Server) drip(c *gin.Context) {
	stats, err := s.report.Drip(c.Request.Context())
	if err != nil {
		s.logger.Error("admin api: failed to build drip report", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	type row struct {
		Segment     model.Segment `json:"segment"`
		DayOffset   int           `json:"day_offset"`
		Sent        int           `json:"sent"`
		Failed      int           `json:"failed"`
		Conversions int           `json:"conversions"`
	}

	rows := make([]row, 0, len(stats))
	for _, st := range stats {
		rows = append(rows, row(st))
	}

	c.JSON(http.StatusOK, gin.H{"offsets": rows})
}

func (s *Server) users(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	users, err := s.report.Users(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("admin api: failed to list users", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	type row struct {
		TelegramID     int64         `json:"telegram_id"`
		Username       string        `json:"username"`
		Segment        model.Segment `json:"segment"`
		FirstContactAt string        `json:"first_contact_at"`
		LastContext    string        `json:"last_context"`
	}

	rows := make([]row, 0, len(users))
	for _, u := range users {
		rows = append(rows, row{
			TelegramID:     u.TelegramID,
			Username:       u.Username,
			Segment:        u.Segment,
			FirstContactAt: u.FirstContactAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			LastContext:    u.LastContext,
		})
	}

	c.JSON(http.StatusOK, gin.H{"users": rows})
}
