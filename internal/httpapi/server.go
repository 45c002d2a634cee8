// Package httpapi exposes the trade pipeline over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/FinCodeAI/sol-tx/internal/execution"
	"github.com/FinCodeAI/sol-tx/internal/metrics"
)

// Executor runs one trade instruction.
type Executor interface {
	Execute(ctx context.Context, in execution.Instruction) execution.Result
}

// History lists recently recorded results.
type History interface {
	Snapshot() []execution.Result
}

// Server routes trade requests to an Executor.
type Server struct {
	log     zerolog.Logger
	exec    Executor
	history History
	engine  *gin.Engine
}

// New builds the gin engine. history may be nil.
func New(log zerolog.Logger, exec Executor, history History) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{log: log, exec: exec, history: history, engine: gin.New()}
	s.engine.Use(gin.Recovery(), s.requestLog)

	s.engine.POST("/tx", s.handleTrade)
	s.engine.POST("/trade", s.handleTrade)
	s.engine.GET("/trades", s.handleTrades)
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) handleTrade(c *gin.Context) {
	var in execution.Instruction
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, execution.Result{
			Status:      execution.StatusError,
			Error:       execution.KindInvalidInstruction,
			ErrorDetail: "decode request: " + err.Error(),
			At:          time.Now().UTC(),
		})
		return
	}
	res := s.exec.Execute(c.Request.Context(), in)
	c.JSON(StatusCode(res.Error), res)
}

func (s *Server) handleTrades(c *gin.Context) {
	out := []execution.Result{}
	if s.history != nil {
		out = s.history.Snapshot()
	}
	c.JSON(http.StatusOK, gin.H{"trades": out})
}

func (s *Server) requestLog(c *gin.Context) {
	started := time.Now()
	c.Next()
	s.log.Info().
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("ip", c.ClientIP()).
		Int("status", c.Writer.Status()).
		Dur("cost", time.Since(started)).
		Msg("request")
}

// StatusCode maps a failure kind onto an HTTP status.
func StatusCode(kind execution.Kind) int {
	switch kind {
	case "":
		return http.StatusOK
	case execution.KindInvalidInstruction, execution.KindInvalidAmount, execution.KindRiskLimitExceeded:
		return http.StatusBadRequest
	case execution.KindInsufficientBalance:
		return http.StatusUnprocessableEntity
	case execution.KindBalanceQueryFailed:
		return http.StatusServiceUnavailable
	case execution.KindNoRouteAvailable, execution.KindMalformedRoutePayload, execution.KindBroadcastFailed:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
