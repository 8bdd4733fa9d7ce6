package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/StockNewsHub/internal/app"
	"github.com/LJTian/StockNewsHub/internal/batch"
	"github.com/LJTian/StockNewsHub/internal/config"
	"github.com/LJTian/StockNewsHub/internal/storage"
)

// Runner 由 app.App 实现
type Runner interface {
	Run(ctx context.Context, phase string, subjects []string) (batch.Report, error)
	Preview(ctx context.Context, phase, subject string) (app.Preview, error)
}

type Server struct {
	runner Runner
}

func NewServer(runner Runner) *Server {
	return &Server{runner: runner}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/preview/:phase", s.preview)
		v1.POST("/runs/:phase", s.run)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) preview(c *gin.Context) {
	phase := c.Param("phase")
	if phase != config.PhaseKR && phase != config.PhaseGlobal {
		fail(c, http.StatusNotFound, "unknown_phase", "phase must be kr or global")
		return
	}
	subject := strings.TrimSpace(c.Query("subject"))
	if subject == "" {
		fail(c, http.StatusBadRequest, "invalid_argument", "subject is required")
		return
	}

	p, err := s.runner.Preview(c.Request.Context(), phase, subject)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	ok(c, p)
}

type runRequest struct {
	Subjects []string `json:"subjects"`
}

// run 同步执行一个批次；请求体可选，subjects 为空时读取工作表
func (s *Server) run(c *gin.Context) {
	phase := c.Param("phase")
	switch phase {
	case config.PhaseKR, config.PhaseGlobal, config.PhaseCNBC:
	default:
		fail(c, http.StatusNotFound, "unknown_phase", "phase must be kr, global or cnbc")
		return
	}

	var req runRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "invalid_argument", err.Error())
			return
		}
	}
	var subjects []string
	for _, s := range req.Subjects {
		if s = strings.TrimSpace(s); s != "" {
			subjects = append(subjects, s)
		}
	}

	report, err := s.runner.Run(c.Request.Context(), phase, subjects)
	switch {
	case err == nil:
		ok(c, report)
	case errors.Is(err, storage.ErrLocked):
		fail(c, http.StatusConflict, "locked", err.Error())
	case errors.Is(err, app.ErrUnknownPhase):
		fail(c, http.StatusNotFound, "unknown_phase", err.Error())
	default:
		// 部分写入失败时仍返回报告
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "run_failed",
			"message": err.Error(),
			"data":    report,
		})
	}
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    data,
	})
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}
