// Package server exposes the report pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/maastricht-university/clinote/config"
	"github.com/maastricht-university/clinote/logger"
	"github.com/maastricht-university/clinote/orchestrator"
	"github.com/maastricht-university/clinote/transcript"
)

// ReportRequest is the JSON body of POST /api/v1/reports. A text/plain body is
// taken as the transcript itself.
type ReportRequest struct {
	Transcript string `json:"transcript"`
	Persist    bool   `json:"persist"`
}

type Server struct {
	e        *echo.Echo
	pipeline *orchestrator.Pipeline
	cfg      config.Server
	outputs  string
}

func New(p *orchestrator.Pipeline, cfg config.Server, outputs string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(Recovery())
	e.Use(RequestID())
	e.Use(Logger())
	if cfg.MaxRequestBytes > 0 {
		e.Use(echomw.BodyLimit(strconv.FormatInt(cfg.MaxRequestBytes, 10)))
	}

	s := &Server{e: e, pipeline: p, cfg: cfg, outputs: outputs}
	e.GET("/health", s.health)
	api := e.Group("/api/v1")
	api.POST("/reports", s.createReport)
	return s
}

func (s *Server) Handler() http.Handler { return s.e }

func (s *Server) health(c echo.Context) error {
	status, code := "ok", http.StatusOK
	if err := s.pipeline.Check(); err != nil {
		status, code = err.Error(), http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]string{"status": status})
}

func (s *Server) createReport(c echo.Context) error {
	var req ReportRequest
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ct, echo.MIMETextPlain) {
		raw, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		req.Transcript = string(raw)
		req.Persist = c.QueryParam("persist") == "true"
	} else if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	report, err := s.pipeline.Process(c.Request().Context(), req.Transcript)
	var fe *transcript.FormatError
	var ie *orchestrator.IncompletePipelineError
	switch {
	case errors.As(err, &fe):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, fe.Error())
	case errors.As(err, &ie):
		return echo.NewHTTPError(http.StatusServiceUnavailable, ie.Error())
	case err != nil:
		return err
	}

	if req.Persist {
		rid, _ := c.Get("request_id").(string)
		dir, err := orchestrator.RunDir(s.outputs, rid)
		if err == nil {
			err = orchestrator.Persist(dir, report)
		}
		if err != nil {
			return err
		}
		c.Response().Header().Set("X-Report-Dir", dir)
	}
	return c.JSON(http.StatusOK, report)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.e,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	errc := make(chan error, 1)
	go func() {
		logger.WithField("addr", s.cfg.Addr).Info("starting server")
		errc <- s.e.StartServer(srv)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Log.Info("server stopped")
	return nil
}
