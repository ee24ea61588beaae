package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"doc-search/service/query"
	"doc-search/telemetry"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "requestID"

	shutdownTimeout = 10 * time.Second
)

type server struct {
	engine *Engine
	logger *slog.Logger
}

// NewRouter exposes the engine over HTTP:
//
//	POST /basic     {"query": "..."} -> best matching document text
//	POST /with-gpt  {"query": "..."} -> answer synthesized from the best matching document
//	GET  /healthz
func NewRouter(engine *Engine, logger *slog.Logger) *gin.Engine {
	s := &server{
		engine: engine,
		logger: logger,
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestIDMiddleware(),
		otelgin.Middleware(telemetry.ServiceName),
		s.loggingMiddleware(),
		cors.Default(), // Allow all origins
	)

	router.POST("/basic", s.basicHandler)
	router.POST("/with-gpt", s.synthesizedHandler)
	router.GET("/healthz", s.healthHandler)

	return router
}

// Run serves handler on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("unexpected error in http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

func (s *server) basicHandler(ctx *gin.Context) {
	var request query.Request
	if err := ctx.ShouldBindJSON(&request); err != nil {
		s.logger.WarnContext(ctx.Request.Context(), "failed to bind request to expected object", slog.Any("error", err))
		ctx.JSON(http.StatusBadRequest, query.ErrorResponse{Error: err.Error(), Kind: string(KindInvalidInput)})
		return
	}

	response, err := s.engine.BasicSearch(ctx.Request.Context(), request.Query)
	if err != nil {
		s.writeError(ctx, "basic search failed", err)
		return
	}
	ctx.JSON(http.StatusOK, &response)
}

func (s *server) synthesizedHandler(ctx *gin.Context) {
	var request query.Request
	if err := ctx.ShouldBindJSON(&request); err != nil {
		s.logger.WarnContext(ctx.Request.Context(), "failed to bind request to expected object", slog.Any("error", err))
		ctx.JSON(http.StatusBadRequest, query.ErrorResponse{Error: err.Error(), Kind: string(KindInvalidInput)})
		return
	}

	response, err := s.engine.SynthesizedSearch(ctx.Request.Context(), request.Query)
	if err != nil {
		s.writeError(ctx, "synthesized search failed", err)
		return
	}
	ctx.JSON(http.StatusOK, &response)
}

func (s *server) healthHandler(ctx *gin.Context) {
	store := s.engine.Store()
	ctx.JSON(http.StatusOK, query.Health{
		Status:           "ok",
		Documents:        store.Len(),
		Dimensions:       store.Dimensions(),
		EmbeddingModel:   store.Model(),
		SynthesisEnabled: s.engine.SynthesisEnabled(),
	})
}

func (s *server) writeError(ctx *gin.Context, msg string, err error) {
	kind := KindOf(err)
	status := kind.StatusCode()

	attrs := []any{
		slog.Any("error", err),
		slog.String("kind", string(kind)),
		slog.String("request_id", ctx.GetString(requestIDKey)),
	}
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(ctx.Request.Context(), msg, attrs...)
	} else {
		s.logger.WarnContext(ctx.Request.Context(), msg, attrs...)
	}

	ctx.JSON(status, query.ErrorResponse{Error: PublicMessage(err), Kind: string(kind)})
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestID := ctx.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx.Set(requestIDKey, requestID)
		ctx.Header(requestIDHeader, requestID)
		ctx.Next()
	}
}

func (s *server) loggingMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		s.logger.InfoContext(ctx.Request.Context(), "request",
			slog.String("request_id", ctx.GetString(requestIDKey)),
			slog.String("method", ctx.Request.Method),
			slog.String("path", ctx.Request.URL.Path),
			slog.Int("status", ctx.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}
