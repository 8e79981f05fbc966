/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"chainguard.dev/agentbench/logmonitor"
	"chainguard.dev/agentbench/logmonitor/evaluation"
	"github.com/chainguard-dev/clog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const requestIDHeader = "X-Request-ID"

func newServeCmd() *cobra.Command {
	var f agentFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept log messages over HTTP and serve metrics",
		Long: `serve listens on PORT. POST /logs with {"log_message": "..."} runs the
message through the workflow and returns the final state. GET /metrics
serves the token, tool call and evaluation metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			rt, err := setup(ctx, false)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			agent, closeFn, err := rt.newAgent(ctx, f)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeFn(); err != nil {
					clog.WarnContext(ctx, "Closing MCP sessions", "error", err)
				}
			}()

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", rt.cfg.Server.Port),
				Handler:           newRouter(ctx, agent, rt.tel.MetricsHandler()),
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				clog.InfoContext(ctx, "Listening", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
	f.register(cmd)
	return cmd
}

type logRequest struct {
	LogMessage string `json:"log_message"`
}

type logResponse struct {
	RequestID string           `json:"request_id"`
	State     logmonitor.State `json:"state"`
	Error     string           `json:"error,omitempty"`
}

// newRouter returns the ingest routes. Request contexts carry ctx's logger
// tagged with the request id.
func newRouter(ctx context.Context, p evaluation.Processor, metrics http.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(ctx))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics))
	r.POST("/logs", func(c *gin.Context) {
		id := c.GetString("request_id")

		var req logRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"request_id": id, "error": err.Error()})
			return
		}

		state, err := p.Process(c.Request.Context(), req.LogMessage)
		if err != nil {
			clog.ErrorContext(c.Request.Context(), "Processing failed", "error", err)
			c.JSON(http.StatusInternalServerError, logResponse{RequestID: id, State: state, Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, logResponse{RequestID: id, State: state})
	})
	return r
}

func requestLogger(ctx context.Context) gin.HandlerFunc {
	base := clog.FromContext(ctx)
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)

		log := base.With("request_id", id, "method", c.Request.Method, "path", c.FullPath())
		c.Request = c.Request.WithContext(clog.WithLogger(c.Request.Context(), log))

		start := time.Now()
		c.Next()
		log.Debug("Handled request", "status", c.Writer.Status(), "duration", time.Since(start))
	}
}
