// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/p1nant0m/packet-eater/config"
	"github.com/p1nant0m/packet-eater/internal/log"
	"github.com/p1nant0m/packet-eater/service/rest/controller/v1/stats"
	"github.com/p1nant0m/packet-eater/service/rest/controller/v1/submitter"
	"github.com/p1nant0m/packet-eater/service/rest/controller/v1/upload"
	srvv1 "github.com/p1nant0m/packet-eater/service/rest/service/v1"
)

// NewRouter builds the gin engine serving uploads, statistics and the
// loopback-only admin endpoints.
func NewRouter(srv srvv1.Service, cfg config.ServerConfig) (*gin.Engine, error) {
	gin.SetMode(cfg.Mode)

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	r.Use(gin.Recovery(), Logger(log.Component("http")), BodyLimit(cfg.MaxBodyBytes))

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/packets")
	})

	uploadController := upload.NewUploadController(srv)
	r.POST("/upload", uploadController.Create)
	r.PUT("/upload", uploadController.Create)

	statsController := stats.NewStatsController(srv)
	r.GET("/packets", statsController.Get)

	apiv1 := r.Group("/api/v1")
	{
		apiv1.GET("/stats", statsController.Get)

		submitterController := submitter.NewSubmitterController(srv)
		admin := apiv1.Group("/submitters", LocalOnly())
		admin.GET("", submitterController.List)
		admin.GET("/:identifier", submitterController.Get)
		admin.PUT("/:identifier", submitterController.Update)
		admin.DELETE("/:identifier", submitterController.Delete)
	}

	return r, nil
}

// RestServer serves the router until its context is cancelled.
type RestServer struct {
	server *http.Server
	cfg    config.ServerConfig
	log    *logrus.Entry
}

func NewRestServer(srv srvv1.Service, cfg config.ServerConfig) (*RestServer, error) {
	router, err := NewRouter(srv, cfg)
	if err != nil {
		return nil, err
	}
	return &RestServer{
		server: &http.Server{
			Addr:         cfg.Listen,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		cfg: cfg,
		log: log.Component("http"),
	}, nil
}

// Run listens until ctx is done and then shuts down gracefully.
func (s *RestServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("listen", s.cfg.Listen).Info("rest server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.log.Info("rest server shutting down")
	return s.server.Shutdown(shutdownCtx)
}
