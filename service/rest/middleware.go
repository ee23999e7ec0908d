// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package rest

import (
	"net/http"
	"net/netip"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	v1 "github.com/p1nant0m/packet-eater/pkg/api/v1"
)

// Logger logs every request through logrus.
func Logger(entry *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}
		if len(c.Errors) > 0 {
			fields["err"] = c.Errors.String()
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.WithFields(fields).Warning("request failed")
			return
		}
		entry.WithFields(fields).Debug("request served")
	}
}

// BodyLimit caps the request body size.
func BodyLimit(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

// LocalOnly rejects clients that are not on the loopback interface.
func LocalOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		addr, err := netip.ParseAddr(c.ClientIP())
		if err != nil || !addr.Unmap().IsLoopback() {
			c.AbortWithStatusJSON(http.StatusForbidden, v1.StatusResponse{
				Status:  v1.StatusError,
				Message: "admin endpoints are only served to local clients",
			})
			return
		}
		c.Next()
	}
}
