// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package stats

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	v1 "github.com/p1nant0m/packet-eater/pkg/api/v1"
	srvv1 "github.com/p1nant0m/packet-eater/service/rest/service/v1"
)

type StatsController struct {
	srv srvv1.Service
}

func NewStatsController(srv srvv1.Service) *StatsController {
	return &StatsController{srv: srv}
}

func (s *StatsController) Get(c *gin.Context) {
	stats, err := s.srv.Stats().Get(c)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"err":      err,
			"location": "stats.Get",
		}).Warning("failed to collect statistics")
		c.JSON(http.StatusInternalServerError, v1.StatusResponse{Status: v1.StatusError})
		return
	}

	c.JSON(http.StatusOK, stats)
}
