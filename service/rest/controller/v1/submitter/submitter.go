// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package submitter

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/p1nant0m/packet-eater/internal/errors"
	srvv1 "github.com/p1nant0m/packet-eater/service/rest/service/v1"
)

const (
	codeOK = iota
	codeBadRequest
	codeNotFound
	codeInternal
)

type SubmitterController struct {
	srv srvv1.Service
}

func NewSubmitterController(srv srvv1.Service) *SubmitterController {
	return &SubmitterController{srv: srv}
}

func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, codeInternal
	if errors.Is(err, errors.ErrNotFound) {
		status, code = http.StatusNotFound, codeNotFound
	}
	c.JSON(status, gin.H{
		"code": code,
		"data": nil,
		"msg":  err.Error(),
	})
}
