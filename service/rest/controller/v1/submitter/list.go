// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package submitter

import (
	"net/http"

	"github.com/gin-gonic/gin"

	metav1 "github.com/p1nant0m/packet-eater/pkg/meta/v1"
)

type listQuery struct {
	Limit  int `form:"limit" binding:"min=0"`
	Offset int `form:"offset" binding:"min=0"`
}

func (s *SubmitterController) List(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": codeBadRequest,
			"data": nil,
			"msg":  err.Error(),
		})
		return
	}

	submitters, err := s.srv.Submitters().List(c, metav1.ListOptions{Limit: q.Limit, Offset: q.Offset})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": codeOK,
		"data": submitters,
		"msg":  "response from submitters list",
	})
}
