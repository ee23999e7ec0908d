// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package submitter

import (
	"net/http"

	"github.com/gin-gonic/gin"

	metav1 "github.com/p1nant0m/packet-eater/pkg/meta/v1"
)

// Update sets the whitelisted and banned flags given in the body.
func (s *SubmitterController) Update(c *gin.Context) {
	var r metav1.SetFlagsOptions
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": codeBadRequest,
			"data": nil,
			"msg":  err.Error(),
		})
		return
	}

	sub, err := s.srv.Submitters().SetFlags(c, c.Param("identifier"), r)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": codeOK,
		"data": sub,
		"msg":  "ok " + sub.Identifier,
	})
}
