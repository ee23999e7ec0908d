// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package submitter

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *SubmitterController) Get(c *gin.Context) {
	sub, err := s.srv.Submitters().Get(c, c.Param("identifier"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": codeOK,
		"data": sub,
		"msg":  "ok",
	})
}
