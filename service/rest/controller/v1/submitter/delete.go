// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package submitter

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Delete removes the submitter with its sessions and packets.
func (s *SubmitterController) Delete(c *gin.Context) {
	result, err := s.srv.Submitters().Delete(c, c.Param("identifier"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": codeOK,
		"data": result,
		"msg":  "response from submitter delete",
	})
}
