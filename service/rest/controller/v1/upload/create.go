// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package upload

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/p1nant0m/packet-eater/internal/errors"
	v1 "github.com/p1nant0m/packet-eater/pkg/api/v1"
)

// Create handles PUT and POST /upload.
func (u *UploadController) Create(c *gin.Context) {
	var r v1.UploadRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, v1.StatusResponse{Status: v1.StatusInvalid, Message: err.Error()})
		return
	}

	resp, err := u.srv.Upload().Upload(c, c.ClientIP(), &r)
	if err != nil {
		status, body := mapError(err)
		if status == http.StatusInternalServerError {
			logrus.WithFields(logrus.Fields{
				"err":      err,
				"location": "upload.Create",
			}).Warning("failed to accept upload")
		}
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusAccepted, resp)
}

func mapError(err error) (int, v1.StatusResponse) {
	switch {
	case errors.Is(err, errors.ErrForbidden):
		return http.StatusForbidden, v1.StatusResponse{Status: v1.StatusBanned}
	case errors.Is(err, errors.ErrUnauthorized):
		return http.StatusUnauthorized, v1.StatusResponse{Status: v1.StatusNotWhitelisted}
	case errors.Is(err, errors.ErrMalformedPayload):
		return http.StatusBadRequest, v1.StatusResponse{Status: v1.StatusInvalid, Message: err.Error()}
	default:
		return http.StatusInternalServerError, v1.StatusResponse{Status: v1.StatusError}
	}
}
