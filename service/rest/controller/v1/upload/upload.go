// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package upload

import (
	srvv1 "github.com/p1nant0m/packet-eater/service/rest/service/v1"
)

type UploadController struct {
	srv srvv1.Service
}

func NewUploadController(srv srvv1.Service) *UploadController {
	return &UploadController{srv: srv}
}
