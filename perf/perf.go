// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package perf

import (
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"

	v1 "github.com/p1nant0m/packet-eater/pkg/api/v1"
)

// GetHostInfo collects basic facts about the machine running the service.
// Fields that cannot be read are left empty.
func GetHostInfo() *v1.HostInfo {
	info := &v1.HostInfo{}

	if hostInfo, err := host.Info(); err == nil {
		info.Hostname = hostInfo.Hostname
		info.Platform = hostInfo.OS + "-" + hostInfo.Platform + "-" + hostInfo.PlatformVersion
		info.Uptime = hostInfo.Uptime
	}
	if memInfo, err := mem.VirtualMemory(); err == nil {
		info.MemUsage = memInfo.UsedPercent
	}

	return info
}
