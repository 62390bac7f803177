// Package diag runs a background poller that periodically logs process and
// host memory statistics using gopsutil. There is no INFO command on this
// server, so the numbers are logged rather than served.
package diag

import (
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/mem"
	gopsprocess "github.com/shirou/gopsutil/v4/process"

	"github.com/akashmaji946/redikv/internal/logging"
)

// Run samples memory every interval until stop is closed, logging at debug
// level. It never returns an error: a sampling failure is not reported on
// its own; the affected figure is logged as 0 and polling continues, since
// diagnostics are not on any client-facing path.
func Run(stop <-chan struct{}, interval time.Duration, log *logging.Logger) {
	pid := int32(os.Getpid())
	proc, procErr := gopsprocess.NewProcess(pid)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			var rss uint64
			if procErr == nil {
				if info, err := proc.MemoryInfo(); err == nil && info != nil {
					rss = info.RSS
				}
			}
			var total uint64
			if vm, err := mem.VirtualMemory(); err == nil {
				total = vm.Total
			}
			log.Debugf("diag: process_rss=%d host_memory_total=%d", rss, total)
		}
	}
}
