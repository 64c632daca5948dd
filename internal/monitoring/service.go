package monitoring

import (
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// MonitoringService samples host resources on a fixed interval and
// records per-request API metrics.
type MonitoringService struct {
	store *Store
	stop  chan struct{}
}

func NewMonitoringService(store *Store) *MonitoringService {
	return &MonitoringService{store: store, stop: make(chan struct{})}
}

// StartCollection launches the background resource sampler.
func (s *MonitoringService) StartCollection() {
	ticker := time.NewTicker(10 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.collectAndSave()
			}
		}
	}()
}

func (s *MonitoringService) StopCollection() {
	close(s.stop)
}

func (s *MonitoringService) collectAndSave() {
	cpuPercents, _ := cpu.Percent(time.Second, false)
	cpuPct := 0.0
	if len(cpuPercents) > 0 {
		cpuPct = cpuPercents[0]
	}

	memStats, _ := mem.VirtualMemory()
	diskStats, _ := disk.Usage("/")
	if memStats == nil || diskStats == nil {
		return
	}

	s.store.RecordSystemMetrics(
		cpuPct,
		memStats.Used,
		memStats.Total,
		diskStats.Used,
		diskStats.Total,
	)
}
