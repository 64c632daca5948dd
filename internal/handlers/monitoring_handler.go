package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"vms-backend/internal/monitoring"
)

type MonitoringHandler struct {
	Store *monitoring.Store
}

func NewMonitoringHandler(store *monitoring.Store) *MonitoringHandler {
	return &MonitoringHandler{Store: store}
}

func queryDuration(r *http.Request, fallback time.Duration) time.Duration {
	if d := r.URL.Query().Get("range"); d != "" {
		if pd, err := time.ParseDuration(d); err == nil && pd > 0 {
			return pd
		}
	}
	return fallback
}

// Snapshot returns current host stats, sampled on demand.
func (h *MonitoringHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	v, _ := mem.VirtualMemory()
	c, _ := cpu.Percent(0, false)
	d, _ := disk.Usage("/")
	hostInfo, _ := host.Info()

	cpuPercent := 0.0
	if len(c) > 0 {
		cpuPercent = c[0]
	}
	payload := map[string]interface{}{
		"cpu_percent": cpuPercent,
	}
	if v != nil {
		payload["memory_percent"] = v.UsedPercent
		payload["memory_used"] = v.Used
		payload["memory_total"] = v.Total
	}
	if d != nil {
		payload["disk_percent"] = d.UsedPercent
		payload["disk_used"] = d.Used
		payload["disk_total"] = d.Total
	}
	if hostInfo != nil {
		payload["hostname"] = hostInfo.Hostname
		payload["uptime"] = (time.Duration(hostInfo.Uptime) * time.Second).String()
	}
	writeJSON(w, http.StatusOK, payload)
}

// APISummary returns request totals, latency and error rate over a range.
func (h *MonitoringHandler) APISummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Store.GetAPISummary(r.Context(), queryDuration(r, 24*time.Hour))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Trends returns per-minute CPU, memory and disk usage history.
func (h *MonitoringHandler) Trends(w http.ResponseWriter, r *http.Request) {
	duration := queryDuration(r, time.Hour)

	cpuTrend, err := h.Store.GetCPUTrend(r.Context(), duration)
	if err != nil {
		cpuTrend = []monitoring.TimePoint{}
	}
	memTrend, err := h.Store.GetMemoryTrend(r.Context(), duration)
	if err != nil {
		memTrend = []monitoring.TimePoint{}
	}
	diskTrend, err := h.Store.GetDiskTrend(r.Context(), duration)
	if err != nil {
		diskTrend = []monitoring.TimePoint{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cpu":  cpuTrend,
		"mem":  memTrend,
		"disk": diskTrend,
	})
}

// APILogs returns recent recorded requests, newest first.
func (h *MonitoringHandler) APILogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		offset = o
	}
	errorsOnly := r.URL.Query().Get("errors_only") == "true"

	logs, err := h.Store.GetAPILogs(r.Context(), queryDuration(r, 24*time.Hour), errorsOnly, limit, offset)
	if err != nil {
		logs = []monitoring.APILog{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": logs})
}
