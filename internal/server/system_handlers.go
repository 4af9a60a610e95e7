package server

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/finlit/finlit/internal/database"
	"github.com/finlit/finlit/internal/scheduler"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const healthCheckTimeout = 5 * time.Second

// Counter reports how many live items a store holds
type Counter interface {
	Len() int
}

// StoreCounter reports how many items a persistent store holds
type StoreCounter interface {
	Count(ctx context.Context) (int, error)
}

// JobRunner runs registered jobs and reports their status
type JobRunner interface {
	RunNow(job scheduler.Job) error
	Status() []scheduler.JobStatus
}

// DBInfo describes one database in the status response
type DBInfo struct {
	Name         string  `json:"name"`
	SizeMB       float64 `json:"size_mb"`
	WALSizeMB    float64 `json:"wal_size_mb"`
	FreelistPage int64   `json:"freelist_pages"`
	Healthy      bool    `json:"healthy"`
	Error        string  `json:"error,omitempty"`
}

// SystemStatusResponse is returned by GET /api/system/status
type SystemStatusResponse struct {
	Status        string    `json:"status"`
	Uptime        string    `json:"uptime"`
	GoVersion     string    `json:"go_version"`
	Goroutines    int       `json:"goroutines"`
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float64   `json:"memory_percent"`
	Databases     []DBInfo  `json:"databases"`
	GameSessions  int       `json:"game_sessions"`
	StoredGames   int       `json:"stored_game_sessions"`
	Conversations int       `json:"conversations"`
	LastChecked   time.Time `json:"last_checked"`
}

// SystemHandlers serves status and job endpoints
type SystemHandlers struct {
	log           zerolog.Logger
	startupTime   time.Time
	databases     map[string]*database.DB
	sessions      Counter
	conversations Counter
	storedGames   StoreCounter
	runner        JobRunner
	jobs          map[string]scheduler.Job
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(
	log zerolog.Logger,
	databases map[string]*database.DB,
	sessions Counter,
	conversations Counter,
	runner JobRunner,
) *SystemHandlers {
	return &SystemHandlers{
		log:           log.With().Str("handler", "system").Logger(),
		startupTime:   time.Now(),
		databases:     databases,
		sessions:      sessions,
		conversations: conversations,
		runner:        runner,
		jobs:          make(map[string]scheduler.Job),
	}
}

// SetSessionStore reports persisted game sessions alongside the live ones
func (h *SystemHandlers) SetSessionStore(store StoreCounter) {
	h.storedGames = store
}

// SetJobs registers job instances for manual triggering
func (h *SystemHandlers) SetJobs(jobs map[string]scheduler.Job) {
	h.jobs = jobs
}

// GetSystemStatusSnapshot collects the current status
func (h *SystemHandlers) GetSystemStatusSnapshot(ctx context.Context) SystemStatusResponse {
	cpuPercent, memPercent := h.getSystemStats()

	resp := SystemStatusResponse{
		Status:        "healthy",
		Uptime:        time.Since(h.startupTime).Round(time.Second).String(),
		GoVersion:     runtime.Version(),
		Goroutines:    runtime.NumGoroutine(),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Databases:     h.databaseInfo(ctx),
		LastChecked:   time.Now(),
	}
	if h.sessions != nil {
		resp.GameSessions = h.sessions.Len()
	}
	if h.conversations != nil {
		resp.Conversations = h.conversations.Len()
	}
	if h.storedGames != nil {
		count, err := h.storedGames.Count(ctx)
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to count stored game sessions")
		} else {
			resp.StoredGames = count
		}
	}

	for _, db := range resp.Databases {
		if !db.Healthy {
			resp.Status = "degraded"
			break
		}
	}
	return resp
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.GetSystemStatusSnapshot(r.Context()))
}

// HandleJobsStatus handles GET /api/system/jobs
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	var statuses []scheduler.JobStatus
	if h.runner != nil {
		statuses = h.runner.Status()
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_jobs": len(statuses),
		"jobs":       statuses,
	})
}

// HandleTriggerJob handles POST /api/system/jobs/{name}/run. The job runs in the background.
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	job, ok := h.jobs[name]
	if !ok || h.runner == nil {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "job not registered: " + name})
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job run triggered")
	go func() {
		if err := h.runner.RunNow(job); err != nil {
			h.log.Error().Err(err).Str("job", name).Msg("Manual job run failed")
		}
	}()

	h.writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "success",
		"message": name + " triggered successfully",
	})
}

func (h *SystemHandlers) databaseInfo(ctx context.Context) []DBInfo {
	names := make([]string, 0, len(h.databases))
	for name := range h.databases {
		names = append(names, name)
	}
	sort.Strings(names)

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	infos := make([]DBInfo, 0, len(names))
	for _, name := range names {
		db := h.databases[name]
		info := DBInfo{Name: name, Healthy: true}

		if stats, err := db.GetStats(); err == nil {
			info.SizeMB = float64(stats.SizeBytes) / 1024 / 1024
			info.WALSizeMB = float64(stats.WALSizeBytes) / 1024 / 1024
			info.FreelistPage = stats.FreelistCount
		} else {
			h.log.Warn().Err(err).Str("database", name).Msg("Failed to get database stats")
		}

		if err := db.HealthCheck(ctx); err != nil {
			info.Healthy = false
			info.Error = err.Error()
		}
		infos = append(infos, info)
	}
	return infos
}

func (h *SystemHandlers) getSystemStats() (float64, float64) {
	// 100ms sample keeps the endpoint responsive
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
