package controllers

import (
	"fmt"
	json "github.com/goccy/go-json"
	"net/http"
	"spd/internal/backup"
	"spd/internal/profile"
	"time"
)

type HealthController struct {
	store     *profile.Store
	scheduler backup.SchedulerInterface
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Profiles      int     `json:"profiles"`
	AutoBackup    bool    `json:"auto_backup"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	profiles, err := hc.store.List()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Profiles:      len(profiles),
		AutoBackup:    hc.scheduler.Running(),
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(store *profile.Store, scheduler backup.SchedulerInterface) *HealthController {
	return &HealthController{
		store:     store,
		scheduler: scheduler,
		startTime: time.Now(),
	}
}
