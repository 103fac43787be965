package observability

import (
	"sync"
	"time"
)

type SystemStatus struct {
	mu            sync.RWMutex
	Stage         string
	RequestID     string
	LastHeartbeat time.Time
}

var globalStatus = &SystemStatus{
	Stage:         StageIdle,
	LastHeartbeat: time.Now(),
}

// StageIdle is reported while no request is in flight.
const StageIdle = "idle"

// SetStatus records the request currently being processed and its stage.
func SetStatus(requestID, stage string) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.RequestID = requestID
	globalStatus.Stage = stage
	globalStatus.LastHeartbeat = time.Now()
}

// ClearStatus marks the process idle again.
func ClearStatus() {
	SetStatus("", StageIdle)
}

// GetStatus retrieves a copy of the global system status.
func GetStatus() (stage, requestID string, lastHeartbeat time.Time) {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.Stage, globalStatus.RequestID, globalStatus.LastHeartbeat
}

// Heartbeat updates the last heartbeat time.
func Heartbeat() {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.LastHeartbeat = time.Now()
}
