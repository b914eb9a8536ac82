package svcbot

// Supervisord state names this package gives special meaning to. Every other
// state string (STOPPED, STARTING, BACKOFF, FATAL, ...) is passed through
// verbatim and classified as unhealthy.
const (
	StateRunning    = "RUNNING"
	StateRestarting = "RESTARTING"
)

// ProcessRecord is one managed process group as reported by supervisord.
// Records are rebuilt on every ListProcesses call and never mutated; the
// group name is the identity used for control actions and button routing.
type ProcessRecord struct {
	// GroupName is the supervisord group, the key for start/stop actions
	GroupName string `json:"group_name"`
	// ProcessName is the underlying process name within the group
	ProcessName string `json:"process_name"`
	// State is the supervisord state name, e.g. RUNNING or STOPPED
	State string `json:"state"`
	// PID is the OS process ID, zero when not running
	PID int `json:"pid"`
	// Uptime is the human-readable time since the last start or stop
	Uptime string `json:"uptime"`
}

// Healthy reports whether the process is in a running or restarting state.
func (p ProcessRecord) Healthy() bool {
	return p.State == StateRunning || p.State == StateRestarting
}

// StatusEmoji returns the indicator shown next to the process in the chat UI.
func (p ProcessRecord) StatusEmoji() string {
	if p.Healthy() {
		return "✅"
	}
	return "❌"
}
