package domain

import "time"

// State is the agent status persisted between runs. It is diagnostic
// output, not recovery input: a restart always begins a fresh session with
// an identity fit, because regression windows must never span sessions.
type State struct {
	// SessionID identifies the transport connection the counters belong to
	SessionID string `json:"session_id"`

	// SessionStartedAt is when the current session began
	SessionStartedAt time.Time `json:"session_started_at"`

	// FramesReceived counts frames decoded during the session
	FramesReceived uint64 `json:"frames_received"`

	// FramesRejected counts frames the codec refused
	FramesRejected uint64 `json:"frames_rejected"`

	// DroppedCount is the loss count from the last drift report
	DroppedCount int `json:"dropped_count"`

	// Alpha and Beta are the last fit snapshot
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`

	// RMSResidualMs is the window RMS residual at the last report
	RMSResidualMs float64 `json:"rms_residual_ms"`

	// LastReportAt is when the last drift report was produced
	LastReportAt time.Time `json:"last_report_at"`
}

// IsEmpty returns true if the state has not been initialized.
func (s State) IsEmpty() bool {
	return s.SessionID == ""
}
