package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event            string     `json:"event,omitempty"`
	Reason           string     `json:"reason,omitempty"`
	Mode             string     `json:"mode"`
	Segments         int        `json:"segments"`
	LastDose         string     `json:"last_dose"`
	SinceDoseSeconds int64      `json:"since_dose_seconds"`
	IntervalSeconds  int64      `json:"interval_seconds"`
	RemainingSeconds int64      `json:"remaining_seconds"`
	Awake            bool       `json:"awake"`
	TimeSynced       bool       `json:"time_synced"`
	UptimeSeconds    int64      `json:"uptime_seconds"`
	StartTime        string     `json:"start_time"`
	Timestamp        string     `json:"timestamp"`
	MQTT             MQTTStatus `json:"mqtt"`
	Counts           CountsJSON `json:"event_counts"`
	Config           ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Doses           int `json:"doses"`
	Dues            int `json:"dues"`
	Tilts           int `json:"tilts"`
	IntervalChanges int `json:"interval_changes"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	HoldMs      int64  `json:"hold_ms"`
	WakeMs      int64  `json:"wake_ms"`
	SleepMs     int64  `json:"sleep_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	RingSize    int    `json:"ring_size"`
	Broker      string `json:"broker,omitempty"`
	HTTPAddr    string `json:"http_addr"`
	DBPath      string `json:"db_path,omitempty"`
	NTPServer   string `json:"ntp_server,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		Mode:             string(snap.Mode),
		Segments:         snap.Segments,
		LastDose:         snap.LastDose.UTC().Format(time.RFC3339),
		SinceDoseSeconds: int64(snap.SinceLastDose().Truncate(time.Second).Seconds()),
		IntervalSeconds:  int64(snap.Interval.Seconds()),
		RemainingSeconds: int64(snap.Remaining().Truncate(time.Second).Seconds()),
		Awake:            snap.Awake,
		TimeSynced:       snap.TimeSynced,
		UptimeSeconds:    int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:        snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:        snap.Now.UTC().Format(time.RFC3339),
		MQTT:             MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Doses:           snap.Counts.Doses,
			Dues:            snap.Counts.Dues,
			Tilts:           snap.Counts.Tilts,
			IntervalChanges: snap.Counts.IntervalChanges,
		},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			HoldMs:      snap.Config.HoldMs,
			WakeMs:      snap.Config.WakeMs,
			SleepMs:     snap.Config.SleepMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			RingSize:    snap.Config.RingSize,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			DBPath:      snap.Config.DBPath,
			NTPServer:   snap.Config.NTPServer,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
