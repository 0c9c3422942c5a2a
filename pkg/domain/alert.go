package domain

import "time"

// Alert acknowledgement states.
const (
	AlertUnacked = "UNACKED"
	AlertAcked   = "ACKED"
)

// Alert is an anomaly raised by the edge monitoring pipeline for an elder.
type Alert struct {
	AlertID      int64      `json:"alert_id"`
	ElderlyID    int64      `json:"elderly_id"`
	MonitorType  string     `json:"monitor_type"`
	MonitorValue float64    `json:"monitor_value"`
	MonitorTime  time.Time  `json:"monitor_time"`
	DeviceID     string     `json:"device_id"`
	Score        *float64   `json:"score,omitempty"`
	Confidence   *float64   `json:"confidence,omitempty"`
	AckStatus    string     `json:"ack_status"`
	AckTime      *time.Time `json:"ack_time,omitempty"`
	SilenceUntil *time.Time `json:"silence_until,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
