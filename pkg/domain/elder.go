package domain

import "time"

// Elder is a resident registered with the community.
type Elder struct {
	ElderlyID        int64     `json:"elderly_id"`
	Name             string    `json:"name"`
	IDCard           string    `json:"id_card"`
	Age              int       `json:"age"`
	HealthLevel      string    `json:"health_level"`
	EmergencyContact string    `json:"emergency_contact"`
	Address          string    `json:"address"`
	RegisterTime     time.Time `json:"register_time"`
}

// HealthRecord is a single monitoring sample for an elder.
type HealthRecord struct {
	RecordID     int64     `json:"record_id"`
	ElderlyID    int64     `json:"elderly_id"`
	MonitorType  string    `json:"monitor_type"`
	MonitorValue string    `json:"monitor_value"`
	MonitorTime  time.Time `json:"monitor_time"`
	Abnormal     string    `json:"is_abnormal"`
}

// AccessRecord is one gate entry/exit event for an elder.
type AccessRecord struct {
	AccessID     int64     `json:"access_id"`
	ElderlyID    int64     `json:"elderly_id"`
	AccessType   string    `json:"access_type"`
	RecordTime   time.Time `json:"record_time"`
	GateLocation string    `json:"gate_location"`
	Abnormal     string    `json:"is_abnormal"`
}
