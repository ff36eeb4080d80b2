package config

// TelemetryConfig controls the visit report collector. Reports are
// pushed by companion devices; without a KPI path completions aggregate
// in memory for the process lifetime.
type TelemetryConfig struct {
	Enabled     bool   `json:"enabled"`
	ReportTopic string `json:"report_topic"`
	KPIPath     string `json:"kpi_path"`
}

// SetDefaults fills the wildcard topic the device fleet publishes on.
func (c *TelemetryConfig) SetDefaults() {
	if c.ReportTopic == "" {
		c.ReportTopic = "chw/+/report"
	}
}
