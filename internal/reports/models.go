package reports

// Report and anomaly status values. A report stays pending until its last
// pending anomaly is resolved.
const (
	StatusPending  = "pending"
	StatusResolved = "resolved"
)

// Report is one flight report row. GeneratedAt is carried as an opaque
// timestamp string supplied by the client, matching the ingestion contract.
type Report struct {
	ID          int64   `json:"id"`
	GeneratedAt string  `json:"generated_at"`
	Description string  `json:"description"`
	FileName    string  `json:"file_name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Status      string  `json:"status"`
}

// Anomaly is one detected anomaly belonging to a report.
type Anomaly struct {
	ID             int64   `json:"id"`
	ReportID       int64   `json:"report_id"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	DetectedMinute int     `json:"detected_minute"`
	Status         string  `json:"status"`
}
