package domain

// TimeEntry is a raw record from the time-tracking service.
type TimeEntry struct {
	ID          string
	ProjectID   string
	Description string
	Duration    string // ISO-8601, empty while a timer is running
	TagIDs      []string
}

// HourlyRate is a project's rate in minor currency units (cents).
type HourlyRate struct {
	Amount   int64
	Currency string
}

// ProjectRecord is a project from the time-tracking service.
type ProjectRecord struct {
	ID         string
	Name       string
	ClientName string
	HourlyRate *HourlyRate // nil when no rate is configured
}
