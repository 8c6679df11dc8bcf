package web

import "time"

// APIResponse is the standard response envelope for every API endpoint.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError represents an error in an API response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StartVisitRequest is the request body for POST /api/visits.
type StartVisitRequest struct {
	Origin            string `json:"origin,omitempty"`
	SourceKind        string `json:"sourceKind"`
	SourcePath        string `json:"sourcePath"`
	Module            string `json:"module,omitempty"`
	Hostname          string `json:"hostname,omitempty"`
	Port              int    `json:"port,omitempty"`
	Username          string `json:"username,omitempty"`
	Password          string `json:"password,omitempty"`
	TargetPath        string `json:"targetPath"`
	PlaceholderDomain string `json:"placeholderDomain,omitempty"`
}

// AnalyzeRequest is the request body for POST /api/repos/analyze.
type AnalyzeRequest struct {
	SourceKind string `json:"sourceKind"`
	SourcePath string `json:"sourcePath"`
}

// VisitStatus is the dashboard's view of one in-flight or completed
// visit.
type VisitStatus struct {
	ID              string    `json:"id"`
	Origin          string    `json:"origin"`
	Status          string    `json:"status"`
	Operation       string    `json:"operation"`
	Percentage      float64   `json:"percentage"`
	ChangesetsTotal int       `json:"changesetsTotal"`
	ChangesetsDone  int       `json:"changesetsDone"`
	SnapshotID      string    `json:"snapshotId,omitempty"`
	Errors          []string  `json:"errors"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ProgressEvent is a WebSocket event pushed to a dashboard client.
type ProgressEvent struct {
	Type string       `json:"type"`
	Data ProgressData `json:"data"`
}

// ProgressData mirrors the fields of VisitStatus a client needs to
// render a progress bar.
type ProgressData struct {
	VisitID         string   `json:"visitId"`
	Status          string   `json:"status"`
	Operation       string   `json:"operation"`
	Percentage      float64  `json:"percentage"`
	ChangesetsTotal int      `json:"changesetsTotal"`
	ChangesetsDone  int      `json:"changesetsDone"`
	Errors          []string `json:"errors"`
}

// ServerConfig is the configuration for the web server.
type ServerConfig struct {
	Port       int
	ConfigPath string
}

// HealthStatus represents the health check response.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// LoaderDefaults reports the default visit parameters the server would
// apply to a request that leaves them unset.
type LoaderDefaults struct {
	FuzzWindowSeconds int64  `json:"fuzzWindowSeconds"`
	PlaceholderDomain string `json:"placeholderDomain"`
}

// ErrorResponse creates an error API response.
func ErrorResponse(code, message string) APIResponse {
	return APIResponse{Success: false, Error: &APIError{Code: code, Message: message}}
}

// SuccessResponse creates a success API response.
func SuccessResponse(data interface{}) APIResponse {
	return APIResponse{Success: true, Data: data}
}
