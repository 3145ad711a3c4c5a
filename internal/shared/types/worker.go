package types

import "encoding/json"

// TaskRequest is the message a worker receives
type TaskRequest struct {
	ID      string          `json:"id"`
	Task    string          `json:"task"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// TaskResponse is the single message a worker sends back per request.
// Exactly one of Result or Error is meaningful.
type TaskResponse struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Failed reports whether the response carries an error
func (r TaskResponse) Failed() bool {
	return r.Error != ""
}

// JobInfo describes a queued or active job
type JobInfo struct {
	ID     string `json:"id"`
	Task   string `json:"task"`
	Worker int    `json:"worker,omitempty"`
}

// PoolSnapshot is what pool observers receive on every change
type PoolSnapshot struct {
	Queue      []JobInfo `json:"queue"`
	ActiveJobs []JobInfo `json:"active_jobs"`
	Size       int       `json:"size"`
}
