package queue

// ListFilter defines criteria for filtering task lists.
type ListFilter struct {
	Status Status `json:"status,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// StatusFields carries the optional fields merged into a record by
// UpdateStatus. Zero values leave the corresponding field untouched.
type StatusFields struct {
	AttemptDelta int
	LastError    string
	Result       *ExecutionResult
}

// Stats summarizes the live queue by status.
type Stats struct {
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}

// Store defines the persistence interface for tasks. UpdateStatus is the
// sole writer of status, timestamps, attempts, last_error and
// execution_result.
type Store interface {
	Add(description string, priority int, tags []string, notes string) (*Task, error)
	List(filter ListFilter) ([]*Task, error)
	Get(id string) (*Task, error)
	UpdateStatus(id string, status Status, fields StatusFields) (*Task, error)
	Delete(id string) (bool, error)
	Counts() (Stats, error)
}

// Archiver receives a copy of every task that transitions to completed.
type Archiver interface {
	Archive(t *Task) error
}
