package models

import "encoding/json"

// TaskRef identifies a task in a bulk result.
type TaskRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ItemError is one per-task rejection inside a bulk result.
type ItemError struct {
	TaskID   string `json:"taskId"`
	TaskName string `json:"taskName"`
	Error    string `json:"error"`
}

// BulkResult reports the per-task outcome of one batched transition request.
// Success and Errors are independent and may both be non-empty.
type BulkResult struct {
	Success []TaskRef   `json:"success"`
	Errors  []ItemError `json:"errors"`
}

// Empty reports whether neither list has entries.
func (r BulkResult) Empty() bool {
	return len(r.Success) == 0 && len(r.Errors) == 0
}

func marshalStrings(values []string) ([]byte, error) {
	if values == nil {
		values = []string{}
	}
	return json.Marshal(values)
}

func unmarshalStrings(data []byte) ([]string, error) {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}
