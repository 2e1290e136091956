package models

import "time"

// Project groups tasks and names the project lead.
type Project struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	ProjectLeadID string    `json:"projectLeadId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Ref returns the summary embedded in task records.
func (p Project) Ref() *ProjectRef {
	return &ProjectRef{ID: p.ID, Code: p.Code, Name: p.Name, ProjectLeadID: p.ProjectLeadID}
}
