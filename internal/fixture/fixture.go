// Package fixture reads YAML seed files and flattens them into an import request.
//
// A fixture nests subtasks under their story:
//
//	projects:
//	  - code: FIN
//	    name: Finance
//	    lead: ann
//	stories:
//	  - id: td-st01
//	    name: Close the quarter
//	    project: FIN
//	    subtasks:
//	      - id: td-0001
//	        name: Post accruals
//	        status: done
//	        completed_by: ann
//	tasks:
//	  - id: td-0100
//	    name: Renew insurance
package fixture

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"taskdesk/internal/api"
)

// File is the on-disk layout of a seed file.
type File struct {
	Dedupe   string    `yaml:"dedupe"`
	Roles    []Role    `yaml:"roles"`
	Users    []User    `yaml:"users"`
	Projects []Project `yaml:"projects"`
	Stories  []Story   `yaml:"stories"`
	Tasks    []Task    `yaml:"tasks"`
}

type Role struct {
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type User struct {
	Username    string `yaml:"username"`
	DisplayName string `yaml:"display_name"`
	Password    string `yaml:"password"`
	Role        string `yaml:"role"`
}

type Project struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
	Lead string `yaml:"lead"`
}

// Task is one task or subtask with optional recorded workflow history.
type Task struct {
	ID               string     `yaml:"id"`
	Code             string     `yaml:"tcode"`
	Name             string     `yaml:"name"`
	Status           string     `yaml:"status"`
	Priority         *int       `yaml:"priority"`
	Group            string     `yaml:"group"`
	Due              string     `yaml:"due"`
	Project          string     `yaml:"project"`
	Assignees        []string   `yaml:"assignees"`
	CompletedBy      string     `yaml:"completed_by"`
	CompletedAt      *time.Time `yaml:"completed_at"`
	FirstVerifiedBy  string     `yaml:"first_verified_by"`
	FirstVerifiedAt  *time.Time `yaml:"first_verified_at"`
	SecondVerifiedBy string     `yaml:"second_verified_by"`
	SecondVerifiedAt *time.Time `yaml:"second_verified_at"`
}

// Story is a task that owns the subtasks listed under it.
type Story struct {
	Task     `yaml:",inline"`
	Subtasks []Task `yaml:"subtasks"`
}

// Parse decodes a seed file. Unknown keys are rejected.
func Parse(data []byte) (File, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return File{}, fmt.Errorf("fixture: payload is empty")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return File{}, fmt.Errorf("fixture: decode: %w", err)
	}
	return f, nil
}

// LoadReader reads and decodes a seed file from r.
func LoadReader(r io.Reader) (File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return File{}, fmt.Errorf("fixture: read: %w", err)
	}
	return Parse(data)
}

// LoadFile reads and decodes the seed file at path.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("fixture: read %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Request flattens the fixture into an import request. Stories come first,
// each followed by its subtasks, which inherit the story's project when
// they name none.
func (f File) Request() (api.ImportRequest, error) {
	req := api.ImportRequest{Dedupe: strings.TrimSpace(f.Dedupe)}
	for _, role := range f.Roles {
		req.Roles = append(req.Roles, api.RoleRequest{Name: role.Name, Permissions: role.Permissions})
	}
	for _, user := range f.Users {
		req.Users = append(req.Users, api.UserCreateRequest{
			Username:    user.Username,
			DisplayName: user.DisplayName,
			Password:    user.Password,
			Role:        user.Role,
		})
	}
	for _, project := range f.Projects {
		req.Projects = append(req.Projects, api.ProjectCreateRequest{Code: project.Code, Name: project.Name, ProjectLead: project.Lead})
	}

	for i, story := range f.Stories {
		storyID := strings.TrimSpace(story.ID)
		if storyID == "" {
			return api.ImportRequest{}, fmt.Errorf("fixture: stories[%d]: id is required", i)
		}
		rec := story.Task.record("story")
		for j, sub := range story.Subtasks {
			subID := strings.TrimSpace(sub.ID)
			if subID == "" {
				return api.ImportRequest{}, fmt.Errorf("fixture: stories[%d].subtasks[%d]: id is required", i, j)
			}
			rec.SubTaskIDs = append(rec.SubTaskIDs, subID)
		}
		req.Tasks = append(req.Tasks, rec)

		for _, sub := range story.Subtasks {
			child := sub.record("task")
			child.ParentTaskID = storyID
			if child.Project == "" {
				child.Project = rec.Project
			}
			req.Tasks = append(req.Tasks, child)
		}
	}

	for i, task := range f.Tasks {
		if strings.TrimSpace(task.ID) == "" {
			return api.ImportRequest{}, fmt.Errorf("fixture: tasks[%d]: id is required", i)
		}
		req.Tasks = append(req.Tasks, task.record("task"))
	}
	return req, nil
}

func (t Task) record(taskType string) api.TaskImportRecord {
	rec := api.TaskImportRecord{
		TaskCreateRequest: api.TaskCreateRequest{
			ID:        strings.TrimSpace(t.ID),
			Code:      t.Code,
			Name:      t.Name,
			Type:      &taskType,
			Priority:  t.Priority,
			Group:     t.Group,
			DueDate:   t.Due,
			Project:   strings.TrimSpace(t.Project),
			Assignees: t.Assignees,
		},
		CompletedBy:      t.CompletedBy,
		CompletedAt:      t.CompletedAt,
		FirstVerifiedBy:  t.FirstVerifiedBy,
		FirstVerifiedAt:  t.FirstVerifiedAt,
		SecondVerifiedBy: t.SecondVerifiedBy,
		SecondVerifiedAt: t.SecondVerifiedAt,
	}
	if status := strings.TrimSpace(t.Status); status != "" {
		rec.Status = &status
	}
	return rec
}
