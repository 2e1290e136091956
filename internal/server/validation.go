package server

import (
	"fmt"
	"regexp"
	"strings"

	"taskdesk/internal/models"
)

var (
	idRegex          = regexp.MustCompile(`^[a-z]{2}-[0-9a-z]{4}$`)
	projectCodeRegex = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,9}$`)
)

func validateID(id string) bool {
	return idRegex.MatchString(id)
}

func normalizeStatus(value string) (models.TaskStatus, error) {
	status, err := models.ParseTaskStatus(value)
	if err != nil {
		return "", badRequestCode(err, ErrCodeInvalidStatus)
	}
	return status, nil
}

func normalizeType(value string) (models.TaskType, error) {
	taskType, err := models.ParseTaskType(value)
	if err != nil {
		return "", badRequestCode(err, ErrCodeInvalidType)
	}
	return taskType, nil
}

func normalizePriority(value *int) (int, error) {
	if value == nil {
		return models.DefaultPriority, nil
	}
	if !models.IsValidPriority(*value) {
		return 0, badRequestCode(fmt.Errorf("priority must be between %d and %d", models.PriorityMin, models.PriorityMax), ErrCodeInvalidPriority)
	}
	return *value, nil
}

func normalizeProjectCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", badRequestCode(fmt.Errorf("project code is required"), ErrCodeMissingRequired)
	}
	if !projectCodeRegex.MatchString(code) {
		return "", badRequestCode(fmt.Errorf("project code must be 2-10 letters or digits starting with a letter"), ErrCodeInvalidArgument)
	}
	return code, nil
}

func normalizeName(value, field string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", badRequestCode(fmt.Errorf("%s is required", field), ErrCodeMissingRequired)
	}
	return value, nil
}
