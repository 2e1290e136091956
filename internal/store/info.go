package store

import "context"

// StoreInfo summarizes database contents for the info endpoint.
type StoreInfo struct {
	SchemaVersion int
	TaskCounts    map[string]int
	TotalTasks    int
	ProjectCount  int
}

// InfoStore exposes database statistics.
type InfoStore interface {
	StoreInfo(ctx context.Context) (*StoreInfo, error)
}

var _ InfoStore = (*Store)(nil)

// StoreInfo returns the schema version and per-status task counts.
func (s *Store) StoreInfo(ctx context.Context) (*StoreInfo, error) {
	info := &StoreInfo{TaskCounts: map[string]int{}}

	version, err := currentVersion(s.db)
	if err != nil {
		return nil, err
	}
	info.SchemaVersion = version

	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM tasks GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		info.TaskCounts[status] = count
		info.TotalTasks += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects").Scan(&info.ProjectCount); err != nil {
		return nil, err
	}
	return info, nil
}
