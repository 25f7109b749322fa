package domain

import "time"

// Snapshot identifies one successful load of the dataset.
type Snapshot struct {
	LoadID   string
	LoadedAt time.Time
	Dataset  *Dataset
}

// SnapshotRow is one wide-table row as exported downstream.
type SnapshotRow struct {
	LoadID string     `json:"load_id"`
	Level  Level      `json:"level"`
	Key    string     `json:"key"`
	Code   int        `json:"code,omitempty"`
	Name   string     `json:"name"`
	Values YearSeries `json:"values"`
}

// Rows flattens both wide indexes, states first, Total rows included.
func (s Snapshot) Rows() []SnapshotRow {
	if s.Dataset == nil {
		return nil
	}
	var rows []SnapshotRow
	for _, level := range []Level{LevelState, LevelMunicipality} {
		idx := s.Dataset.Index(level)
		if idx == nil {
			continue
		}
		for _, key := range idx.Keys {
			k, _ := idx.Entity(key)
			values, _ := idx.Row(key)
			row := SnapshotRow{
				LoadID: s.LoadID,
				Level:  level,
				Key:    key,
				Name:   k.Name,
				Values: values,
			}
			if k.HasCode {
				row.Code = k.Code
			}
			rows = append(rows, row)
		}
	}
	return rows
}
