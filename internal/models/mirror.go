package models

import "time"

// MirrorRun summarizes one completed mirror run.
type MirrorRun struct {
	FinishedAt time.Time
	Divisions  int
	Employees  int
	Changed    int
}
