package domain

import "time"

type User struct {
	ID         int64
	Username   string
	EmployeeID string
	Email      string
	// PasswordHash is opaque to every layer except auth; it is never
	// compared in plaintext.
	PasswordHash string
	CreatedAt    time.Time
}

type Sprint struct {
	ID        int64
	Name      string
	StartDate time.Time
	EndDate   time.Time
	CreatedAt time.Time
}

type BugReport struct {
	ID             int64
	Number         int64
	BugType        string
	Description    string
	IsOpen         bool
	IsFixed        bool
	ReasonForClose string
	CreatedAt      time.Time
	AuthorID       int64
	SprintID       int64
	// Subscribers holds the IDs of users who opted into state-change
	// notices, in subscription order.
	Subscribers []int64
}

// BugReportPatch carries a partial update: nil fields are left untouched.
type BugReportPatch struct {
	Number      *int64
	BugType     *string
	Description *string
}

func (p BugReportPatch) Empty() bool {
	return p.Number == nil && p.BugType == nil && p.Description == nil
}

// SprintStats aggregates report states for one sprint.
type SprintStats struct {
	SprintID   int64
	SprintName string
	Open       int
	Fixed      int
	Closed     int
}
