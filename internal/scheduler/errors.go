package scheduler

import "errors"

// Scheduling-conflict errors, surfaced by the HTTP adapter as 409.
var (
	ErrAlreadyAssigned  = errors.New("scheduler: user already has an assigned task")
	ErrNoTasksAvailable = errors.New("scheduler: no tasks available")
	ErrUnknownTask      = errors.New("scheduler: task does not exist")
	ErrNotYourTask      = errors.New("scheduler: task does not belong to this user")
)

// Verification errors, surfaced by the HTTP adapter as 409 (Unverified,
// lease retained) or 409 with Retry-After (Timeout, once the lease's
// deadline passes).
var (
	ErrUnverified = errors.New("scheduler: submitted color does not match the live canvas")
	ErrTimeout    = errors.New("scheduler: verification exceeded the lease deadline")
)
