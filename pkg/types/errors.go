package types

import "errors"

// Backend lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is not attached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Entry validation errors, returned before any I/O.
var (
	ErrInvalidID      = errors.New("invalid entry ID")
	ErrTeamIDEmpty    = errors.New("team ID must not be empty")
	ErrInvalidPeriod  = errors.New("week end date must be after week start date")
	ErrInvalidStatus  = errors.New("unknown entry status")
	ErrContentEmpty   = errors.New("entry content must not be empty")
	ErrInvalidVersion = errors.New("entry version must be positive")
)

// Filter validation errors.
var (
	ErrInvalidDateRange = errors.New("date range start is after end")
	ErrInvalidLimit     = errors.New("limit must be positive")
	ErrInvalidOffset    = errors.New("offset must not be negative")
)

// Retrieval and transition errors.
var (
	ErrNotFound  = errors.New("entry not found")
	ErrLegalHold = errors.New("team is under legal hold")
)

// Retention policy validation errors.
var (
	ErrPolicyNotFound   = errors.New("retention policy not found")
	ErrThresholdInvalid = errors.New("retention threshold must be positive")
)

// Export errors.
var (
	ErrInvalidFormat    = errors.New("unknown export format")
	ErrInvalidFrequency = errors.New("unknown schedule frequency")
	ErrNoData           = errors.New("no data matched the export filters")
)

// Backup errors.
var (
	ErrBackupNotFound   = errors.New("backup not found")
	ErrBackupValidation = errors.New("backup artifact failed hash validation")
)
