package storage

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrConditionFailed is returned when an optimistic snapshot no longer matches, e.g.
// a concurrent contribution changed a vault between read and write.
var ErrConditionFailed = errors.New("conditional write failed")

// ErrInsufficientContribution is returned when a member debit would take its contribution below zero.
var ErrInsufficientContribution = errors.New("member contribution is lower than the requested amount")

// ErrIntentNotPending is returned when an intent is not in the state a transition requires,
// typically because another worker already advanced it.
var ErrIntentNotPending = errors.New("intent is not in the expected state")

// ErrTooManyMembers is returned when a vault has more members than one atomic write can cover.
var ErrTooManyMembers = errors.New("group vault has too many members for a single transaction")
