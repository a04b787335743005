package models

import "fmt"

// Visibility controls who may view a routine or session.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityFriends Visibility = "friends"
	VisibilityPublic  Visibility = "public"
)

// ParseVisibility validates a visibility string.
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(s) {
	case VisibilityPrivate, VisibilityFriends, VisibilityPublic:
		return Visibility(s), nil
	}
	return "", fmt.Errorf("invalid visibility %q", s)
}

// SessionStatus is the lifecycle state of a workout session.
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusPaused    SessionStatus = "paused"
	StatusCompleted SessionStatus = "completed"
	StatusCancelled SessionStatus = "cancelled"
)

// ParseSessionStatus validates a session status string.
func ParseSessionStatus(s string) (SessionStatus, error) {
	switch SessionStatus(s) {
	case StatusActive, StatusPaused, StatusCompleted, StatusCancelled:
		return SessionStatus(s), nil
	}
	return "", fmt.Errorf("invalid session status %q", s)
}

// Terminal reports whether the status is final. Terminal sessions are immutable.
func (s SessionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether a session may move from s to the given status.
// Legal transitions: active↔paused, and either of those to a terminal state.
func (s SessionStatus) CanTransitionTo(to SessionStatus) bool {
	if s.Terminal() {
		return false
	}
	switch to {
	case StatusActive:
		return s == StatusPaused
	case StatusPaused:
		return s == StatusActive
	case StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// WeightUnit is the unit a set's weight was recorded in.
type WeightUnit string

const (
	UnitKg  WeightUnit = "kg"
	UnitLbs WeightUnit = "lbs"
)

// ParseWeightUnit validates a weight unit string.
func ParseWeightUnit(s string) (WeightUnit, error) {
	switch WeightUnit(s) {
	case UnitKg, UnitLbs:
		return WeightUnit(s), nil
	}
	return "", fmt.Errorf("invalid weight unit %q", s)
}

// Side marks which side a set was performed on, for unilateral exercises.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
	SideBoth  Side = "both"
)

// ParseSide validates a side string.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideLeft, SideRight, SideBoth:
		return Side(s), nil
	}
	return "", fmt.Errorf("invalid side %q", s)
}

// SetLabel classifies a logged set.
type SetLabel string

const (
	LabelWarmup  SetLabel = "warmup"
	LabelWorking SetLabel = "working"
	LabelDropset SetLabel = "dropset"
	LabelFailure SetLabel = "failure"
	LabelPR      SetLabel = "pr"
	LabelBackoff SetLabel = "backoff"
)

// ParseSetLabel validates a set label string.
func ParseSetLabel(s string) (SetLabel, error) {
	switch SetLabel(s) {
	case LabelWarmup, LabelWorking, LabelDropset, LabelFailure, LabelPR, LabelBackoff:
		return SetLabel(s), nil
	}
	return "", fmt.Errorf("invalid set label %q", s)
}

// FriendStatus is the state of a friend relationship.
type FriendStatus string

const (
	FriendPending  FriendStatus = "pending"
	FriendAccepted FriendStatus = "accepted"
	FriendBlocked  FriendStatus = "blocked"
)

// ParseFriendStatus validates a friend status string.
func ParseFriendStatus(s string) (FriendStatus, error) {
	switch FriendStatus(s) {
	case FriendPending, FriendAccepted, FriendBlocked:
		return FriendStatus(s), nil
	}
	return "", fmt.Errorf("invalid friend status %q", s)
}
