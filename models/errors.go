package models

import (
	"errors"
	"fmt"
)

// ErrorCode classifies an expected failure of the reservation domain.
type ErrorCode string

const (
	UnknownLocation        ErrorCode = "UnknownLocation"
	MalformedIdentifier    ErrorCode = "MalformedIdentifier"
	NotFound               ErrorCode = "NotFound"
	Conflict               ErrorCode = "Conflict"
	IncompleteRequest      ErrorCode = "IncompleteRequest"
	ExternalServiceFailure ErrorCode = "ExternalServiceFailure"
	UnsupportedIntent      ErrorCode = "UnsupportedIntent"
	InvalidRequest         ErrorCode = "InvalidRequest"
)

// DomainError is an expected, user-reportable failure.
type DomainError struct {
	Code    ErrorCode
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewDomainError builds a DomainError with a formatted message.
func NewDomainError(code ErrorCode, format string, args ...any) error {
	return &DomainError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the ErrorCode carried by err, or "" when err is not a DomainError.
func CodeOf(err error) ErrorCode {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

// LocationLevel names the catalog level a resolution failed at.
type LocationLevel string

const (
	LevelBuilding LocationLevel = "building"
	LevelFloor    LocationLevel = "floor"
	LevelRoom     LocationLevel = "room"
)

// UnknownLocationError reports which level could not be resolved and the offending value.
type UnknownLocationError struct {
	Level LocationLevel
	Value string
	Scope string
}

func (e *UnknownLocationError) Error() string {
	if e.Scope != "" {
		return fmt.Sprintf("%s: unknown %s %q (%s)", UnknownLocation, e.Level, e.Value, e.Scope)
	}
	return fmt.Sprintf("%s: unknown %s %q", UnknownLocation, e.Level, e.Value)
}

// Unwrap lets errors.As find the DomainError view of the failure.
func (e *UnknownLocationError) Unwrap() error {
	labels := map[LocationLevel]string{LevelBuilding: "빌딩", LevelFloor: "층", LevelRoom: "회의실"}
	msg := fmt.Sprintf("알 수 없는 %s: %s", labels[e.Level], e.Value)
	if e.Scope != "" {
		msg += " (" + e.Scope + ")"
	}
	return &DomainError{Code: UnknownLocation, Message: msg}
}
