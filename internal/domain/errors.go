package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ConflictError represents a duplicate edge or a weight collision.
type ConflictError struct {
	Resource string
	Detail   string
}

func (e ConflictError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s already exists", e.Resource)
	}
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Detail)
}

func (e ConflictError) Is(target error) bool {
	_, ok := target.(ConflictError)
	if ok {
		return true
	}
	_, ok = target.(*ConflictError)
	return ok
}

var ErrConflict = ConflictError{}

// UnsupportedProtocolError rejects a payload whose protocol is not in
// the supported set. Not retryable.
type UnsupportedProtocolError struct {
	Protocol string
}

func (e UnsupportedProtocolError) Error() string {
	return fmt.Sprintf("unsupported protocol %q", e.Protocol)
}

func (e UnsupportedProtocolError) Is(target error) bool {
	_, ok := target.(UnsupportedProtocolError)
	if ok {
		return true
	}
	_, ok = target.(*UnsupportedProtocolError)
	return ok
}

var ErrUnsupportedProtocol = UnsupportedProtocolError{}

// MalformedOrderError rejects a payload missing required fields for its
// own protocol. Not retryable; retrying malformed input cannot succeed.
type MalformedOrderError struct {
	Protocol string
	Reason   string
}

func (e MalformedOrderError) Error() string {
	return fmt.Sprintf("malformed %s order: %s", e.Protocol, e.Reason)
}

func (e MalformedOrderError) Is(target error) bool {
	_, ok := target.(MalformedOrderError)
	if ok {
		return true
	}
	_, ok = target.(*MalformedOrderError)
	return ok
}

var ErrMalformedOrder = MalformedOrderError{}

// ConsistencyError reports an activity without its satellite or a
// satellite without its activity. Detected, never silently repaired.
type ConsistencyError struct {
	ActivityID string
	Detail     string
}

func (e ConsistencyError) Error() string {
	return fmt.Sprintf("consistency violation on activity %s: %s", e.ActivityID, e.Detail)
}

func (e ConsistencyError) Is(target error) bool {
	_, ok := target.(ConsistencyError)
	if ok {
		return true
	}
	_, ok = target.(*ConsistencyError)
	return ok
}

var ErrConsistency = ConsistencyError{}

// InvalidInputError rejects caller input before any storage access,
// e.g. a status transition back to Valid or a blocklisted profile.
type InvalidInputError struct {
	Reason string
}

func (e InvalidInputError) Error() string {
	return e.Reason
}

func (e InvalidInputError) Is(target error) bool {
	_, ok := target.(InvalidInputError)
	if ok {
		return true
	}
	_, ok = target.(*InvalidInputError)
	return ok
}

var ErrInvalidInput = InvalidInputError{}
