package game

import "fmt"

// ValidationError reports a request that can never succeed as stated:
// unknown entity/item/resource type, non-positive quantity, self-targeting
// attack, or an operation against a round in the wrong state. It is
// surfaced synchronously at the offending call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// InsufficientResourceError reports that an entity does not hold enough of a
// resource, currency-derived reservation or attack capacity to satisfy the
// request. The caller's state was valid; the request simply asks for more
// than is available.
type InsufficientResourceError struct {
	EntityID  string
	Resource  string
	Requested int
	Available int
}

func (e *InsufficientResourceError) Error() string {
	return fmt.Sprintf("insufficient %s for entity %s: requested %d, available %d",
		e.Resource, e.EntityID, e.Requested, e.Available)
}

// ConcurrencyConflictError reports that a record changed between reload and
// write (the version check failed). The operation made no change; the caller
// should retry with fresh state. The engine never auto-retries.
type ConcurrencyConflictError struct {
	Key string
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("concurrent modification of %s, retry with fresh state", e.Key)
}

// MalformedRecordError reports a queued intent that fails structural checks
// during settlement. It is logged and the record skipped; it never aborts
// the remaining batch.
type MalformedRecordError struct {
	IntentID string
	Reason   string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed intent %s: %s", e.IntentID, e.Reason)
}
