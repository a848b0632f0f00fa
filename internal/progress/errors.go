package progress

import "errors"

var (
	// ErrUnauthenticated is returned when no valid user identity accompanies the event.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrUnknownModule is returned when an event references a module id with no definition.
	ErrUnknownModule = errors.New("unknown module")
	// ErrInvalidPayload is returned for malformed event payloads, e.g. a score outside [0,100].
	ErrInvalidPayload = errors.New("invalid event payload")
	// ErrStorageUnavailable is returned when the durable store failed or timed out.
	// The ledger is left unchanged by the failed call.
	ErrStorageUnavailable = errors.New("progress storage unavailable")
)
