package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Engine operations.
	ErrBadRequest        = "E_BAD_REQUEST"
	ErrInsufficientFunds = "E_INSUFFICIENT_FUNDS"
	ErrInvalidTransition = "E_INVALID_TRANSITION"
	ErrNotFound          = "E_NOT_FOUND"
	ErrPersistence       = "E_PERSISTENCE"
	ErrInternal          = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:   {},
	ErrBadRequest:        {},
	ErrInsufficientFunds: {},
	ErrInvalidTransition: {},
	ErrNotFound:          {},
	ErrPersistence:       {},
	ErrInternal:          {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
