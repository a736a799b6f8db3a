package protocol

// Error codes carried by ACTION_RESULT events.
const (
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	ErrBadRequest    = "E_BAD_REQUEST"
	ErrNoPermission  = "E_NO_PERMISSION"
	ErrNoResource    = "E_NO_RESOURCE"
	ErrInvalidTarget = "E_INVALID_TARGET"
	ErrRateLimit     = "E_RATE_LIMIT"
	ErrConflict      = "E_CONFLICT"
	ErrBlocked       = "E_BLOCKED"
	ErrStale         = "E_STALE"
	ErrInternal      = "E_INTERNAL"
)

var codeText = map[string]string{
	ErrProtoBadRequest: "malformed message",
	ErrBadRequest:      "bad request",
	ErrNoPermission:    "not permitted here",
	ErrNoResource:      "missing resources",
	ErrInvalidTarget:   "target not found",
	ErrRateLimit:       "rate limited",
	ErrConflict:        "task slot occupied",
	ErrBlocked:         "path blocked",
	ErrStale:           "stale tick",
	ErrInternal:        "server error",
}

func isKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := codeText[code]
	return ok
}

// CodeText returns a short description of code for logs.
func CodeText(code string) string {
	if code == "" {
		return "ok"
	}
	if !isKnownCode(code) {
		return "unknown error " + code
	}
	return codeText[code]
}
