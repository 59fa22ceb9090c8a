package services

import "errors"

// Domain errors surfaced as scoped error events to the offending
// connection only. None of these ever reach the rest of the room.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidPhase    = errors.New("invalid phase for this action")
	ErrAlreadyPlaying  = errors.New("game already in progress")
	ErrAlreadyFinished = errors.New("game already finished")
	ErrDuplicateName   = errors.New("player name already taken")
	ErrPoolExhausted   = errors.New("question pool is empty")
	ErrAlreadyAnswered = errors.New("answer already submitted for this question")
	ErrInvalidConfig   = errors.New("invalid game configuration")
	ErrPlayerNotFound  = errors.New("player not found in session")
	ErrNoPlayers       = errors.New("at least one player is required to start")
	ErrInvalidPayload  = errors.New("malformed message payload")
)

// Stable machine codes carried on the error event.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeInvalidPhase    = "INVALID_PHASE"
	CodeDuplicateName   = "DUPLICATE_NAME"
	CodePoolExhausted   = "POOL_EXHAUSTED"
	CodeAlreadyAnswered = "ALREADY_ANSWERED"
	CodeInvalidConfig   = "INVALID_CONFIG"
	CodeInvalidPayload  = "INVALID_PAYLOAD"
	CodeInternal        = "INTERNAL"
)

// errorCode maps a domain error to its protocol code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrPlayerNotFound):
		return CodeNotFound
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrInvalidPhase), errors.Is(err, ErrAlreadyPlaying),
		errors.Is(err, ErrAlreadyFinished), errors.Is(err, ErrNoPlayers):
		return CodeInvalidPhase
	case errors.Is(err, ErrDuplicateName):
		return CodeDuplicateName
	case errors.Is(err, ErrPoolExhausted):
		return CodePoolExhausted
	case errors.Is(err, ErrAlreadyAnswered):
		return CodeAlreadyAnswered
	case errors.Is(err, ErrInvalidConfig):
		return CodeInvalidConfig
	case errors.Is(err, ErrInvalidPayload):
		return CodeInvalidPayload
	}
	return CodeInternal
}

// errorMessage returns the user-facing message for a domain error. The
// phase errors keep the product's Vietnamese wording.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return "Không tìm thấy phòng"
	case errors.Is(err, ErrAlreadyPlaying):
		return "Game đang diễn ra"
	case errors.Is(err, ErrAlreadyFinished):
		return "Game đã kết thúc"
	case errors.Is(err, ErrDuplicateName):
		return "Tên đã được sử dụng"
	}
	return err.Error()
}
