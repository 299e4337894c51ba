package bracket

import (
	"errors"
	"fmt"
)

// ErrorCode values are stable strings that callers may match on.
type ErrorCode string

const (
	CodeInscriptionNotClosed     ErrorCode = "INSCRIPTION_NOT_CLOSED"
	CodeTournamentAlreadyStarted ErrorCode = "TOURNAMENT_ALREADY_STARTED"
	CodeInvalidBracketSize       ErrorCode = "INVALID_BRACKET_SIZE"
	CodeBracketTooSmall          ErrorCode = "BRACKET_TOO_SMALL"
	CodeNoParticipants           ErrorCode = "NO_PARTICIPANTS"
	CodeTournamentNotFound       ErrorCode = "TOURNAMENT_NOT_FOUND"
	CodeInvalidConfig            ErrorCode = "INVALID_CONFIG"
	CodeUnknownFormat            ErrorCode = "UNKNOWN_FORMAT"
)

type GenerationError struct {
	Code   ErrorCode
	Detail string
}

func NewError(code ErrorCode, format string, args ...any) *GenerationError {
	return &GenerationError{Code: code, Detail: fmt.Sprintf(format, args...)}
}

func (e *GenerationError) Error() string {
	if e.Detail == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// Is matches on the code alone so sentinels compare equal to detailed errors.
func (e *GenerationError) Is(target error) bool {
	t, ok := target.(*GenerationError)
	return ok && t.Code == e.Code
}

var (
	ErrInscriptionNotClosed     = &GenerationError{Code: CodeInscriptionNotClosed}
	ErrTournamentAlreadyStarted = &GenerationError{Code: CodeTournamentAlreadyStarted}
	ErrInvalidBracketSize       = &GenerationError{Code: CodeInvalidBracketSize}
	ErrBracketTooSmall          = &GenerationError{Code: CodeBracketTooSmall}
	ErrNoParticipants           = &GenerationError{Code: CodeNoParticipants}
	ErrTournamentNotFound       = &GenerationError{Code: CodeTournamentNotFound}
	ErrInvalidConfig            = &GenerationError{Code: CodeInvalidConfig}
	ErrUnknownFormat            = &GenerationError{Code: CodeUnknownFormat}
)

// CodeOf extracts the domain code from err, if it carries one.
func CodeOf(err error) (ErrorCode, bool) {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Code, true
	}
	return "", false
}
