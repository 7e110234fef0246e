package errs

const (
	ErrCode_OK                     = 0
	ErrCode_Unknown                = 1
	ErrCode_InvalidTimerDefinition = 100
	ErrCode_UnknownTimer           = 101
	ErrCode_UnsupportedTimerKind   = 102
	ErrCode_ActionFailure          = 103
)

var (
	Unknown                = CreateCodeError(ErrCode_Unknown, "UNKNOWN")
	InvalidTimerDefinition = CreateCodeError(ErrCode_InvalidTimerDefinition, "INVALID_TIMER_DEFINITION")
	UnknownTimer           = CreateCodeError(ErrCode_UnknownTimer, "UNKNOWN_TIMER")
	UnsupportedTimerKind   = CreateCodeError(ErrCode_UnsupportedTimerKind, "UNSUPPORTED_TIMER_KIND")
	ActionFailure          = CreateCodeError(ErrCode_ActionFailure, "ACTION_FAILURE")
)
