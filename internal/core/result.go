package core

import "fmt"

// State is the outcome class of a connector operation.
type State string

const (
	StateOK         State = "Ok"
	StateOKWithInfo State = "OkWithInfo"
	StateWarning    State = "Warning"
	StateError      State = "Error"
)

// Result is the structured outcome every lifecycle operation returns instead
// of an error.
type Result struct {
	State           State  `json:"state"`
	UserExplanation string `json:"userExplanation,omitempty"`
	TechExplanation string `json:"techExplanation,omitempty"`
	Code            string `json:"code,omitempty"`
}

// IsOK reports whether the operation succeeded, possibly with a note.
func (r Result) IsOK() bool {
	return r.State != StateError
}

// OK returns a plain success.
func OK() Result {
	return Result{State: StateOK}
}

// Info returns a success carrying an informational note.
func Info(user, tech string) Result {
	return Result{State: StateOKWithInfo, UserExplanation: user, TechExplanation: tech}
}

// Warn returns a warning; payload data is still valid.
func Warn(user, tech string) Result {
	return Result{State: StateWarning, UserExplanation: user, TechExplanation: tech}
}

// Fail returns an error result.
func Fail(user, tech string) Result {
	return Result{State: StateError, UserExplanation: user, TechExplanation: tech}
}

// Failf returns an error result whose user and technical text are the same.
func Failf(format string, args ...any) Result {
	msg := fmt.Sprintf(format, args...)
	return Result{State: StateError, UserExplanation: msg, TechExplanation: msg}
}

// ResultFromError folds err into an Error result. The user explanation comes
// from MapError and the technical explanation is the error text.
func ResultFromError(err error) Result {
	if err == nil {
		return OK()
	}
	msg := MapError(err)
	return Result{
		State:           StateError,
		UserExplanation: msg.Message,
		TechExplanation: err.Error(),
		Code:            msg.Code,
	}
}

// Worse returns whichever result has the more severe state. Ties keep r.
func (r Result) Worse(other Result) Result {
	if severity(other.State) > severity(r.State) {
		return other
	}
	return r
}

func severity(s State) int {
	switch s {
	case StateOKWithInfo:
		return 1
	case StateWarning:
		return 2
	case StateError:
		return 3
	default:
		return 0
	}
}

// Outcome returns r. Response types embedding Result expose it through this
// method so transports can read the outcome without knowing the payload.
func (r Result) Outcome() Result {
	return r
}
