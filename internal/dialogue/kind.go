// Package dialogue routes a conversational turn to exactly one handler and
// manages the state that travels with the session.
package dialogue

import "fmt"

// Kind identifies a handler variant.
type Kind int

const (
	KindSetup Kind = iota
	KindSetupGate
	KindLaunch
	KindAddCourse
	KindAddHomework
	KindHelp
	KindExit
	KindSessionEnded
	KindFallback

	kindCount
)

// dispatchOrder is the handler priority. The first handler that claims a turn
// wins, so Fallback must stay last.
var dispatchOrder = []Kind{
	KindSetup,
	KindSetupGate,
	KindLaunch,
	KindAddCourse,
	KindAddHomework,
	KindHelp,
	KindExit,
	KindSessionEnded,
	KindFallback,
}

func (k Kind) String() string {
	switch k {
	case KindSetup:
		return "setup"
	case KindSetupGate:
		return "setup_gate"
	case KindLaunch:
		return "launch"
	case KindAddCourse:
		return "add_course"
	case KindAddHomework:
		return "add_homework"
	case KindHelp:
		return "help"
	case KindExit:
		return "exit"
	case KindSessionEnded:
		return "session_ended"
	case KindFallback:
		return "fallback"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// newHandler returns the handler for a kind. Adding a Kind without a case
// here panics at startup.
func newHandler(k Kind) Handler {
	switch k {
	case KindSetup:
		return setupHandler{}
	case KindSetupGate:
		return setupGateHandler{}
	case KindLaunch:
		return launchHandler{}
	case KindAddCourse:
		return addCourseHandler{}
	case KindAddHomework:
		return addHomeworkHandler{}
	case KindHelp:
		return helpHandler{}
	case KindExit:
		return exitHandler{}
	case KindSessionEnded:
		return sessionEndedHandler{}
	case KindFallback:
		return fallbackHandler{}
	}
	panic(fmt.Sprintf("dialogue: no handler for %s", k))
}

func buildHandlers() []Handler {
	handlers := make([]Handler, 0, len(dispatchOrder))
	for _, k := range dispatchOrder {
		handlers = append(handlers, newHandler(k))
	}
	return handlers
}
