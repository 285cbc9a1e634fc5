package dialogue

// Intent names on the wire.
const (
	IntentSetUp       = "SetUpIntent"
	IntentAddCourse   = "AddCourseIntent"
	IntentAddHomework = "AddHomeworkIntent"
	IntentHelp        = "HelpIntent"
	IntentStop        = "StopIntent"
	IntentCancel      = "CancelIntent"

	IntentBuiltinHelp   = "AMAZON.HelpIntent"
	IntentBuiltinStop   = "AMAZON.StopIntent"
	IntentBuiltinCancel = "AMAZON.CancelIntent"
)

// Slot names.
const (
	SlotName       = "name"
	SlotCourse     = "course"
	SlotAssignment = "assignment"
	SlotDate       = "date"
	SlotTime       = "time"
)

// courseSlots are the AddCourseIntent slots in collection order.
var courseSlots = []string{"courseOne", "courseTwo", "courseThree", "courseFour", "courseFive"}

func isHelpIntent(name string) bool {
	return name == IntentHelp || name == IntentBuiltinHelp
}

func isExitIntent(name string) bool {
	switch name {
	case IntentStop, IntentCancel, IntentBuiltinStop, IntentBuiltinCancel:
		return true
	}
	return false
}

// isDeferrable reports whether the setup gate replays the intent once
// onboarding finishes.
func isDeferrable(name string) bool {
	return name == IntentAddHomework || name == IntentAddCourse
}
