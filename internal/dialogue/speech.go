package dialogue

import (
	"fmt"
	"strings"

	"github.com/ashureev/homework-planner/internal/domain"
)

const (
	speechSetupIntro    = "In order to get set up, I need to ask you a few questions."
	speechSetupComplete = "Now let's add some courses to your schedule."
	speechResume        = "Thanks! Now, back to what you asked."
	speechHelp          = "Tell me you have a new assignment or course to add or ask me about your classes or homework."
	speechGoodbye       = "Good bye!"
	speechApology       = "Sorry, I can't understand the command. Please say again."
	speechAnythingElse  = "What else would you like to do?"
	repromptHelp        = "You can also ask me for help!"
)

func interjection(s string) string {
	return `<say-as interpret-as="interjection">` + s + `</say-as>`
}

func newUserSetupSpeech(isLaunch bool) string {
	var b strings.Builder
	if isLaunch {
		b.WriteString(interjection("Hi there!"))
		b.WriteString(" Welcome to homework planner! ")
	} else {
		b.WriteString(interjection("Hold on a sec!"))
		b.WriteString(" ")
	}
	b.WriteString(speechSetupIntro)
	return b.String()
}

func welcomeBackSpeech(profile domain.UserProfile) string {
	return fmt.Sprintf("Welcome back, %s! What would you like me to do?", profile.Name)
}

func alreadySetUpSpeech(profile domain.UserProfile) string {
	return fmt.Sprintf("You're already set up, %s. %s", profile.Name, speechAnythingElse)
}

func confirmAssignmentSpeech(a domain.Assignment) string {
	speech := fmt.Sprintf(`Added %s %s on <say-as interpret-as="date" format="md">%s</say-as>`,
		a.Course, a.Name, a.DueDate.MonthDay())
	if a.HasDueTime() {
		speech += " at " + string(a.DueTime)
	}
	return speech
}

func confirmCoursesSpeech(added, requested []string) string {
	if len(added) == 0 {
		return fmt.Sprintf("%s already on your schedule.", pluralize(joinList(requested), len(requested)))
	}
	return fmt.Sprintf("Added %s to your courses.", joinList(added))
}

func pluralize(subject string, n int) string {
	if n == 1 {
		return subject + " is"
	}
	return subject + " are"
}

// joinList renders "a", "a and b", or "a, b, and c".
func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
}
