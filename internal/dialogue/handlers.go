package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ashureev/homework-planner/internal/domain"
	"github.com/ashureev/homework-planner/internal/skill"
)

// passThrough lets the platform keep eliciting slots for the current intent.
func passThrough() *skill.Response {
	return skill.NewBuilder().AddDelegateDirective(nil).Build()
}

type setupHandler struct{}

func (setupHandler) Kind() Kind { return KindSetup }

func (setupHandler) CanHandle(t *Turn) bool {
	return t.isIntent(IntentSetUp)
}

func (setupHandler) Handle(_ context.Context, t *Turn) (*skill.Response, error) {
	st := t.State()
	if !st.IsNew {
		return skill.NewBuilder().
			Speak(alreadySetUpSpeech(st.Profile)).
			Reprompt(repromptHelp).
			Build(), nil
	}

	if !t.Request().DialogComplete() {
		slog.Info("More info required for set up", "dialog_state", t.Request().DialogState)
		return passThrough(), nil
	}

	name := strings.TrimSpace(t.Intent().SlotValue(SlotName))
	if name == "" {
		return skill.NewBuilder().AddDelegateDirective(t.Intent()).Build(), nil
	}

	st.CompleteSetup(name)
	t.Attrs.Set(st)
	slog.Info("Setup complete", "user_id", t.Envelope.UserID())

	return skill.NewBuilder().
		Speak(speechSetupComplete).
		AddDelegateDirective(skill.NewIntent(IntentAddCourse, nil)).
		Build(), nil
}

type setupGateHandler struct{}

func (setupGateHandler) Kind() Kind { return KindSetupGate }

func (setupGateHandler) CanHandle(t *Turn) bool {
	if !t.isType(skill.LaunchRequest) && !t.isType(skill.IntentRequest) {
		return false
	}
	st := t.State()
	return st != nil && st.IsNew
}

func (setupGateHandler) Handle(_ context.Context, t *Turn) (*skill.Response, error) {
	isLaunch := t.isType(skill.LaunchRequest)
	if !isLaunch && t.Intent() != nil && isDeferrable(t.IntentName()) {
		st := t.State()
		st.PendingIntent = &domain.PendingIntent{
			Name:  t.IntentName(),
			Slots: t.Intent().Values(),
		}
		t.Attrs.Set(st)
		slog.Info("Intent deferred until setup completes", "intent", t.IntentName())
	}

	return skill.NewBuilder().
		Speak(newUserSetupSpeech(isLaunch)).
		AddDelegateDirective(skill.NewIntent(IntentSetUp, nil)).
		Build(), nil
}

type launchHandler struct{}

func (launchHandler) Kind() Kind { return KindLaunch }

func (launchHandler) CanHandle(t *Turn) bool {
	return t.isType(skill.LaunchRequest)
}

func (launchHandler) Handle(_ context.Context, t *Turn) (*skill.Response, error) {
	return skill.NewBuilder().
		Speak(welcomeBackSpeech(t.State().Profile)).
		Reprompt(repromptHelp).
		Build(), nil
}

type addCourseHandler struct{}

func (addCourseHandler) Kind() Kind { return KindAddCourse }

func (addCourseHandler) CanHandle(t *Turn) bool {
	return t.isIntent(IntentAddCourse)
}

func (addCourseHandler) Handle(_ context.Context, t *Turn) (*skill.Response, error) {
	if !t.Request().DialogComplete() {
		return passThrough(), nil
	}

	intent := t.Intent()
	var requested []string
	for _, slot := range courseSlots {
		if v := strings.TrimSpace(intent.SlotValue(slot)); v != "" {
			requested = append(requested, v)
		}
	}
	if len(requested) == 0 {
		return skill.NewBuilder().AddDelegateDirective(intent).Build(), nil
	}

	st := t.State()
	var added []string
	for _, name := range requested {
		if st.AddCourse(name) {
			added = append(added, name)
		}
	}
	pending := st.TakePendingIntent()
	t.Attrs.Set(st)
	slog.Info("Courses added", "added", len(added), "requested", len(requested))

	if pending != nil {
		slog.Info("Resuming deferred intent", "intent", pending.Name)
		return skill.NewBuilder().
			Speak(speechResume).
			AddDelegateDirective(skill.NewIntent(pending.Name, pending.Slots)).
			Build(), nil
	}

	return skill.NewBuilder().
		Speak(confirmCoursesSpeech(added, requested)).
		Reprompt(speechAnythingElse).
		Build(), nil
}

type addHomeworkHandler struct{}

func (addHomeworkHandler) Kind() Kind { return KindAddHomework }

func (addHomeworkHandler) CanHandle(t *Turn) bool {
	return t.isIntent(IntentAddHomework)
}

func (addHomeworkHandler) Handle(_ context.Context, t *Turn) (*skill.Response, error) {
	intent := t.Intent()
	if !intent.HasSlots(SlotAssignment, SlotDate, SlotCourse) {
		slog.Info("Missing information, delegating", "intent", intent.Name)
		return skill.NewBuilder().AddDelegateDirective(intent).Build(), nil
	}

	due, ok := t.Dates[SlotDate]
	if !ok {
		return nil, fmt.Errorf("date slot %q was not converted", intent.SlotValue(SlotDate))
	}

	a := domain.NewAssignment(
		strings.TrimSpace(intent.SlotValue(SlotCourse)),
		strings.TrimSpace(intent.SlotValue(SlotAssignment)),
		due,
		domain.TimeOfDay(strings.TrimSpace(intent.SlotValue(SlotTime))),
	)
	st := t.State()
	st.AddAssignment(a)
	t.Attrs.Set(st)

	return skill.NewBuilder().Speak(confirmAssignmentSpeech(a)).Build(), nil
}

type helpHandler struct{}

func (helpHandler) Kind() Kind { return KindHelp }

func (helpHandler) CanHandle(t *Turn) bool {
	return t.isType(skill.IntentRequest) && isHelpIntent(t.IntentName())
}

func (helpHandler) Handle(context.Context, *Turn) (*skill.Response, error) {
	return skill.NewBuilder().Speak(speechHelp).Reprompt(speechHelp).Build(), nil
}

type exitHandler struct{}

func (exitHandler) Kind() Kind { return KindExit }

func (exitHandler) CanHandle(t *Turn) bool {
	return t.isType(skill.IntentRequest) && isExitIntent(t.IntentName())
}

func (exitHandler) Handle(context.Context, *Turn) (*skill.Response, error) {
	return skill.NewBuilder().Speak(speechGoodbye).EndSession(true).Build(), nil
}

type sessionEndedHandler struct{}

func (sessionEndedHandler) Kind() Kind { return KindSessionEnded }

func (sessionEndedHandler) CanHandle(t *Turn) bool {
	return t.isType(skill.SessionEndedRequest)
}

func (sessionEndedHandler) Handle(_ context.Context, t *Turn) (*skill.Response, error) {
	slog.Info("Session ended", "reason", t.Request().Reason)
	return skill.NewBuilder().EndSession(true).Build(), nil
}

type fallbackHandler struct{}

func (fallbackHandler) Kind() Kind { return KindFallback }

func (fallbackHandler) CanHandle(*Turn) bool { return true }

func (fallbackHandler) Handle(context.Context, *Turn) (*skill.Response, error) {
	return apology(), nil
}

func apology() *skill.Response {
	return skill.NewBuilder().Speak(speechApology).Reprompt(speechApology).Build()
}
