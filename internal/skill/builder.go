package skill

import "strings"

// Builder assembles a Response.
type Builder struct {
	speech     string
	reprompt   string
	directives []Directive
	endSession *bool
}

// NewBuilder returns an empty response builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Speak sets the output speech.
func (b *Builder) Speak(speech string) *Builder {
	b.speech = strings.TrimSpace(speech)
	return b
}

// Reprompt sets the reprompt speech. A reprompt keeps the session open.
func (b *Builder) Reprompt(speech string) *Builder {
	b.reprompt = strings.TrimSpace(speech)
	return b
}

// AddDelegateDirective hands the dialogue back to the platform. A nil intent
// lets the platform continue eliciting slots for the current intent.
func (b *Builder) AddDelegateDirective(intent *Intent) *Builder {
	b.directives = append(b.directives, Directive{
		Type:          DirectiveDelegate,
		UpdatedIntent: intent.Clone(),
	})
	return b
}

// EndSession overrides the derived shouldEndSession flag.
func (b *Builder) EndSession(end bool) *Builder {
	b.endSession = &end
	return b
}

// Build returns the response. Without an explicit override the session ends
// when there is neither a reprompt nor a directive.
func (b *Builder) Build() *Response {
	resp := &Response{}
	if b.speech != "" {
		resp.OutputSpeech = wrapSSML(b.speech)
	}
	if b.reprompt != "" {
		resp.Reprompt = &Reprompt{OutputSpeech: wrapSSML(b.reprompt)}
	}
	if len(b.directives) > 0 {
		resp.Directives = append([]Directive(nil), b.directives...)
	}
	if b.endSession != nil {
		resp.ShouldEndSession = *b.endSession
	} else {
		resp.ShouldEndSession = b.reprompt == "" && len(b.directives) == 0
	}
	return resp
}
