package skill

import "strings"

// Directive types.
const (
	DirectiveDelegate = "Dialog.Delegate"
)

// OutputSpeech is SSML speech.
type OutputSpeech struct {
	Type string `json:"type"`
	SSML string `json:"ssml"`
}

// Reprompt is spoken if the user stays silent.
type Reprompt struct {
	OutputSpeech *OutputSpeech `json:"outputSpeech,omitempty"`
}

// Directive asks the platform to continue the dialogue.
type Directive struct {
	Type          string  `json:"type"`
	UpdatedIntent *Intent `json:"updatedIntent,omitempty"`
}

// Response is the body of a ResponseEnvelope.
type Response struct {
	OutputSpeech     *OutputSpeech `json:"outputSpeech,omitempty"`
	Reprompt         *Reprompt     `json:"reprompt,omitempty"`
	ShouldEndSession bool          `json:"shouldEndSession"`
	Directives       []Directive   `json:"directives,omitempty"`
}

// Speech returns the speech markup without the <speak> wrapper.
func (r *Response) Speech() string {
	if r.OutputSpeech == nil {
		return ""
	}
	return unwrapSSML(r.OutputSpeech.SSML)
}

// RepromptSpeech returns the reprompt markup without the <speak> wrapper.
func (r *Response) RepromptSpeech() string {
	if r.Reprompt == nil || r.Reprompt.OutputSpeech == nil {
		return ""
	}
	return unwrapSSML(r.Reprompt.OutputSpeech.SSML)
}

// Delegate returns the first delegate directive, if any.
func (r *Response) Delegate() (Directive, bool) {
	for _, d := range r.Directives {
		if d.Type == DirectiveDelegate {
			return d, true
		}
	}
	return Directive{}, false
}

// HasDirectives returns true if the response continues the dialogue.
func (r *Response) HasDirectives() bool {
	return len(r.Directives) > 0
}

func wrapSSML(s string) *OutputSpeech {
	return &OutputSpeech{Type: "SSML", SSML: "<speak>" + s + "</speak>"}
}

func unwrapSSML(s string) string {
	s = strings.TrimPrefix(s, "<speak>")
	return strings.TrimSuffix(s, "</speak>")
}
