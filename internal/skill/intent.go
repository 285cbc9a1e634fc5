package skill

import "maps"

// Confirmation statuses.
const (
	ConfirmationNone = "NONE"
)

// Intent is a recognized user utterance with named slots.
type Intent struct {
	Name               string          `json:"name"`
	ConfirmationStatus string          `json:"confirmationStatus,omitempty"`
	Slots              map[string]Slot `json:"slots,omitempty"`
}

// Slot is a single named field within an intent.
type Slot struct {
	Name               string `json:"name"`
	Value              string `json:"value,omitempty"`
	ConfirmationStatus string `json:"confirmationStatus,omitempty"`
}

// NewIntent builds an intent from plain slot values.
func NewIntent(name string, values map[string]string) *Intent {
	intent := &Intent{
		Name:               name,
		ConfirmationStatus: ConfirmationNone,
		Slots:              make(map[string]Slot, len(values)),
	}
	for k, v := range values {
		intent.Slots[k] = Slot{Name: k, Value: v}
	}
	return intent
}

// SlotValue returns the value of a slot, or "" if absent or unfilled.
func (i *Intent) SlotValue(name string) string {
	if i == nil {
		return ""
	}
	return i.Slots[name].Value
}

// HasSlots returns true if every named slot has a value.
func (i *Intent) HasSlots(names ...string) bool {
	for _, n := range names {
		if i.SlotValue(n) == "" {
			return false
		}
	}
	return true
}

// Values returns the filled slot values keyed by slot name.
func (i *Intent) Values() map[string]string {
	if i == nil {
		return nil
	}
	out := make(map[string]string, len(i.Slots))
	for k, s := range i.Slots {
		if s.Value != "" {
			out[k] = s.Value
		}
	}
	return out
}

// Clone returns a copy that does not share the slot map.
func (i *Intent) Clone() *Intent {
	if i == nil {
		return nil
	}
	c := *i
	c.Slots = maps.Clone(i.Slots)
	return &c
}
