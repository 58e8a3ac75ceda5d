package domain

// QuoteState is the lifecycle state of a quote
type QuoteState string

const (
	QuoteStateSubmitted     QuoteState = "submitted"
	QuoteStatePriced        QuoteState = "priced"
	QuoteStateConfirmed     QuoteState = "confirmed"
	QuoteStateDeclined      QuoteState = "declined"
	QuoteStateTimeSuggested QuoteState = "time_suggested"
)

// IsValid checks if the state is a known lifecycle state
func (s QuoteState) IsValid() bool {
	switch s {
	case QuoteStateSubmitted, QuoteStatePriced, QuoteStateConfirmed, QuoteStateDeclined, QuoteStateTimeSuggested:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed
func (s QuoteState) IsTerminal() bool {
	return s == QuoteStateConfirmed
}

// QuoteEvent is an action that moves a quote between states
type QuoteEvent string

const (
	QuoteEventPrice   QuoteEvent = "price"
	QuoteEventConfirm QuoteEvent = "confirm"
	QuoteEventDecline QuoteEvent = "decline"
	QuoteEventSuggest QuoteEvent = "suggest"
)

// quoteTransitions maps event -> current state -> next state.
// A missing entry means the event is not allowed from that state.
var quoteTransitions = map[QuoteEvent]map[QuoteState]QuoteState{
	QuoteEventPrice: {
		QuoteStateSubmitted:     QuoteStatePriced,
		QuoteStatePriced:        QuoteStatePriced,
		QuoteStateDeclined:      QuoteStateDeclined,
		QuoteStateTimeSuggested: QuoteStateTimeSuggested,
	},
	QuoteEventConfirm: {
		QuoteStateSubmitted:     QuoteStateConfirmed,
		QuoteStatePriced:        QuoteStateConfirmed,
		QuoteStateDeclined:      QuoteStateConfirmed,
		QuoteStateTimeSuggested: QuoteStateConfirmed,
	},
	QuoteEventDecline: {
		QuoteStateSubmitted:     QuoteStateDeclined,
		QuoteStatePriced:        QuoteStateDeclined,
		QuoteStateDeclined:      QuoteStateDeclined,
		QuoteStateTimeSuggested: QuoteStateDeclined,
	},
	QuoteEventSuggest: {
		QuoteStateSubmitted:     QuoteStateTimeSuggested,
		QuoteStatePriced:        QuoteStateTimeSuggested,
		QuoteStateDeclined:      QuoteStateTimeSuggested,
		QuoteStateTimeSuggested: QuoteStateTimeSuggested,
	},
}

// Next returns the state reached by applying event, or false when the
// transition is not allowed
func (s QuoteState) Next(event QuoteEvent) (QuoteState, bool) {
	next, ok := quoteTransitions[event][s]
	return next, ok
}

// CanApply reports whether event is allowed from s
func (s QuoteState) CanApply(event QuoteEvent) bool {
	_, ok := s.Next(event)
	return ok
}

// StatesAllowing returns every state from which event may be applied.
// Repositories use it as the guard of a conditional update.
func StatesAllowing(event QuoteEvent) []QuoteState {
	states := make([]QuoteState, 0, len(quoteTransitions[event]))
	for _, s := range []QuoteState{QuoteStateSubmitted, QuoteStatePriced, QuoteStateConfirmed, QuoteStateDeclined, QuoteStateTimeSuggested} {
		if s.CanApply(event) {
			states = append(states, s)
		}
	}
	return states
}
