package memory

// State is the mutable conversation state a Manager owns exclusively.
// Window is never exposed by reference outside this package; callers get
// copies via Manager.SnapshotWindow.
type State struct {
	summary       string
	window        []Message
	userTurnCount int
}

// newState returns an empty State: empty summary, empty window, zero
// counter, as required at Manager construction.
func newState() *State {
	return &State{window: make([]Message, 0)}
}

// append adds a Message to the end of the window.
func (s *State) append(m Message) {
	s.window = append(s.window, m)
}

// setSummary replaces the summary in full (never partially edited).
func (s *State) setSummary(summary string) {
	s.summary = summary
}

// setWindow replaces the window wholesale. Used only by the Fold Engine.
func (s *State) setWindow(w []Message) {
	s.window = w
}

// incrementUserTurns bumps the monotone user-turn counter.
func (s *State) incrementUserTurns() {
	s.userTurnCount++
}

// windowLen is a read-only convenience for trigger predicates.
func (s *State) windowLen() int {
	return len(s.window)
}

// cloneWindow returns a defensive copy of the window in insertion order.
func (s *State) cloneWindow() []Message {
	out := make([]Message, len(s.window))
	copy(out, s.window)
	return out
}
