package diag

// Sink accumulates diagnostics across an elaboration session. A failing
// declaration appends to the sink and is abandoned; the environment is
// left exactly as it was before that declaration (aside from any symbol
// left in the Pending kind), and the next declaration is attempted.
type Sink struct {
	diagnostics []Diagnostic
}

// Report appends d to the sink.
func (s *Sink) Report(d Diagnostic) {
	s.diagnostics = append(s.diagnostics, d)
}

// Diagnostics returns every diagnostic reported so far, in report order.
func (s *Sink) Diagnostics() []Diagnostic {
	return s.diagnostics
}

// OK reports whether no diagnostics have been reported.
func (s *Sink) OK() bool {
	return len(s.diagnostics) == 0
}
