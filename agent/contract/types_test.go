package contract

import "testing"

func TestOutcomeConstructorsAndPredicates(t *testing.T) {
	t.Parallel()

	answered := Answered("2 weeks on standby")
	if answered.Status != OutcomeAnswered {
		t.Fatalf("expected answered status, got %s", answered.Status)
	}
	if answered.Text != "2 weeks on standby" {
		t.Fatalf("unexpected answer text: %q", answered.Text)
	}
	if !answered.Answered() || answered.Suspended() {
		t.Fatalf("answered outcome predicates wrong: answered=%v suspended=%v",
			answered.Answered(), answered.Suspended())
	}
	if answered.EscalationQuery != "" {
		t.Fatalf("answered outcome must not carry an escalation query")
	}

	suspended := Suspended("weather is out of scope?")
	if suspended.Status != OutcomeSuspended {
		t.Fatalf("expected suspended status, got %s", suspended.Status)
	}
	if suspended.EscalationQuery != "weather is out of scope?" {
		t.Fatalf("unexpected escalation query: %q", suspended.EscalationQuery)
	}
	if !suspended.Suspended() || suspended.Answered() {
		t.Fatalf("suspended outcome predicates wrong: answered=%v suspended=%v",
			suspended.Answered(), suspended.Suspended())
	}
	if suspended.Text != "" {
		t.Fatalf("suspended outcome must not carry answer text")
	}

	var zero Outcome
	if zero.Answered() || zero.Suspended() {
		t.Fatalf("zero outcome must satisfy neither predicate")
	}
}
