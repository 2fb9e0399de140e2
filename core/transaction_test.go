package core

import "testing"

func TestTransactionStateCanTransition(t *testing.T) {
	order := []TransactionState{
		TransactionStateInit,
		TransactionStateIncomingRequested,
		TransactionStateQuoted,
		TransactionStateGrantRequested,
		TransactionStateGrantContinued,
		TransactionStateOutgoingCreated,
		TransactionStateCompleted,
	}

	for i := 0; i < len(order)-1; i++ {
		if !order[i].CanTransition(order[i+1]) {
			t.Errorf("%v -> %v should be allowed", order[i], order[i+1])
		}
	}

	// steps are never skipped
	if TransactionStateInit.CanTransition(TransactionStateQuoted) {
		t.Error("Init -> Quoted should not be allowed")
	}

	if TransactionStateQuoted.CanTransition(TransactionStateGrantContinued) {
		t.Error("Quoted -> GrantContinued should not be allowed")
	}

	// no going backwards
	if TransactionStateQuoted.CanTransition(TransactionStateInit) {
		t.Error("Quoted -> Init should not be allowed")
	}

	// any non-terminal state may fail
	for _, s := range order[:len(order)-1] {
		if !s.CanTransition(TransactionStateFailed) {
			t.Errorf("%v -> Failed should be allowed", s)
		}
	}

	// terminal states are final
	for _, s := range []TransactionState{TransactionStateCompleted, TransactionStateFailed} {
		for _, to := range order {
			if s.CanTransition(to) {
				t.Errorf("%v -> %v should not be allowed", s, to)
			}
		}
	}
}

func TestTransactionStateTerminal(t *testing.T) {
	if !TransactionStateCompleted.Terminal() || !TransactionStateFailed.Terminal() {
		t.Error("Completed and Failed are terminal")
	}

	if TransactionStateOutgoingCreated.Terminal() {
		t.Error("OutgoingCreated is not terminal")
	}
}

func TestRecurringStateTerminal(t *testing.T) {
	if !RecurringStateExhausted.Terminal() || !RecurringStateRevoked.Terminal() {
		t.Error("Exhausted and Revoked are terminal")
	}

	if RecurringStateRequested.Terminal() || RecurringStateActive.Terminal() {
		t.Error("Requested and Active are not terminal")
	}
}
