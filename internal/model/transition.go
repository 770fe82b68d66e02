package model

import "slices"

// transitions lists the statuses reachable from a given current status.
//
// Statuses without an entry (lost, damaged, transferred) carry no
// restriction: equipment that resurfaces, gets repaired, or comes back from
// a transfer can move to any state. Only returned is terminal: a returned
// asset re-enters circulation as a fresh assignment, not by mutating the
// old record.
var transitions = map[string][]string{
	StatusAssigned: {
		StatusReturned,
		StatusMaintenance,
		StatusLost,
		StatusDamaged,
		StatusTransferred,
	},
	StatusMaintenance: {
		StatusAssigned,
		StatusDamaged,
	},
	StatusReturned: {},
}

// LegalTransition reports whether an asset may move from current to next.
// Identity transitions are always legal so that repeated lifecycle calls
// (returning an already-returned asset, for example) stay idempotent.
func LegalTransition(current, next string) bool {
	if current == next {
		return true
	}
	allowed, ok := transitions[current]
	if !ok {
		return true
	}
	return slices.Contains(allowed, next)
}
