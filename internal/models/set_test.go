package models

import "testing"

// TestNextSetNumbersFreshLedger verifies the first set of a session gets 1/1.
func TestNextSetNumbersFreshLedger(t *testing.T) {
	setNumber, exerciseSetNumber := NextSetNumbers(nil, "squat")
	if setNumber != 1 || exerciseSetNumber != 1 {
		t.Errorf("NextSetNumbers(empty) = %d/%d, want 1/1", setNumber, exerciseSetNumber)
	}
}

// TestNextSetNumbersNeverReusesGlobal logs three sets, deletes the middle one,
// and checks the next insert takes a fresh global number instead of refilling
// the gap left by the deletion.
func TestNextSetNumbersNeverReusesGlobal(t *testing.T) {
	ledger := []SetRef{}
	for _, ex := range []string{"squat", "squat", "bench"} {
		setNumber, _ := NextSetNumbers(ledger, ex)
		ledger = append(ledger, SetRef{SetNumber: setNumber, ExerciseID: ex})
	}

	// Delete the second squat (global number 2); global numbers keep gaps.
	ledger = append(ledger[:1], ledger[2:]...)

	setNumber, exerciseSetNumber := NextSetNumbers(ledger, "squat")
	if setNumber != 4 {
		t.Errorf("set number after deletion = %d, want 4", setNumber)
	}
	for _, s := range ledger {
		if s.SetNumber == setNumber {
			t.Errorf("set number %d already assigned in ledger", setNumber)
		}
	}
	if exerciseSetNumber != 2 {
		t.Errorf("exercise set number = %d, want 2", exerciseSetNumber)
	}
}

// TestNextSetNumbersPerExerciseCount verifies the per-exercise counter tracks
// only the named exercise while the global counter spans the session.
func TestNextSetNumbersPerExerciseCount(t *testing.T) {
	ledger := []SetRef{
		{SetNumber: 1, ExerciseID: "squat"},
		{SetNumber: 2, ExerciseID: "bench"},
		{SetNumber: 3, ExerciseID: "squat"},
	}

	setNumber, exerciseSetNumber := NextSetNumbers(ledger, "bench")
	if setNumber != 4 {
		t.Errorf("set number = %d, want 4", setNumber)
	}
	if exerciseSetNumber != 2 {
		t.Errorf("exercise set number = %d, want 2", exerciseSetNumber)
	}
}
