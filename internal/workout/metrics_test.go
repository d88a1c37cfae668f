package workout

import "testing"

func TestMETKnownSport(t *testing.T) {
	if MET("running") != 9.8 {
		t.Fatalf("unexpected running MET: %v", MET("running"))
	}
}

func TestMETUnknownSportFallsBack(t *testing.T) {
	if MET("curling") != defaultMET {
		t.Fatalf("unexpected fallback MET: %v", MET("curling"))
	}
}

func TestCalories(t *testing.T) {
	// 9.8 x 70 kg x 0.5 h = 343 kcal
	got := Calories("running", 70, 0.5)
	if got != 343 {
		t.Fatalf("unexpected calories: %v", got)
	}
}

func TestCaloriesInvalidInputs(t *testing.T) {
	if Calories("running", 0, 1) != 0 {
		t.Fatalf("expected zero calories for zero weight")
	}
	if Calories("running", 70, 0) != 0 {
		t.Fatalf("expected zero calories for zero duration")
	}
}
