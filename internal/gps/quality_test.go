package gps

import "testing"

func TestClassifyTiers(t *testing.T) {
	cases := map[float64]Quality{
		3:   QualityExcellent,
		5:   QualityExcellent,
		8:   QualityGood,
		10:  QualityGood,
		15:  QualityFair,
		20:  QualityFair,
		35:  QualityPoor,
		50:  QualityPoor,
		51:  QualityNone,
		200: QualityNone,
	}
	for accuracy, want := range cases {
		if got := Classify(accuracy); got != want {
			t.Fatalf("accuracy %v: got %q want %q", accuracy, got, want)
		}
	}
}

func TestQualityUsable(t *testing.T) {
	if QualityNone.Usable() {
		t.Fatalf("none should not be usable")
	}
	if !QualityPoor.Usable() {
		t.Fatalf("poor should still be usable")
	}
}

func TestSignalFor(t *testing.T) {
	sig := SignalFor(12)
	if sig.AccuracyM != 12 || sig.Quality != QualityFair {
		t.Fatalf("unexpected signal: %+v", sig)
	}
}
