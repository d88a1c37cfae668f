package segment

import (
	"testing"
	"time"
)

func testPlan() []Segment {
	return []Segment{
		{Name: "warmup", Target: TargetTime, TargetValue: 60},
		{Name: "run", Target: TargetDistance, TargetValue: 1000},
		{Name: "cooldown", Target: TargetOpen},
	}
}

func TestTimeTargetAutoAdvance(t *testing.T) {
	now := time.Now()
	tr := NewTracker(testPlan(), now)

	var entered bool
	for i := 0; i < 60; i++ {
		ev := tr.Tick(now.Add(time.Duration(i) * time.Second))
		if ev.EnteredTransition {
			entered = true
		}
	}
	if !entered {
		t.Fatalf("expected transition after 60 ticks")
	}
	if !tr.InTransition() {
		t.Fatalf("expected countdown running")
	}
	if got := tr.State().CurrentIndex; got != 0 {
		t.Fatalf("index should not advance before countdown, got %d", got)
	}

	for i := 0; i < 2; i++ {
		if tr.TickTransition(now) {
			t.Fatalf("advanced too early on countdown tick %d", i)
		}
	}
	if !tr.TickTransition(now) {
		t.Fatalf("expected advance on third countdown tick")
	}

	st := tr.State()
	if st.CurrentIndex != 1 {
		t.Fatalf("expected index 1, got %d", st.CurrentIndex)
	}
	if !st.Segments[0].Completed || st.Segments[0].CompletedAt.IsZero() {
		t.Fatalf("first segment should be completed")
	}
	if st.Segments[1].StartedAt.IsZero() {
		t.Fatalf("second segment should be started")
	}
}

func TestApproachingAlertSingleFire(t *testing.T) {
	now := time.Now()
	tr := NewTracker([]Segment{{Target: TargetTime, TargetValue: 60}}, now)

	var approaching int
	for i := 0; i < 55; i++ {
		for _, a := range tr.Tick(now).Alerts {
			if a.Kind == AlertApproaching {
				approaching++
			}
		}
	}
	if approaching != 1 {
		t.Fatalf("expected exactly one approaching alert, got %d", approaching)
	}
}

func TestApproachingAlertSurvivesSkippedTick(t *testing.T) {
	now := time.Now()
	tr := NewTracker([]Segment{{Target: TargetDistance, TargetValue: 1000}}, now)

	// jump straight from far outside the band to deep inside it
	ev := tr.AddDistance(950, now)
	var approaching bool
	for _, a := range ev.Alerts {
		if a.Kind == AlertApproaching {
			approaching = true
		}
	}
	if !approaching {
		t.Fatalf("expected approaching alert on band crossing")
	}
}

func TestDistanceAlertBandCap(t *testing.T) {
	now := time.Now()
	// 10% of 5000 m would be 500 m; band must cap at 100 m
	tr := NewTracker([]Segment{{Target: TargetDistance, TargetValue: 5000}}, now)

	if len(tr.AddDistance(4500, now).Alerts) != 0 {
		t.Fatalf("alert fired outside the 100 m band")
	}
	ev := tr.AddDistance(450, now)
	if len(ev.Alerts) != 1 || ev.Alerts[0].Kind != AlertApproaching {
		t.Fatalf("expected approaching alert inside band, got %+v", ev.Alerts)
	}
}

func TestDistanceTargetCompletion(t *testing.T) {
	now := time.Now()
	tr := NewTracker(testPlan(), now)

	// skip past the time segment
	tr.Skip(now)

	for i := 0; i < 10; i++ {
		tr.Tick(now)
	}
	ev := tr.AddDistance(1000, now)
	if !ev.EnteredTransition {
		t.Fatalf("expected transition on meeting distance target")
	}

	st := tr.State()
	seg := st.Segments[1]
	if !seg.Completed {
		t.Fatalf("segment should be completed")
	}
	if seg.AveragePaceSecPerKm != 10 {
		t.Fatalf("expected pace 10 sec/km, got %v", seg.AveragePaceSecPerKm)
	}
}

func TestOpenSegmentNeverAutoAdvances(t *testing.T) {
	now := time.Now()
	tr := NewTracker([]Segment{{Target: TargetOpen}}, now)

	for i := 0; i < 1000; i++ {
		ev := tr.Tick(now)
		if len(ev.Alerts) != 0 || ev.EnteredTransition {
			t.Fatalf("open segment produced events: %+v", ev)
		}
	}
	if tr.Finished() {
		t.Fatalf("open segment should not finish on its own")
	}

	ev := tr.Skip(now)
	if !ev.Advanced || !tr.Finished() {
		t.Fatalf("skip should complete the open segment")
	}
}

func TestLastSegmentContinuesFreeForm(t *testing.T) {
	now := time.Now()
	tr := NewTracker([]Segment{{Target: TargetTime, TargetValue: 2}}, now)

	tr.Tick(now)
	ev := tr.Tick(now)
	if ev.EnteredTransition {
		t.Fatalf("last segment must not enter transition")
	}
	if !tr.Finished() {
		t.Fatalf("tracker should be finished")
	}
	// further accumulation is a no-op
	if ev := tr.Tick(now); len(ev.Alerts) != 0 {
		t.Fatalf("finished tracker should be inert")
	}
}

func TestAutoAdvanceDisabledKeepsAccumulating(t *testing.T) {
	now := time.Now()
	tr := NewTracker([]Segment{{Target: TargetTime, TargetValue: 5}, {Target: TargetOpen}}, now)
	if tr.ToggleAutoAdvance() {
		t.Fatalf("expected auto-advance off")
	}

	var completed int
	for i := 0; i < 20; i++ {
		for _, a := range tr.Tick(now).Alerts {
			if a.Kind == AlertCompleted {
				completed++
			}
		}
	}
	if completed != 1 {
		t.Fatalf("expected a single completed alert, got %d", completed)
	}
	st := tr.State()
	if st.CurrentIndex != 0 {
		t.Fatalf("index must not advance with auto-advance off")
	}
	if st.Segments[0].ActualDurationSec != 20 {
		t.Fatalf("segment should keep accumulating, got %v", st.Segments[0].ActualDurationSec)
	}
}

func TestReenableAutoAdvanceCompletesMetTarget(t *testing.T) {
	now := time.Now()
	tr := NewTracker([]Segment{{Target: TargetTime, TargetValue: 5}, {Target: TargetOpen}}, now)
	if tr.ToggleAutoAdvance() {
		t.Fatalf("expected auto-advance off")
	}

	// run well past the target while disabled
	for i := 0; i < 10; i++ {
		tr.Tick(now)
	}
	if tr.State().CurrentIndex != 0 {
		t.Fatalf("index must not advance with auto-advance off")
	}

	if !tr.ToggleAutoAdvance() {
		t.Fatalf("expected auto-advance back on")
	}
	ev := tr.Tick(now)
	if !ev.EnteredTransition {
		t.Fatalf("met target must enter transition once auto-advance is back on")
	}
	if !tr.State().Segments[0].Completed {
		t.Fatalf("segment should be completed")
	}

	for i := 0; i < 3; i++ {
		tr.TickTransition(now)
	}
	if got := tr.State().CurrentIndex; got != 1 {
		t.Fatalf("expected advance to segment 1, got %d", got)
	}
}

func TestSkipDuringTransitionAdvancesImmediately(t *testing.T) {
	now := time.Now()
	tr := NewTracker([]Segment{{Target: TargetTime, TargetValue: 1}, {Target: TargetOpen}, {Target: TargetOpen}}, now)

	ev := tr.Tick(now)
	if !ev.EnteredTransition {
		t.Fatalf("expected transition")
	}
	skip := tr.Skip(now)
	if !skip.Advanced || tr.InTransition() {
		t.Fatalf("skip should clear the countdown and advance")
	}
	if got := tr.State().CurrentIndex; got != 1 {
		t.Fatalf("expected index 1, got %d", got)
	}
}

func TestStateReturnsCopy(t *testing.T) {
	now := time.Now()
	tr := NewTracker(testPlan(), now)
	st := tr.State()
	st.Segments[0].ActualDurationSec = 999

	if tr.State().Segments[0].ActualDurationSec != 0 {
		t.Fatalf("state copy leaked into tracker")
	}
}

func TestNoAccumulationDuringTransition(t *testing.T) {
	now := time.Now()
	tr := NewTracker([]Segment{{Target: TargetTime, TargetValue: 1}, {Target: TargetOpen}}, now)
	tr.Tick(now)
	if !tr.InTransition() {
		t.Fatalf("expected transition")
	}

	tr.AddDistance(50, now)
	tr.Tick(now)
	st := tr.State()
	if st.Segments[1].ActualDistanceM != 0 || st.Segments[1].ActualDurationSec != 0 {
		t.Fatalf("next segment accumulated during countdown: %+v", st.Segments[1])
	}
}
