package timer

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zoonmattau/healthtracker-sub000/internal/feedback"
)

type recordingNotifier struct {
	mu    sync.Mutex
	kinds []feedback.Kind
}

func (n *recordingNotifier) Notify(_ string, kind feedback.Kind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, kind)
}

func (n *recordingNotifier) count(kind feedback.Kind) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, k := range n.kinds {
		if k == kind {
			total++
		}
	}
	return total
}

// slowController never ticks on its own during a test.
func slowController(prefs Preferences, notifier feedback.Notifier) *Controller {
	return newController("user-1", prefs, time.Hour, notifier, nil, nil)
}

// step performs one tick synchronously.
func step(c *Controller) {
	c.mu.Lock()
	stop := c.stop
	c.mu.Unlock()
	c.tick(stop)
}

func TestStartThenStop(t *testing.T) {
	for _, d := range []int{1, 5, 60, 600} {
		c := slowController(DefaultPreferences(90), nil)
		st := c.Start(d)
		if !st.IsRunning || st.TimeRemainingSeconds != d || st.TotalDurationSeconds != d {
			t.Fatalf("unexpected start state %+v", st)
		}
		st = c.Stop()
		if st.IsRunning || st.TimeRemainingSeconds != 0 || st.Status != StatusIdle {
			t.Fatalf("unexpected stop state %+v", st)
		}
	}
}

func TestStartUsesDefaultDuration(t *testing.T) {
	c := slowController(DefaultPreferences(120), nil)
	defer c.Close()
	if st := c.Start(0); st.TimeRemainingSeconds != 120 {
		t.Fatalf("expected default 120, got %d", st.TimeRemainingSeconds)
	}
}

func TestPauseResume(t *testing.T) {
	c := slowController(DefaultPreferences(90), nil)
	defer c.Close()

	c.Start(10)
	step(c)
	st := c.Pause()
	if st.IsRunning || st.TimeRemainingSeconds != 9 || st.Status != StatusPaused {
		t.Fatalf("unexpected paused state %+v", st)
	}

	// ticks from a cancelled run are ignored
	c.tick(nil)
	if c.State().TimeRemainingSeconds != 9 {
		t.Fatalf("paused timer must not advance")
	}

	st = c.Resume()
	if !st.IsRunning || st.TimeRemainingSeconds != 9 {
		t.Fatalf("unexpected resumed state %+v", st)
	}
}

func TestPauseAndResumeNoops(t *testing.T) {
	c := slowController(DefaultPreferences(90), nil)
	if st := c.Pause(); st.Status != StatusIdle {
		t.Fatalf("pause on idle should be a no-op")
	}
	if st := c.Resume(); st.IsRunning {
		t.Fatalf("resume on idle should be a no-op")
	}
}

func TestTickWarningAndCompletion(t *testing.T) {
	n := &recordingNotifier{}
	c := slowController(DefaultPreferences(90), n)

	c.Start(7)
	if n.count(feedback.ImpactMedium) != 1 {
		t.Fatalf("expected start cue")
	}

	step(c) // 7 -> 6
	if n.count(feedback.ImpactLight) != 0 {
		t.Fatalf("warning fired early")
	}
	step(c) // 6 -> 5
	if n.count(feedback.ImpactLight) != 1 {
		t.Fatalf("expected warning cue at six seconds")
	}
	for i := 0; i < 4; i++ {
		step(c)
	}
	if st := c.State(); !st.IsRunning || st.TimeRemainingSeconds != 1 {
		t.Fatalf("unexpected state before completion %+v", st)
	}

	step(c)
	st := c.State()
	if st.IsRunning || st.TimeRemainingSeconds != 0 || st.Status != StatusIdle {
		t.Fatalf("expected completion, got %+v", st)
	}
	if n.count(feedback.NotificationSuccess) != 1 || n.count(feedback.SoundComplete) != 1 {
		t.Fatalf("expected completion cues, got %v", n.kinds)
	}

	step(c)
	if n.count(feedback.NotificationSuccess) != 1 {
		t.Fatalf("completion must fire once")
	}
}

func TestCuesRespectPreferences(t *testing.T) {
	n := &recordingNotifier{}
	prefs := DefaultPreferences(90)
	prefs.VibrationEnabled = false
	prefs.SoundEnabled = false
	c := slowController(prefs, n)

	c.Start(1)
	c.AddTime(5)
	c.Stop()
	c.Start(1)
	step(c)

	if len(n.kinds) != 0 {
		t.Fatalf("expected no cues, got %v", n.kinds)
	}
}

func TestAddTimeNeverNegative(t *testing.T) {
	c := slowController(DefaultPreferences(90), nil)
	defer c.Close()

	deltas := []int{-5, 30, -10, -100, 15, -1, -1000, 45}
	for _, d := range deltas {
		st := c.AddTime(d)
		if st.TimeRemainingSeconds < 0 || st.TotalDurationSeconds < 0 {
			t.Fatalf("negative time after AddTime(%d): %+v", d, st)
		}
		if st.TimeRemainingSeconds > st.TotalDurationSeconds {
			t.Fatalf("remaining exceeds total: %+v", st)
		}
	}

	c.Start(20)
	st := c.AddTime(15)
	if st.TimeRemainingSeconds != 35 || st.TotalDurationSeconds != 35 {
		t.Fatalf("unexpected extended state %+v", st)
	}
}

func TestAddTimeToZeroCompletes(t *testing.T) {
	n := &recordingNotifier{}
	c := slowController(DefaultPreferences(90), n)

	c.Start(10)
	st := c.AddTime(-30)
	if st.IsRunning || st.TimeRemainingSeconds != 0 {
		t.Fatalf("expected completion, got %+v", st)
	}
	if n.count(feedback.NotificationSuccess) != 1 {
		t.Fatalf("expected completion cue")
	}
}

func TestRestartReplacesCountdown(t *testing.T) {
	c := newController("user-1", DefaultPreferences(90), 5*time.Millisecond, nil, nil, nil)
	defer c.Close()

	c.Start(100)
	c.mu.Lock()
	first := c.stop
	c.mu.Unlock()

	c.Start(50)
	c.mu.Lock()
	second := c.stop
	c.mu.Unlock()

	if first == second {
		t.Fatalf("expected a new tick run")
	}
	select {
	case <-first:
	default:
		t.Fatalf("expected the first run to be cancelled")
	}

	// a late tick from the first run changes nothing
	before := c.State().TimeRemainingSeconds
	c.tick(first)
	if after := c.State().TimeRemainingSeconds; after > before || after < before-5 {
		t.Fatalf("stale tick affected state: %d -> %d", before, after)
	}
	if st := c.State(); st.TotalDurationSeconds != 50 {
		t.Fatalf("expected replaced total 50, got %d", st.TotalDurationSeconds)
	}
}

func TestRealTicksComplete(t *testing.T) {
	done := make(chan State, 16)
	observe := func(st State) {
		if !st.IsRunning && st.TotalDurationSeconds > 0 {
			select {
			case done <- st:
			default:
			}
		}
	}
	c := newController("user-1", DefaultPreferences(90), 5*time.Millisecond, nil, observe, nil)
	defer c.Close()

	c.Start(3)
	select {
	case st := <-done:
		if st.TimeRemainingSeconds != 0 {
			t.Fatalf("unexpected completion state %+v", st)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("countdown never completed")
	}
}

func TestCompleteSetAutoStart(t *testing.T) {
	n := &recordingNotifier{}
	c := slowController(DefaultPreferences(75), n)
	defer c.Close()

	started, st := c.CompleteSet()
	if started || st.IsRunning {
		t.Fatalf("auto start is off by default")
	}
	if n.count(feedback.ImpactHeavy) != 1 {
		t.Fatalf("expected set-complete cue")
	}

	if _, err := c.SetAutoStart(true); err != nil {
		t.Fatalf("set auto start: %v", err)
	}
	started, st = c.CompleteSet()
	if !started || !st.IsRunning || st.TimeRemainingSeconds != 75 {
		t.Fatalf("expected auto-started default countdown, got %+v", st)
	}
}

func TestPreferenceSetters(t *testing.T) {
	var saved []Preferences
	persist := func(p Preferences) error {
		saved = append(saved, p)
		return nil
	}
	c := newController("user-1", DefaultPreferences(90), time.Hour, nil, nil, persist)

	if _, err := c.SetDefaultDuration(0); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected invalid duration, got %v", err)
	}
	if _, err := c.SetDefaultDuration(45); err != nil {
		t.Fatalf("set default: %v", err)
	}
	if _, err := c.SetVibrationEnabled(false); err != nil {
		t.Fatalf("set vibration: %v", err)
	}
	if _, err := c.SetSoundEnabled(false); err != nil {
		t.Fatalf("set sound: %v", err)
	}

	if len(saved) != 3 {
		t.Fatalf("expected a write per setter, got %d", len(saved))
	}
	last := saved[len(saved)-1]
	if last.DefaultDurationSeconds != 45 || last.VibrationEnabled || last.SoundEnabled {
		t.Fatalf("unexpected persisted prefs %+v", last)
	}
}

func TestPreferencePersistFailureKeepsMemory(t *testing.T) {
	persist := func(Preferences) error { return errors.New("disk full") }
	c := newController("user-1", DefaultPreferences(90), time.Hour, nil, nil, persist)

	prefs, err := c.SetDefaultDuration(30)
	if !errors.Is(err, ErrNotPersisted) {
		t.Fatalf("expected not persisted, got %v", err)
	}
	if prefs.DefaultDurationSeconds != 30 || c.Preferences().DefaultDurationSeconds != 30 {
		t.Fatalf("in-memory update must stand")
	}
}

func TestObserverRunsWithControllerUnlocked(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	var c *Controller
	var seen State
	observe := func(st State) {
		seen = c.State()
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
	}
	c = newController("user-1", DefaultPreferences(90), time.Hour, nil, observe, nil)

	started := make(chan State)
	go func() { started <- c.Start(30) }()

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatalf("observer was not called")
	}

	read := make(chan State)
	go func() { read <- c.State() }()
	select {
	case st := <-read:
		if !st.IsRunning || st.TimeRemainingSeconds != 30 {
			t.Fatalf("unexpected state while observer blocked %+v", st)
		}
	case <-time.After(time.Second):
		t.Fatalf("State blocked behind the observer")
	}

	close(release)
	if st := <-started; !st.IsRunning {
		t.Fatalf("unexpected start state %+v", st)
	}
	if !seen.IsRunning {
		t.Fatalf("observer read stale state %+v", seen)
	}
}
