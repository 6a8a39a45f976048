package timer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zoonmattau/healthtracker-sub000/internal/feedback"
	"github.com/zoonmattau/healthtracker-sub000/internal/logger"
	"github.com/zoonmattau/healthtracker-sub000/internal/metrics"
)

var (
	ErrInvalidDuration = errors.New("duration must be positive")
	ErrNotPersisted    = errors.New("timer preferences not persisted")
)

// warningAt is the remaining time at which the pre-completion cue fires.
const warningAt = 6

// Controller runs at most one rest countdown for a single user.
// Cues and state changes are queued while mu is held and delivered in order
// after it is released, so the observer and notifier may read the controller
// but must not mutate it.
type Controller struct {
	userID   string
	interval time.Duration
	notifier feedback.Notifier
	observe  func(State)
	persist  func(Preferences) error

	mu        sync.Mutex
	outbox    []func()
	running   bool
	remaining int
	total     int
	prefs     Preferences
	stop      chan struct{}

	// emit serialises outbox delivery across callers.
	emit sync.Mutex
}

func newController(userID string, prefs Preferences, interval time.Duration, notifier feedback.Notifier, observe func(State), persist func(Preferences) error) *Controller {
	if interval <= 0 {
		interval = time.Second
	}
	if notifier == nil {
		notifier = feedback.Nop{}
	}
	return &Controller{
		userID:   userID,
		interval: interval,
		notifier: notifier,
		observe:  observe,
		persist:  persist,
		prefs:    prefs,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) Preferences() Preferences {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prefs
}

// Start begins a countdown of seconds, or of the default duration when
// seconds <= 0. A running countdown is replaced.
func (c *Controller) Start(seconds int) State {
	c.mu.Lock()
	defer c.unlock()
	c.startLocked(seconds)
	return c.stateLocked()
}

func (c *Controller) Pause() State {
	c.mu.Lock()
	defer c.unlock()
	if !c.running {
		return c.stateLocked()
	}
	c.stopTicking()
	c.running = false
	metrics.IncTimerEvent("pause")
	c.changed()
	return c.stateLocked()
}

func (c *Controller) Resume() State {
	c.mu.Lock()
	defer c.unlock()
	if c.running || c.remaining == 0 {
		return c.stateLocked()
	}
	c.running = true
	c.startTicking()
	metrics.IncTimerEvent("resume")
	c.changed()
	return c.stateLocked()
}

func (c *Controller) Stop() State {
	c.mu.Lock()
	defer c.unlock()
	c.stopTicking()
	c.running = false
	c.remaining = 0
	metrics.IncTimerEvent("stop")
	c.changed()
	return c.stateLocked()
}

// AddTime shifts both remaining and total time by delta, floored at zero.
func (c *Controller) AddTime(delta int) State {
	c.mu.Lock()
	defer c.unlock()
	c.remaining = max(0, c.remaining+delta)
	c.total = max(0, c.total+delta)
	c.haptic(feedback.ImpactLight)
	if c.running && c.remaining == 0 {
		c.completeLocked()
		return c.stateLocked()
	}
	c.changed()
	return c.stateLocked()
}

// CompleteSet plays the set-complete cue and, when auto-start is on,
// starts a countdown of the default duration.
func (c *Controller) CompleteSet() (bool, State) {
	c.mu.Lock()
	defer c.unlock()
	c.haptic(feedback.ImpactHeavy)
	if !c.prefs.AutoStartOnSetComplete {
		return false, c.stateLocked()
	}
	c.startLocked(0)
	return true, c.stateLocked()
}

func (c *Controller) SetDefaultDuration(seconds int) (Preferences, error) {
	return c.ApplyPreferences(PreferencesPatch{DefaultDurationSeconds: &seconds})
}

func (c *Controller) SetAutoStart(enabled bool) (Preferences, error) {
	return c.ApplyPreferences(PreferencesPatch{AutoStartOnSetComplete: &enabled})
}

func (c *Controller) SetVibrationEnabled(enabled bool) (Preferences, error) {
	return c.ApplyPreferences(PreferencesPatch{VibrationEnabled: &enabled})
}

func (c *Controller) SetSoundEnabled(enabled bool) (Preferences, error) {
	return c.ApplyPreferences(PreferencesPatch{SoundEnabled: &enabled})
}

// ApplyPreferences updates preferences in memory and then persists them.
// A persistence failure is logged and reported as ErrNotPersisted; the
// in-memory update stands.
func (c *Controller) ApplyPreferences(patch PreferencesPatch) (Preferences, error) {
	if patch.DefaultDurationSeconds != nil && *patch.DefaultDurationSeconds <= 0 {
		return c.Preferences(), ErrInvalidDuration
	}

	c.mu.Lock()
	if patch.DefaultDurationSeconds != nil {
		c.prefs.DefaultDurationSeconds = *patch.DefaultDurationSeconds
	}
	if patch.AutoStartOnSetComplete != nil {
		c.prefs.AutoStartOnSetComplete = *patch.AutoStartOnSetComplete
	}
	if patch.VibrationEnabled != nil {
		c.prefs.VibrationEnabled = *patch.VibrationEnabled
	}
	if patch.SoundEnabled != nil {
		c.prefs.SoundEnabled = *patch.SoundEnabled
	}
	prefs := c.prefs
	c.mu.Unlock()

	if c.persist == nil {
		return prefs, nil
	}
	if err := c.persist(prefs); err != nil {
		logger.Warn("timer: save preferences for %s: %v", c.userID, err)
		return prefs, fmt.Errorf("%w: %v", ErrNotPersisted, err)
	}
	return prefs, nil
}

// Close cancels the tick without changing state.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTicking()
}

func (c *Controller) startLocked(seconds int) {
	if seconds <= 0 {
		seconds = c.prefs.DefaultDurationSeconds
	}
	c.stopTicking()
	c.total = seconds
	c.remaining = seconds
	c.running = true
	c.haptic(feedback.ImpactMedium)
	c.startTicking()
	metrics.IncTimerEvent("start")
	c.changed()
}

func (c *Controller) startTicking() {
	stop := make(chan struct{})
	c.stop = stop
	ticker := time.NewTicker(c.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.tick(stop)
			}
		}
	}()
}

func (c *Controller) stopTicking() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

// tick advances the countdown unless stop belongs to a cancelled run.
func (c *Controller) tick(stop chan struct{}) {
	c.mu.Lock()
	defer c.unlock()
	if c.stop != stop || !c.running {
		return
	}
	c.advanceLocked()
}

func (c *Controller) advanceLocked() {
	prev := c.remaining
	if prev <= 1 {
		c.completeLocked()
		return
	}
	if prev == warningAt {
		c.haptic(feedback.ImpactLight)
	}
	c.remaining = prev - 1
	c.changed()
}

func (c *Controller) completeLocked() {
	c.stopTicking()
	c.remaining = 0
	c.running = false
	c.haptic(feedback.NotificationSuccess)
	if c.prefs.SoundEnabled {
		c.outbox = append(c.outbox, func() { c.notifier.Notify(c.userID, feedback.SoundComplete) })
	}
	metrics.IncTimerEvent("complete")
	c.changed()
}

func (c *Controller) haptic(kind feedback.Kind) {
	if c.prefs.VibrationEnabled {
		c.outbox = append(c.outbox, func() { c.notifier.Notify(c.userID, kind) })
	}
}

func (c *Controller) changed() {
	if c.observe != nil {
		st := c.stateLocked()
		c.outbox = append(c.outbox, func() { c.observe(st) })
	}
}

// unlock releases mu and then delivers whatever was queued while it was held.
func (c *Controller) unlock() {
	pending := c.outbox
	c.outbox = nil
	if len(pending) == 0 {
		c.mu.Unlock()
		return
	}
	c.emit.Lock()
	c.mu.Unlock()
	defer c.emit.Unlock()
	for _, fn := range pending {
		fn()
	}
}

func (c *Controller) stateLocked() State {
	status := StatusIdle
	switch {
	case c.running:
		status = StatusRunning
	case c.remaining > 0:
		status = StatusPaused
	}
	return State{
		IsRunning:            c.running,
		TimeRemainingSeconds: c.remaining,
		TotalDurationSeconds: c.total,
		Status:               status,
	}
}
