// Package feedback describes the haptic and audio cues a device plays.
package feedback

import (
	"github.com/zoonmattau/healthtracker-sub000/internal/logger"
	"github.com/zoonmattau/healthtracker-sub000/internal/metrics"
	"github.com/zoonmattau/healthtracker-sub000/internal/stream"
)

type Kind string

const (
	ImpactLight         Kind = "impact_light"
	ImpactMedium        Kind = "impact_medium"
	ImpactHeavy         Kind = "impact_heavy"
	NotificationSuccess Kind = "notification_success"
	NotificationWarning Kind = "notification_warning"
	NotificationError   Kind = "notification_error"
	SoundComplete       Kind = "sound_complete"
)

// Notifier triggers a cue on the user's devices. Fire-and-forget.
type Notifier interface {
	Notify(userID string, kind Kind)
}

type Publisher interface {
	Publish(userID string, ev stream.Event) error
}

// StreamNotifier pushes cues as "feedback" events on the user's stream.
type StreamNotifier struct {
	pub Publisher
}

func NewStreamNotifier(pub Publisher) *StreamNotifier {
	return &StreamNotifier{pub: pub}
}

func (n *StreamNotifier) Notify(userID string, kind Kind) {
	metrics.IncFeedback(string(kind))
	if n.pub == nil {
		return
	}
	err := n.pub.Publish(userID, stream.Event{
		Type: "feedback",
		Data: map[string]string{"kind": string(kind)},
	})
	if err != nil {
		logger.Warn("feedback: publish %s for %s: %v", kind, userID, err)
	}
}

// Nop discards cues.
type Nop struct{}

func (Nop) Notify(string, Kind) {}
