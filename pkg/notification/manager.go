package notification

import "log/slog"

// Manager fans a notification out to every registered notifier. Delivery is
// best-effort: a failing channel is logged and does not fail the request
// that triggered the notification.
type Manager struct {
	notifiers []Notifier
}

// NewManager creates a new Manager
func NewManager(notifiers ...Notifier) *Manager {
	return &Manager{notifiers: notifiers}
}

// RegisterNotifier adds a notifier to the fan-out set
func (m *Manager) RegisterNotifier(notifier Notifier) {
	m.notifiers = append(m.notifiers, notifier)
}

// Notify sends the notification through every registered channel. Safe to
// call on a nil Manager.
func (m *Manager) Notify(notificationType NotificationType, notification NotificationData) {
	if m == nil {
		return
	}
	for _, notifier := range m.notifiers {
		if err := notifier.Send(notificationType, notification); err != nil {
			slog.Error("Failed to deliver notification", "type", notificationType, "err", err)
		}
	}
}
