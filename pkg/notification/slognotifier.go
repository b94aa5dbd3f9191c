package notification

import "log/slog"

// SlogNotifier writes notifications to the structured log. It is the default
// channel so security alerts always land somewhere even with no SMTP
// configuration.
type SlogNotifier struct{}

// NewSlogNotifier creates a new SlogNotifier
func NewSlogNotifier() *SlogNotifier {
	return &SlogNotifier{}
}

// Send implements Notifier.Send
func (n *SlogNotifier) Send(notificationType NotificationType, notification NotificationData) error {
	attrs := []any{
		"type", string(notificationType),
		"subject", notification.Subject,
		"body", notification.Body,
	}
	for k, v := range notification.Data {
		attrs = append(attrs, k, v)
	}
	slog.Warn("Notification", attrs...)
	return nil
}
