package notification

// NotificationType represents a kind of notification (e.g. "security_alert").
type NotificationType string

const (
	// SecurityAlertNotification is emitted when refresh token reuse is
	// detected. Unlike ordinary auth failures this one indicates possible
	// token theft and operators are expected to look at it.
	SecurityAlertNotification NotificationType = "security_alert"
)

// NotificationData carries the content of a single notification
type NotificationData struct {
	To      string            // Recipient identifier (e.g. email address)
	Subject string            // Optional: subject line for email-like channels
	Body    string            // The content or message to send
	Data    map[string]string // Additional metadata
}

// Notifier delivers a notification over one channel
type Notifier interface {
	Send(notificationType NotificationType, notification NotificationData) error
}
