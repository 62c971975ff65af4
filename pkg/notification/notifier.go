package notification

// NotificationSystem represents a delivery channel (e.g. email).
type NotificationSystem string

// NotificationType represents a kind of notification (e.g. "password_reset").
type NotificationType string

const (
	EmailSystem NotificationSystem = "email"
)

// NotificationData carries the per-send payload.
type NotificationData struct {
	To      string            // Recipient identifier (email address)
	Subject string            // Optional subject override for template subjects
	Data    map[string]string // Template data
}

// NoticeTemplate holds the rendered parts of a notification.
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

// Notifier sends one notification through a single channel.
type Notifier interface {
	Send(notificationType NotificationType, data NotificationData, template NoticeTemplate) error
}
