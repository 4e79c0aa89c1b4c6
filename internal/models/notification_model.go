package models

// NotificationType selects the styling of a toast.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationInfo    NotificationType = "info"
)

// NotificationDismissAfterMs is how long a toast stays on screen.
const NotificationDismissAfterMs = 5000

// Notification is the toast attached to API responses.
type Notification struct {
	Message        string           `json:"message"`
	Type           NotificationType `json:"type"`
	DismissAfterMs int              `json:"dismissAfterMs"`
}

func NewNotification(t NotificationType, message string) *Notification {
	return &Notification{Message: message, Type: t, DismissAfterMs: NotificationDismissAfterMs}
}
