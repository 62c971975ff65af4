package notification

import (
	"fmt"
)

// NotificationManager routes notifications to registered notifiers using the
// template registered for the notification type and system.
type NotificationManager struct {
	notifiers map[NotificationSystem]Notifier
	registry  map[NotificationType]map[NotificationSystem]NoticeTemplate
}

// NewNotificationManager creates an empty notification manager.
func NewNotificationManager() *NotificationManager {
	return &NotificationManager{
		notifiers: make(map[NotificationSystem]Notifier),
		registry:  make(map[NotificationType]map[NotificationSystem]NoticeTemplate),
	}
}

// RegisterNotifier registers a notifier for a delivery system.
func (nm *NotificationManager) RegisterNotifier(system NotificationSystem, notifier Notifier) {
	nm.notifiers[system] = notifier
}

// RegisterNotification adds a notification template to the registry.
func (nm *NotificationManager) RegisterNotification(notifType NotificationType, system NotificationSystem, template NoticeTemplate) error {
	if notifType == "" || system == "" {
		return fmt.Errorf("invalid input: notification type and system cannot be empty")
	}

	if _, exists := nm.registry[notifType]; !exists {
		nm.registry[notifType] = make(map[NotificationSystem]NoticeTemplate)
	}

	nm.registry[notifType][system] = template
	return nil
}

// Send delivers a notification on every system registered for its type.
func (nm *NotificationManager) Send(notifType NotificationType, data NotificationData) error {
	systemTemplates, exists := nm.registry[notifType]
	if !exists {
		return fmt.Errorf("no templates registered for notification type: %s", notifType)
	}

	for system, template := range systemTemplates {
		notifier, exists := nm.notifiers[system]
		if !exists {
			return fmt.Errorf("no notifier registered for system: %s", system)
		}
		if err := notifier.Send(notifType, data, template); err != nil {
			return err
		}
	}

	return nil
}
