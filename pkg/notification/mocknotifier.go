package notification

import "sync"

// SentNotification records one Send call on the mock.
type SentNotification struct {
	Type     NotificationType
	Data     NotificationData
	Template NoticeTemplate
}

// MockNotifier records notifications instead of delivering them. For tests.
type MockNotifier struct {
	mutex sync.Mutex
	Sent  []SentNotification
	// Err, when set, is returned by every Send call.
	Err error
}

// NewMockNotifier creates an empty mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Send records the notification.
func (m *MockNotifier) Send(notificationType NotificationType, data NotificationData, template NoticeTemplate) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentNotification{
		Type:     notificationType,
		Data:     data,
		Template: template,
	})
	return nil
}

// LastSent returns the most recent notification, nil when none was sent.
func (m *MockNotifier) LastSent() *SentNotification {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if len(m.Sent) == 0 {
		return nil
	}
	last := m.Sent[len(m.Sent)-1]
	return &last
}
