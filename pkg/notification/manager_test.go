package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationManager_Send(t *testing.T) {
	manager := NewNotificationManager()
	mock := NewMockNotifier()
	manager.RegisterNotifier(EmailSystem, mock)

	template := NoticeTemplate{
		Subject: "Password Reset",
		Text:    "Click this link to reset your password: {{.Link}}",
	}
	require.NoError(t, manager.RegisterNotification("password_reset", EmailSystem, template))

	err := manager.Send("password_reset", NotificationData{
		To:   "user@example.com",
		Data: map[string]string{"Link": "https://example.com/reset"},
	})
	require.NoError(t, err)

	sent := mock.LastSent()
	require.NotNil(t, sent)
	assert.Equal(t, NotificationType("password_reset"), sent.Type)
	assert.Equal(t, "user@example.com", sent.Data.To)
	assert.Equal(t, template, sent.Template)
}

func TestNotificationManager_UnregisteredType(t *testing.T) {
	manager := NewNotificationManager()
	manager.RegisterNotifier(EmailSystem, NewMockNotifier())

	err := manager.Send("unknown_type", NotificationData{To: "user@example.com"})
	assert.Error(t, err)
}

func TestNotificationManager_MissingNotifier(t *testing.T) {
	manager := NewNotificationManager()
	require.NoError(t, manager.RegisterNotification("password_reset", EmailSystem, NoticeTemplate{Text: "body"}))

	err := manager.Send("password_reset", NotificationData{To: "user@example.com"})
	assert.Error(t, err)
}

func TestRegisterNotification_Invalid(t *testing.T) {
	manager := NewNotificationManager()

	assert.Error(t, manager.RegisterNotification("", EmailSystem, NoticeTemplate{}))
	assert.Error(t, manager.RegisterNotification("password_reset", "", NoticeTemplate{}))
}
