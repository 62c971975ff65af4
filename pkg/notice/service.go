// Package notice wires the gateway's transactional email templates into a
// notification manager.
package notice

import (
	"embed"
	"log/slog"

	"github.com/ezamazwe/admin-gateway/pkg/notification"
)

// Notification types sent by the gateway.
const (
	AdminPasswordNotice     notification.NotificationType = "admin_password"
	PasswordResetNotice     notification.NotificationType = "password_reset"
	PasswordUpdateNotice    notification.NotificationType = "password_update"
	EmailVerificationNotice notification.NotificationType = "email_verification"
	ContactUsNotice         notification.NotificationType = "contact_us"
)

//go:embed templates/*
var templateFiles embed.FS

func loadTemplate(filename string) string {
	content, err := templateFiles.ReadFile(filename)
	if err != nil {
		slog.Error("Error reading template file!", "err", err, "filename", filename)
		return ""
	}
	return string(content)
}

// NewNotificationManager creates a notification manager with the email
// notifier and every gateway template registered.
func NewNotificationManager(smtpConfig notification.SMTPConfig) (*notification.NotificationManager, error) {
	notificationManager := notification.NewNotificationManager()

	emailNotifier, err := notification.NewEmailNotifier(smtpConfig)
	if err != nil {
		return nil, err
	}

	notificationManager.RegisterNotifier(notification.EmailSystem, emailNotifier)

	if err := registerTemplates(notificationManager); err != nil {
		return nil, err
	}

	return notificationManager, nil
}

// registerTemplates adds every gateway notice to the manager's registry.
func registerTemplates(nm *notification.NotificationManager) error {
	notices := []struct {
		notifType notification.NotificationType
		template  notification.NoticeTemplate
	}{
		{AdminPasswordNotice, notification.NoticeTemplate{
			Subject: "Your Account Information",
			Text:    loadTemplate("templates/email/admin_password.tmpl"),
		}},
		{PasswordResetNotice, notification.NoticeTemplate{
			Subject: "Password Reset",
			Text:    loadTemplate("templates/email/password_reset.tmpl"),
		}},
		{PasswordUpdateNotice, notification.NoticeTemplate{
			Subject: "Password Update",
			Text:    loadTemplate("templates/email/password_update.tmpl"),
		}},
		{EmailVerificationNotice, notification.NoticeTemplate{
			Subject: "Email Verification",
			Text:    loadTemplate("templates/email/email_verification.tmpl"),
		}},
		{ContactUsNotice, notification.NoticeTemplate{
			Subject: "Contact Form Message",
			Text:    loadTemplate("templates/email/contact_us.tmpl"),
		}},
	}

	for _, n := range notices {
		if err := nm.RegisterNotification(n.notifType, notification.EmailSystem, n.template); err != nil {
			slog.Error("failed to register notification", "type", n.notifType, "error", err)
			return err
		}
	}

	return nil
}
