package domain

type NotificationKind string

const (
	NotificationRegisterActivate      NotificationKind = "register_activate"
	NotificationPasswordResetRequest  NotificationKind = "password_reset_request"
	NotificationPasswordResetSuccess  NotificationKind = "password_reset_success"
	NotificationPasswordChangeSuccess NotificationKind = "password_change_success"
)

type Notification struct {
	Kind      NotificationKind
	Recipient string
	Payload   map[string]string
}
