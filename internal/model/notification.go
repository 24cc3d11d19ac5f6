package model

import "time"

// NotificationType is the kind of account event a notification describes.
type NotificationType string

const (
	NotificationWelcome  NotificationType = "welcome"
	NotificationLogin    NotificationType = "login"
	NotificationLogout   NotificationType = "logout"
	NotificationProfile  NotificationType = "profile"
	NotificationEmail    NotificationType = "email"
	NotificationPassword NotificationType = "password"
	NotificationSettings NotificationType = "settings"
	NotificationFollow   NotificationType = "follow"
	NotificationUnfollow NotificationType = "unfollow"
)

// Notification is one entry of the per-browser notification log.
type Notification struct {
	ID          string           `json:"id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Timestamp   time.Time        `json:"timestamp"`
	Read        bool             `json:"read"`
}
