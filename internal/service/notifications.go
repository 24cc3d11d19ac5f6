package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/robotics-league/internal/apperror"
	"github.com/sakif/robotics-league/internal/model"
	"github.com/sakif/robotics-league/internal/storage"
)

// Publisher pushes a new notification to the profile's live connections.
type Publisher interface {
	Publish(profileID string, n model.Notification)
}

// NotificationLog is the per-profile feed of account events, stored newest
// first under the "notifications" key.
//
// BEST EFFORT:
// Append never returns an error. A failed write is logged and dropped, so a
// full or unreachable store can never undo the registration, login or profile
// change that triggered it.
type NotificationLog struct {
	maxEntries int
	publisher  Publisher
	logger     *slog.Logger
	now        func() time.Time
}

// NewNotificationLog keeps at most maxEntries per profile (0 means no cap).
// publisher may be nil.
func NewNotificationLog(maxEntries int, publisher Publisher, logger *slog.Logger) *NotificationLog {
	return &NotificationLog{
		maxEntries: maxEntries,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// Append records an event and publishes it.
func (l *NotificationLog) Append(ctx context.Context, local *storage.Local, typ model.NotificationType, title, description string) {
	now := l.now()
	n := model.Notification{
		// xid embeds the timestamp and a counter, so ids sort by creation
		// and never collide within one process.
		ID:          xid.NewWithTime(now).String(),
		Type:        typ,
		Title:       title,
		Description: description,
		Timestamp:   now.UTC(),
	}

	list, err := local.Notifications(ctx)
	if err != nil {
		// A corrupt log is replaced rather than blocking every future entry.
		l.logger.Warn("notification log unreadable, starting over",
			slog.String("profile_id", local.ProfileID()),
			slog.String("error", err.Error()),
		)
		list = nil
	}

	list = append([]model.Notification{n}, list...)
	if l.maxEntries > 0 && len(list) > l.maxEntries {
		list = list[:l.maxEntries]
	}

	if err := local.SetNotifications(ctx, list); err != nil {
		l.logger.Warn("dropping notification",
			slog.String("profile_id", local.ProfileID()),
			slog.String("type", string(typ)),
			slog.String("error", err.Error()),
		)
		return
	}

	if l.publisher != nil {
		l.publisher.Publish(local.ProfileID(), n)
	}
}

// List returns the log newest first.
func (l *NotificationLog) List(ctx context.Context, local *storage.Local) ([]model.Notification, error) {
	return local.Notifications(ctx)
}

// UnreadCount counts entries not yet marked read.
func (l *NotificationLog) UnreadCount(ctx context.Context, local *storage.Local) (int, error) {
	list, err := local.Notifications(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range list {
		if !e.Read {
			n++
		}
	}
	return n, nil
}

// MarkRead flags one entry. Unknown ids are apperror.NotFound.
func (l *NotificationLog) MarkRead(ctx context.Context, local *storage.Local, id string) error {
	list, err := local.Notifications(ctx)
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == id {
			if list[i].Read {
				return nil
			}
			list[i].Read = true
			return local.SetNotifications(ctx, list)
		}
	}
	return apperror.NotFound("notification", id)
}

// MarkAllRead flags every entry.
func (l *NotificationLog) MarkAllRead(ctx context.Context, local *storage.Local) error {
	list, err := local.Notifications(ctx)
	if err != nil {
		return err
	}
	changed := false
	for i := range list {
		if !list[i].Read {
			list[i].Read = true
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return local.SetNotifications(ctx, list)
}
