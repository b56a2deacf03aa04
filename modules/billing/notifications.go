package billing

import (
	"github.com/sakthiswaran2705/NallaAngadi/handler"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/notifications"
)

const inboxPageSize = 50

func (m *Module) listNotifications(ctx Context, _ noRequest) handler.Response {
	list, err := m.notifications.List(ctx, ctx.UserID(), notifications.ListOptions{
		Limit:      inboxPageSize,
		OnlyUnread: ctx.Request().URL.Query().Get("unread") == "true",
	})
	if err != nil {
		return m.fail(ctx, "list_notifications", err)
	}
	unread, err := m.notifications.CountUnread(ctx, ctx.UserID())
	if err != nil {
		return m.fail(ctx, "count_unread", err)
	}
	if list == nil {
		list = []notifications.Notification{}
	}
	return handler.JSON(list, handler.WithJSONMeta(map[string]any{"unread": unread}))
}

// markRead marks the listed ids read, or the whole inbox when none are
// given.
func (m *Module) markRead(ctx Context, req markReadRequest) handler.Response {
	var err error
	if len(req.IDs) == 0 {
		err = m.notifications.MarkAllRead(ctx, ctx.UserID())
	} else {
		err = m.notifications.MarkRead(ctx, ctx.UserID(), req.IDs...)
	}
	if err != nil {
		return m.fail(ctx, "mark_read", err)
	}
	return handler.Empty()
}
