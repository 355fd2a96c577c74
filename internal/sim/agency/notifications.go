package agency

import "fmt"

// Notification is a user-visible message produced by the engine. The
// tail of the log is kept in snapshots and broadcast to observers.
type Notification struct {
	Day  uint64
	Text string
}

func (e *Engine) notify(day uint64, format string, args ...any) {
	n := Notification{Day: day, Text: fmt.Sprintf(format, args...)}
	e.notifications = append(e.notifications, n)
	if tail := e.cfg.NotificationTail; len(e.notifications) > tail {
		e.notifications = e.notifications[len(e.notifications)-tail:]
	}
	e.broadcastNotice(n)
}

// Notifications returns a copy of the retained notification tail.
func (e *Engine) Notifications() []Notification {
	out := make([]Notification, len(e.notifications))
	copy(out, e.notifications)
	return out
}

// noticesFor collects notification texts for the given day.
func (e *Engine) noticesFor(day uint64) []string {
	var out []string
	for _, n := range e.notifications {
		if n.Day == day {
			out = append(out, n.Text)
		}
	}
	return out
}
