// Package console holds the stateful editing sessions the console drives:
// the content editor and the booking calendar. Sessions talk to the backend
// through the api client and report write outcomes through a Notifier.
package console

import "go.uber.org/zap"

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	}
	return "info"
}

// Notification is a transient, user-visible message (a toast).
type Notification struct {
	Level   Level
	Message string
}

type Notifier interface {
	Notify(Notification)
}

type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// LogNotifier writes notifications to a zap logger.
type LogNotifier struct {
	Log *zap.Logger
}

func (l LogNotifier) Notify(n Notification) {
	switch n.Level {
	case LevelError:
		l.Log.Error(n.Message)
	default:
		l.Log.Info(n.Message, zap.Stringer("level", n.Level))
	}
}
