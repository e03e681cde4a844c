package service

// Notifier fans committed changes out to live admin sessions.
// Publish must not block the caller.
type Notifier interface {
	Publish(event string, data interface{})
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, interface{}) {}
