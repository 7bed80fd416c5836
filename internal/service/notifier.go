package service

import "kishanmitra/client/internal/model"

// Notifier shows transient notices to the user.
type Notifier interface {
	Notify(n model.Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(model.Notice)

func (f NotifierFunc) Notify(n model.Notice) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(model.Notice) {}
