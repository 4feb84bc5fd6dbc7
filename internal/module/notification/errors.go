package notification

import "errors"

var (
	// ErrDuplicateCommand is returned when an event's message ID was
	// already recorded in the inbox.
	ErrDuplicateCommand = errors.New("event already processed")

	// ErrNotificationNotFound is returned when a receipt references an
	// unknown notification.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrUnsupportedChannel is returned when a configured channel has no
	// registered provider.
	ErrUnsupportedChannel = errors.New("unsupported notification channel")
)
