package common

import "errors"

var (

	// repository specific errors
	ErrorNotFound = errors.New("not found")

	// sync specific errors
	ErrorNotAuthenticated = errors.New("not authenticated")
	ErrorRemote           = errors.New("remote store error")
	ErrorSyncStopped      = errors.New("sync engine stopped")

	// media specific errors
	ErrorMediaNotConfigured = errors.New("media storage not configured")

	// entity specific errors
	ErrorInvalidInviteID   = errors.New("invalid invite id")
	ErrorInvalidRecurrence = errors.New("invalid recurrence rule")
)
