package model

import "errors"

var (
	// User related errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")

	// Channel related errors
	ErrChannelNotFound = errors.New("channel not found")

	// Media related errors
	ErrMediaNotFound = errors.New("media object not found")
)
