package mqtt

import "errors"

var (
	// ErrDisabled is returned by Connect when MQTT is not enabled.
	ErrDisabled = errors.New("mqtt: disabled")

	// ErrConnectionFailed is returned when the initial connection attempt fails.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrPublishFailed is returned when a publish operation fails.
	ErrPublishFailed = errors.New("mqtt: publish failed")
)
