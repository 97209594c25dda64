package services

import "errors"

var (
	// ErrProviderNotFound is a configuration error: the id does not resolve
	// to a configured provider.
	ErrProviderNotFound = errors.New("provider not found")
	// ErrProviderExists is returned when adding a provider id twice.
	ErrProviderExists = errors.New("provider already configured")
	// ErrModelNotFound means no configured provider offers the model.
	ErrModelNotFound = errors.New("model not found")
	// ErrNoProviderConfigured means the default selection does not resolve.
	ErrNoProviderConfigured = errors.New("no provider configured")
	// ErrCapabilityNotSupported is returned when the resolved adapter cannot
	// perform the requested operation.
	ErrCapabilityNotSupported = errors.New("capability not supported by this provider")
	// ErrChatNotFound is returned by orchestration on an unknown chat id.
	ErrChatNotFound = errors.New("chat not found")
)
