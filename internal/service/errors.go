package service

import "errors"

// Service-level sentinels for failures the pure engine has no concept of.
var (
	ErrInvalidUser         = errors.New("user identity is required")
	ErrInvalidOracleFeed   = errors.New("oracle feed is required")
	ErrInvalidMarketID     = errors.New("market id must be 64 hex chars")
	ErrMarketNotFound      = errors.New("market not found")
	ErrFeatureDisabled     = errors.New("feature is disabled")
	ErrBridgeNotConfigured = errors.New("settlement bridge is not configured")
	ErrBridgeUnavailable   = errors.New("settlement bridge call failed")
	ErrAlreadyDelegated    = errors.New("market is already delegated")
	ErrNotDelegated        = errors.New("market is not delegated")
)
