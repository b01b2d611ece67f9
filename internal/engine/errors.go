package engine

import "errors"

// Every engine failure is one of these sentinels, wrapped with call context.
// Callers branch with errors.Is; the HTTP layer maps them onto status codes.
var (
	// Validation.
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInvalidSide        = errors.New("side must be yes or no")
	ErrInvalidExpiration  = errors.New("expiration must be in the future")
	ErrDescriptionTooLong = errors.New("description exceeds maximum length")

	// State preconditions.
	ErrMarketExists           = errors.New("market already exists")
	ErrMarketNotActive        = errors.New("market is not active")
	ErrMarketNotExpired       = errors.New("market has not expired yet")
	ErrMarketNotResolved      = errors.New("market is not resolved")
	ErrMarketNotCancelled     = errors.New("market is not cancelled")
	ErrAlreadyClaimed         = errors.New("position already claimed")
	ErrPoolNotInitialized     = errors.New("pool is not initialized")
	ErrPoolAlreadyInitialized = errors.New("pool is already initialized")
	ErrUnauthorized           = errors.New("caller is not authorized")
	ErrInvalidPosition        = errors.New("position does not exist for caller")

	// Economic rejections, retriable with adjusted parameters.
	ErrSlippageExceeded      = errors.New("output below caller minimum")
	ErrOutputTooSmall        = errors.New("output below dust floor")
	ErrTradeExceedsMaxSize   = errors.New("trade exceeds maximum size")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrInsufficientShares    = errors.New("insufficient share balance")
	ErrNoWinnings            = errors.New("no winnings to claim")

	// Oracle.
	ErrInvalidOraclePrice = errors.New("oracle price unavailable or invalid")
	ErrConfidenceTooHigh  = errors.New("oracle confidence exceeds maximum")
)
