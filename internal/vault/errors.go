package vault

import "errors"

var (
	ErrSwapLimit          = errors.New("swap limit exceeded")
	ErrAmountGivenZero    = errors.New("amount given is zero")
	ErrSwapFeeOutOfBounds = errors.New("swap fee percentage out of bounds")
	ErrInsufficientBpt    = errors.New("bpt amount exceeds total supply")
	ErrInvalidToken       = errors.New("invalid token")
)
