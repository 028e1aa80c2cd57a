package reclamm

import "errors"

// Input-domain errors.
var (
	ErrInvalidPrice                = errors.New("invalid initialization prices")
	ErrInvalidStartTime            = errors.New("invalid price ratio update start time")
	ErrInvalidFourthRootPriceRatio = errors.New("invalid fourth root price ratio")
	ErrInvalidTokenIndex           = errors.New("invalid token index")
	ErrInvalidBptAmount            = errors.New("invalid bpt amount")
	ErrBalanceOutOfRange           = errors.New("balance out of range")
	ErrTimestampOutOfRange         = errors.New("timestamp out of range")
)

// Numerical-safety errors.
var (
	ErrNegativeAmountOut          = errors.New("negative amount out")
	ErrAmountOutBiggerThanBalance = errors.New("amount out bigger than balance")
	ErrZeroVirtualBalance         = errors.New("virtual balance is zero")
)

// Stability-floor errors.
var (
	ErrTokenBalanceTooLow           = errors.New("token balance too low")
	ErrPoolCenterednessTooLow       = errors.New("pool centeredness too low")
	ErrBalanceRatioExceedsTolerance = errors.New("balance ratio exceeds tolerance")
	ErrPoolOutsideTargetRange       = errors.New("pool outside target range")
)

// Rate-limit errors.
var (
	ErrPriceRatioUpdateDurationTooShort = errors.New("price ratio update duration too short")
	ErrPriceRatioUpdateTooFast          = errors.New("price ratio update too fast")
	ErrDailyPriceShiftExponentTooHigh   = errors.New("daily price shift exponent too high")
	ErrInvalidCenterednessMargin        = errors.New("invalid centeredness margin")
)
