package pool

import (
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"reclamm/internal/fixedpoint"
	"reclamm/internal/model"
	"reclamm/internal/reclamm"
)

const secondsPerDay = 86400

// SetPriceRatioTarget starts a geometric change of the fourth root price
// ratio from its current value to endFourthRootPriceRatio over
// [startTime, endTime]. It returns the captured start value.
func (p *Pool) SetPriceRatioTarget(balances model.Balances, endFourthRootPriceRatio *uint256.Int, startTime, endTime, now uint64) (*uint256.Int, error) {
	start, err := p.setPriceRatioTarget(balances, endFourthRootPriceRatio, startTime, endTime, now)
	if err != nil {
		return nil, fmt.Errorf("set price ratio target: %w", err)
	}
	return start, nil
}

func (p *Pool) setPriceRatioTarget(balances model.Balances, endQ *uint256.Int, startTime, endTime, now uint64) (*uint256.Int, error) {
	if endQ == nil || !endQ.Gt(fixedpoint.ONE) || endQ.Gt(p.cfg.MaxFourthRootPriceRatio) {
		return nil, fmt.Errorf("%w: %v", reclamm.ErrInvalidFourthRootPriceRatio, endQ)
	}
	if startTime > endTime || startTime < now {
		return nil, fmt.Errorf("%w: start=%d end=%d now=%d", reclamm.ErrInvalidStartTime, startTime, endTime, now)
	}
	if endTime > p.cfg.MaxTimestamp {
		return nil, fmt.Errorf("%w: %d", reclamm.ErrTimestampOutOfRange, endTime)
	}

	state, err := p.begin("set price ratio target", balances, now)
	if err != nil {
		return nil, err
	}
	startQ, err := reclamm.ComputeFourthRootPriceRatio(now, state.PriceRatioState)
	if err != nil {
		return nil, err
	}

	duration := endTime - startTime
	if duration < p.cfg.MinPriceRatioUpdateDuration {
		return nil, fmt.Errorf("%w: %ds", reclamm.ErrPriceRatioUpdateDurationTooShort, duration)
	}

	var c fixedpoint.Calc
	ratio := c.DivUp(fixedpoint.Max(startQ, endQ), fixedpoint.Min(startQ, endQ))
	square := c.MulUp(ratio, ratio)
	priceRatioChange := c.MulUp(square, square)
	dailyRate := c.PowUp(priceRatioChange, c.DivDown(uint256.NewInt(secondsPerDay), uint256.NewInt(duration)))
	if err := c.Err(); err != nil {
		return nil, err
	}
	if dailyRate.Gt(p.cfg.MaxDailyPriceRatioUpdateRate) {
		return nil, fmt.Errorf("%w: daily rate %s", reclamm.ErrPriceRatioUpdateTooFast, dailyRate)
	}

	state.PriceRatioState = model.PriceRatioState{
		StartFourthRootPriceRatio: startQ,
		EndFourthRootPriceRatio:   endQ.Clone(),
		StartTime:                 startTime,
		EndTime:                   endTime,
	}
	p.commit(state)
	p.logger.Info("price ratio update scheduled",
		zap.Stringer("start_fourth_root_price_ratio", startQ),
		zap.Stringer("end_fourth_root_price_ratio", endQ),
		zap.Uint64("start_time", startTime),
		zap.Uint64("end_time", endTime),
	)
	return startQ.Clone(), nil
}

// SetCenterednessMargin replaces the centeredness margin. The pool must be
// within its target range under both the old and the new margin.
func (p *Pool) SetCenterednessMargin(balances model.Balances, margin *uint256.Int, now uint64) error {
	if err := p.setCenterednessMargin(balances, margin, now); err != nil {
		return fmt.Errorf("set centeredness margin: %w", err)
	}
	return nil
}

func (p *Pool) setCenterednessMargin(balances model.Balances, margin *uint256.Int, now uint64) error {
	if margin == nil || margin.Gt(p.cfg.MaxCenterednessMargin) {
		return fmt.Errorf("%w: %v", reclamm.ErrInvalidCenterednessMargin, margin)
	}

	state, err := p.begin("set centeredness margin", balances, now)
	if err != nil {
		return err
	}
	for _, m := range []*uint256.Int{state.CenterednessMargin, margin} {
		within, err := reclamm.IsPoolWithinTargetRange(balances, state.LastVirtualBalances, m)
		if err != nil {
			return err
		}
		if !within {
			return fmt.Errorf("%w: margin %s", reclamm.ErrPoolOutsideTargetRange, m)
		}
	}

	state.CenterednessMargin = margin.Clone()
	p.commit(state)
	p.logger.Info("centeredness margin updated", zap.Stringer("margin", margin))
	return nil
}

// SetDailyPriceShiftExponent replaces the decay rate used while the pool is
// out of range. It returns the exponent as stored after conversion to a
// per-second base.
func (p *Pool) SetDailyPriceShiftExponent(balances model.Balances, exponent *uint256.Int, now uint64) (*uint256.Int, error) {
	stored, err := p.setDailyPriceShiftExponent(balances, exponent, now)
	if err != nil {
		return nil, fmt.Errorf("set daily price shift exponent: %w", err)
	}
	return stored, nil
}

func (p *Pool) setDailyPriceShiftExponent(balances model.Balances, exponent *uint256.Int, now uint64) (*uint256.Int, error) {
	if exponent == nil || exponent.Gt(p.cfg.MaxDailyPriceShiftExponent) {
		return nil, fmt.Errorf("%w: %v", reclamm.ErrDailyPriceShiftExponentTooHigh, exponent)
	}

	state, err := p.begin("set daily price shift exponent", balances, now)
	if err != nil {
		return nil, err
	}
	state.DailyPriceShiftBase = reclamm.ToDailyPriceShiftBase(exponent)
	p.commit(state)

	stored := reclamm.ToDailyPriceShiftExponent(state.DailyPriceShiftBase)
	p.logger.Info("daily price shift exponent updated", zap.Stringer("exponent", stored))
	return stored, nil
}
