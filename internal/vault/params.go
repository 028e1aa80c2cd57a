package vault

import (
	"github.com/holiman/uint256"
)

// SetPriceRatioTarget schedules a price ratio change on the pool.
func (v *Vault) SetPriceRatioTarget(endFourthRootPriceRatio *uint256.Int, startTime, endTime, now uint64) (*uint256.Int, error) {
	scaled, err := v.ScaledBalances()
	if err != nil {
		return nil, err
	}
	var start *uint256.Int
	err = v.atomically(func() error {
		start, err = v.pool.SetPriceRatioTarget(scaled, endFourthRootPriceRatio, startTime, endTime, now)
		return err
	})
	return start, err
}

func (v *Vault) SetCenterednessMargin(margin *uint256.Int, now uint64) error {
	scaled, err := v.ScaledBalances()
	if err != nil {
		return err
	}
	return v.atomically(func() error {
		return v.pool.SetCenterednessMargin(scaled, margin, now)
	})
}

func (v *Vault) SetDailyPriceShiftExponent(exponent *uint256.Int, now uint64) (*uint256.Int, error) {
	scaled, err := v.ScaledBalances()
	if err != nil {
		return nil, err
	}
	var stored *uint256.Int
	err = v.atomically(func() error {
		stored, err = v.pool.SetDailyPriceShiftExponent(scaled, exponent, now)
		return err
	})
	return stored, err
}
