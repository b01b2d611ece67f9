package engine

import (
	"github.com/datmedevil17/magic-market/internal/amm"
	"github.com/datmedevil17/magic-market/internal/models"
)

// Prices returns the YES and NO spot prices of a pool at amm.PriceScale.
// The two round down independently, so they may sum to slightly under the
// scale. A nil or empty pool prices both sides at one half.
func Prices(p *models.Pool) (yes, no uint64) {
	if p == nil {
		return amm.PriceScale / 2, amm.PriceScale / 2
	}
	return amm.SpotPrice(p.NoReserve, p.YesReserve), amm.SpotPrice(p.YesReserve, p.NoReserve)
}

// PriceFor returns the spot price of one side.
func PriceFor(p *models.Pool, side string) (uint64, error) {
	side, err := NormalizeSide(side)
	if err != nil {
		return 0, err
	}
	yes, no := Prices(p)
	if side == models.SideYes {
		return yes, nil
	}
	return no, nil
}
