package location

import "github.com/ktecheletronicos/loja/internal/domain"

// FeeConfig drives the distance-based delivery fee.
type FeeConfig struct {
	// BaseFee is charged for any delivery within the included radius.
	BaseFee float64

	// PerKm is charged for each kilometer beyond the included radius.
	PerKm float64

	// IncludedRadiusKm is the distance covered by the base fee alone.
	IncludedRadiusKm float64

	// MaxRadiusKm, when positive, is the farthest distance served.
	MaxRadiusKm float64
}

// FeeForDistance computes the delivery fee for a distance in kilometers.
// The second return value reports whether the address is within the
// service area at all.
func FeeForDistance(cfg FeeConfig, distanceKm float64) (float64, bool) {
	if cfg.MaxRadiusKm > 0 && distanceKm > cfg.MaxRadiusKm {
		return 0, false
	}

	fee := cfg.BaseFee
	if extra := distanceKm - cfg.IncludedRadiusKm; extra > 0 {
		fee += extra * cfg.PerKm
	}
	return domain.Round2(fee), true
}
