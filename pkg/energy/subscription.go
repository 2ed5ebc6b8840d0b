package energy

import "github.com/iwvelando/heatpump-forecast/pkg/constants"

// Tier is a regulated electricity subscription level.
type Tier struct {
	KVA         float64
	AnnualPrice float64
}

// Tiers lists the subscription levels in increasing power.
var Tiers = []Tier{
	{KVA: 6, AnnualPrice: 158.88},
	{KVA: 9, AnnualPrice: 199.08},
	{KVA: 12, AnnualPrice: 239.76},
	{KVA: 15, AnnualPrice: 277.92},
	{KVA: 18, AnnualPrice: 314.88},
	{KVA: 24, AnnualPrice: 395.16},
	{KVA: 30, AnnualPrice: 470.28},
	{KVA: 36, AnnualPrice: 545.40},
}

// TierFor returns the smallest tier covering kva, or the largest tier.
func TierFor(kva float64) Tier {
	for _, tier := range Tiers {
		if kva <= tier.KVA {
			return tier
		}
	}
	return Tiers[len(Tiers)-1]
}

// RequiredKVA adds the pump's electrical draw to the current meter power.
func RequiredKVA(meterKVA, pumpPowerKW, nominalCOP float64) float64 {
	if meterKVA <= 0 {
		meterKVA = constants.DefaultMeterKVA
	}
	if pumpPowerKW <= 0 {
		return meterKVA
	}
	if nominalCOP <= 0 {
		return meterKVA + pumpPowerKW
	}
	return meterKVA + pumpPowerKW/nominalCOP
}

// SubscriptionDelta returns the extra annual subscription cost of moving to
// the tier the heat pump requires.
func SubscriptionDelta(meterKVA, pumpPowerKW, nominalCOP float64) float64 {
	if meterKVA <= 0 {
		meterKVA = constants.DefaultMeterKVA
	}
	current := TierFor(meterKVA)
	required := TierFor(RequiredKVA(meterKVA, pumpPowerKW, nominalCOP))
	return required.AnnualPrice - current.AnnualPrice
}
