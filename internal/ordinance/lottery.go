package ordinance

import (
	"fmt"

	"github.com/stwalsh4118/city-lottery/internal/gzio"
	"github.com/stwalsh4118/city-lottery/internal/logger"
	"github.com/stwalsh4118/city-lottery/internal/property"
)

// LotteryID is the class id of the city lottery ordinance.
const LotteryID uint32 = 0xE95F7779

// Residential demand groups queried for tier populations.
const (
	DemandGroupResidentialLowWealth  uint32 = 0x1011
	DemandGroupResidentialMedWealth  uint32 = 0x1021
	DemandGroupResidentialHighWealth uint32 = 0x1031

	cityCensusIndex uint32 = 0
)

// Lottery defaults
const (
	DefaultLotteryConstantIncome int64   = 500
	DefaultLowWealthFactor       float32 = 0.05
	DefaultMedWealthFactor       float32 = 0.03
	DefaultHighWealthFactor      float32 = 0.01
)

// LotteryDefinition returns the construction parameters of the lottery.
func LotteryDefinition() Definition {
	return Definition{
		ID:      LotteryID,
		Name:    "City-wide Lottery Program",
		NameKey: StringKey{Group: 0xE8D16EC8, Instance: 0xE34CDA8D},
		Description: "A city-wide lottery program. Provides a slight boost to EQ and Cs§ demand at the cost of increased crime. " +
			"The monthly income factor is based on the city's residential population.",
		DescriptionKey:        StringKey{Group: 0xE8D16EC8, Instance: 0x39385372},
		EnactmentIncome:       0,
		RetracmentIncome:      0,
		MonthlyConstantIncome: DefaultLotteryConstantIncome,
		MonthlyIncomeFactor:   0, // unused, income comes from the tier factors
		IncomeOrdinance:       true,
		Effects:               DefaultEffects(),
	}
}

// DefaultEffects returns the lottery's default side effects.
func DefaultEffects() property.Bag {
	var effects property.Bag

	// School EQ +2%
	effects.AddFloat32(property.SchoolEQBoostEffect, 102.0)
	// Cs$ demand +1%
	effects.AddFloat32(property.DemandEffectCs1, 1.01)
	// Crime +10%
	effects.AddFloat32(property.CrimeEffect, 1.10)

	return effects
}

// ParameterSource supplies the tunable lottery parameters.
type ParameterSource interface {
	MonthlyConstantIncome() int64
	ResidentialLowWealthFactor() float32
	ResidentialMedWealthFactor() float32
	ResidentialHighWealthFactor() float32
	OrdinanceEffects() property.Bag
}

// Lottery is an ordinance whose income is a constant plus a share of each
// residential wealth tier's population.
type Lottery struct {
	State

	// nil while unbound
	demand DemandSimulator

	lowWealthFactor  float32
	medWealthFactor  float32
	highWealthFactor float32
}

// NewLottery creates the lottery ordinance with its default parameters.
func NewLottery(log Logger) *Lottery {
	return &Lottery{
		State:            newState(LotteryDefinition(), log),
		lowWealthFactor:  DefaultLowWealthFactor,
		medWealthFactor:  DefaultMedWealthFactor,
		highWealthFactor: DefaultHighWealthFactor,
	}
}

// TierFactors returns the low, medium and high wealth income factors.
func (l *Lottery) TierFactors() (low, med, high float32) {
	return l.lowWealthFactor, l.medWealthFactor, l.highWealthFactor
}

// SetTierFactors replaces the wealth tier income factors.
func (l *Lottery) SetTierFactors(low, med, high float32) {
	l.lowWealthFactor = low
	l.medWealthFactor = med
	l.highWealthFactor = high
}

// RefreshParameters copies the constant income, tier factors and effects
// from src.
func (l *Lottery) RefreshParameters(src ParameterSource) {
	l.monthlyConstantIncome = src.MonthlyConstantIncome()
	l.lowWealthFactor = src.ResidentialLowWealthFactor()
	l.medWealthFactor = src.ResidentialMedWealthFactor()
	l.highWealthFactor = src.ResidentialHighWealthFactor()
	l.effects = src.OrdinanceEffects().Clone()

	l.log.Trace(logger.LogOrdinanceAPI, "RefreshParameters", map[string]interface{}{
		"constant": l.monthlyConstantIncome,
		"low":      l.lowWealthFactor,
		"med":      l.medWealthFactor,
		"high":     l.highWealthFactor,
		"effects":  l.effects.Len(),
	})
}

// YearFirstAvailable returns 0, the lottery is always eligible.
func (l *Lottery) YearFirstAvailable() uint32 {
	return 0
}

// TierPopulation returns the supply value of a residential demand group,
// or 0 while unbound or when the host has no value for the group.
func (l *Lottery) TierPopulation(group uint32) float32 {
	if l.demand == nil {
		return 0
	}
	value, ok := l.demand.Supply(group, cityCensusIndex)
	if !ok {
		return 0
	}
	return value
}

// CurrentMonthlyIncome returns the constant income plus factor × population
// for every tier with a positive factor and a positive population.
func (l *Lottery) CurrentMonthlyIncome() int64 {
	income := float64(l.monthlyConstantIncome)

	tiers := []struct {
		factor float32
		group  uint32
	}{
		{l.lowWealthFactor, DemandGroupResidentialLowWealth},
		{l.medWealthFactor, DemandGroupResidentialMedWealth},
		{l.highWealthFactor, DemandGroupResidentialHighWealth},
	}
	for _, tier := range tiers {
		if tier.factor <= 0 {
			continue
		}
		population := float64(l.TierPopulation(tier.group))
		if population > 0 {
			income += population * float64(tier.factor)
		}
	}

	result := SaturatingInt64(income)

	l.log.Trace(logger.LogOrdinanceAPI, "CurrentMonthlyIncome", map[string]interface{}{
		"constant": l.monthlyConstantIncome,
		"low":      l.lowWealthFactor,
		"med":      l.medWealthFactor,
		"high":     l.highWealthFactor,
		"current":  result,
	})
	return result
}

// CheckConditions reports whether the ordinance can currently be offered.
func (l *Lottery) CheckConditions() bool {
	return l.checkConditions(l.YearFirstAvailable())
}

// Simulate runs the monthly income update.
func (l *Lottery) Simulate() error {
	l.simulate(l.CurrentMonthlyIncome())
	return nil
}

// PostCityInit binds the lottery to a city. The city must also provide a
// demand simulator; nothing is bound unless every facility is present.
func (l *Lottery) PostCityInit(city City) error {
	residential, simulator, err := bindFacilities(city)
	if err != nil {
		return err
	}
	demand, ok := city.DemandSimulator()
	if !ok || demand == nil {
		return fmt.Errorf("%w: demand simulator", ErrMissingFacility)
	}

	l.bind(city, residential, simulator)
	l.demand = demand
	return nil
}

// PreCityShutdown unbinds the lottery. It always succeeds.
func (l *Lottery) PreCityShutdown(City) error {
	l.unbind()
	l.demand = nil
	return nil
}

// Encode writes the lottery record, which carries the three tier factors in
// place of the single income factor.
func (l *Lottery) Encode(w gzio.Writer) error {
	return l.encodeRecord(w, func(w gzio.Writer) error {
		for _, f := range []float32{l.lowWealthFactor, l.medWealthFactor, l.highWealthFactor} {
			if err := w.WriteFloat32(f); err != nil {
				return err
			}
		}
		return nil
	})
}

// Decode reads a lottery record. l is unchanged on failure.
func (l *Lottery) Decode(r gzio.Reader) error {
	next := *l
	err := next.decodeRecord(r, func(r gzio.Reader) error {
		for _, f := range []*float32{&next.lowWealthFactor, &next.medWealthFactor, &next.highWealthFactor} {
			v, err := r.ReadFloat32()
			if err != nil {
				return err
			}
			*f = v
		}
		return nil
	})
	if err != nil {
		return err
	}

	*l = next
	return nil
}
