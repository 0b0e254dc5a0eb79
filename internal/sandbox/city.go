// Package sandbox provides an in-memory host city for driving ordinances
// outside the game: tier populations, a month clock and an ordinance
// registry. It implements only what ordinances query.
//
// A City is not safe for concurrent use.
package sandbox

import (
	"errors"
	"fmt"
	"math"

	"github.com/stwalsh4118/city-lottery/internal/director"
	"github.com/stwalsh4118/city-lottery/internal/ordinance"
)

// Registry errors
var (
	ErrDuplicateOrdinance = errors.New("ordinance already registered")
	ErrOrdinanceNotFound  = errors.New("ordinance not registered")
)

// Population holds the residential population of each wealth tier.
type Population struct {
	Low  int32 `json:"low"`
	Med  int32 `json:"med"`
	High int32 `json:"high"`
}

// Total returns the combined population, clamped to the int32 range.
func (p Population) Total() int32 {
	total := int64(p.Low) + int64(p.Med) + int64(p.High)
	switch {
	case total > math.MaxInt32:
		return math.MaxInt32
	case total < math.MinInt32:
		return math.MinInt32
	default:
		return int32(total)
	}
}

// Option configures a City.
type Option func(*City)

// WithDate sets the starting date. Month is 1-based.
func WithDate(year, month uint32) Option {
	return func(c *City) {
		c.year = year
		c.month = month
	}
}

// WithFunds sets the starting funds.
func WithFunds(funds int64) Option {
	return func(c *City) { c.funds = funds }
}

// WithoutResidentialSimulator builds a city lacking a residential simulator.
func WithoutResidentialSimulator() Option {
	return func(c *City) { c.noResidential = true }
}

// WithoutSimulator builds a city lacking a simulator.
func WithoutSimulator() Option {
	return func(c *City) { c.noSimulator = true }
}

// WithoutDemand builds a city lacking a demand simulator.
func WithoutDemand() Option {
	return func(c *City) { c.noDemand = true }
}

// WithoutOrdinanceSimulator builds a city lacking an ordinance registry.
func WithoutOrdinanceSimulator() Option {
	return func(c *City) { c.noOrdinances = true }
}

// WithLocalizedStrings registers localized string resources.
func WithLocalizedStrings(strings map[ordinance.StringKey]string) Option {
	return func(c *City) {
		c.strings = make(map[ordinance.StringKey]string, len(strings))
		for k, v := range strings {
			c.strings[k] = v
		}
	}
}

var _ director.CityContext = (*City)(nil)

// City is an in-memory city.
type City struct {
	name       string
	year       uint32
	month      uint32
	population Population
	funds      int64

	noResidential bool
	noSimulator   bool
	noDemand      bool
	noOrdinances  bool

	strings    map[ordinance.StringKey]string
	ordinances []ordinance.Ordinance
}

// NewCity creates a city starting in January 2000 unless WithDate is given.
func NewCity(name string, population Population, opts ...Option) *City {
	c := &City{
		name:       name,
		year:       2000,
		month:      1,
		population: population,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.month < 1 || c.month > 12 {
		c.month = 1
	}
	return c
}

// Name returns the city name.
func (c *City) Name() string { return c.name }

// Date returns the current year and month.
func (c *City) Date() (year, month uint32) { return c.year, c.month }

// Funds returns the income collected from enacted ordinances.
func (c *City) Funds() int64 { return c.funds }

// Tiers returns the per tier residential population.
func (c *City) Tiers() Population { return c.population }

// SetPopulation replaces the per tier residential population.
func (c *City) SetPopulation(p Population) { c.population = p }

// ResidentialSimulator implements ordinance.City.
func (c *City) ResidentialSimulator() (ordinance.ResidentialSimulator, bool) {
	if c.noResidential {
		return nil, false
	}
	return c, true
}

// Simulator implements ordinance.City.
func (c *City) Simulator() (ordinance.Simulator, bool) {
	if c.noSimulator {
		return nil, false
	}
	return c, true
}

// DemandSimulator implements ordinance.City.
func (c *City) DemandSimulator() (ordinance.DemandSimulator, bool) {
	if c.noDemand {
		return nil, false
	}
	return c, true
}

// OrdinanceSimulator implements director.CityContext.
func (c *City) OrdinanceSimulator() (director.Registry, bool) {
	if c.noOrdinances {
		return nil, false
	}
	return c, true
}

// Population implements ordinance.ResidentialSimulator.
func (c *City) Population() int32 {
	return c.population.Total()
}

// Year implements ordinance.Simulator.
func (c *City) Year() uint32 {
	return c.year
}

// Supply implements ordinance.DemandSimulator. Only the city-wide census
// index and the three residential tiers are known.
func (c *City) Supply(group uint32, censusIndex uint32) (float32, bool) {
	if censusIndex != 0 {
		return 0, false
	}
	switch group {
	case ordinance.DemandGroupResidentialLowWealth:
		return float32(c.population.Low), true
	case ordinance.DemandGroupResidentialMedWealth:
		return float32(c.population.Med), true
	case ordinance.DemandGroupResidentialHighWealth:
		return float32(c.population.High), true
	default:
		return 0, false
	}
}

// LocalizedString implements ordinance.Localizer.
func (c *City) LocalizedString(key ordinance.StringKey) (string, bool) {
	s, ok := c.strings[key]
	return s, ok
}

// OrdinanceByID returns the registered ordinance with the given class id.
func (c *City) OrdinanceByID(id uint32) (ordinance.Ordinance, bool) {
	for _, o := range c.ordinances {
		if o.ID() == id {
			return o, true
		}
	}
	return nil, false
}

// AddOrdinance registers an ordinance. Only one ordinance per class id may
// be registered.
func (c *City) AddOrdinance(o ordinance.Ordinance) error {
	if _, ok := c.OrdinanceByID(o.ID()); ok {
		return fmt.Errorf("%w: 0x%08x", ErrDuplicateOrdinance, o.ID())
	}
	c.ordinances = append(c.ordinances, o)
	return nil
}

// RemoveOrdinance unregisters an ordinance.
func (c *City) RemoveOrdinance(o ordinance.Ordinance) error {
	for i, registered := range c.ordinances {
		if registered.ID() == o.ID() {
			c.ordinances = append(c.ordinances[:i:i], c.ordinances[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: 0x%08x", ErrOrdinanceNotFound, o.ID())
}

// Ordinances returns the registered ordinances in registration order.
func (c *City) Ordinances() []ordinance.Ordinance {
	out := make([]ordinance.Ordinance, len(c.ordinances))
	copy(out, c.ordinances)
	return out
}

// Income is one ordinance's result for a simulated month.
type Income struct {
	ID      uint32 `json:"id"`
	Name    string `json:"name"`
	On      bool   `json:"on"`
	Income  int64  `json:"income"`
	Charged bool   `json:"charged"`
}

// MonthReport summarises a simulated month.
type MonthReport struct {
	Year     uint32   `json:"year"`
	Month    uint32   `json:"month"`
	Incomes  []Income `json:"incomes"`
	Funds    int64    `json:"funds"`
	Previous int64    `json:"previous_funds"`
}

// AdvanceMonth moves the clock forward one month and runs the monthly
// simulation of every registered ordinance. Income from ordinances that are
// on is added to the city funds.
func (c *City) AdvanceMonth() (MonthReport, error) {
	c.month++
	if c.month > 12 {
		c.month = 1
		c.year++
	}

	report := MonthReport{
		Year:     c.year,
		Month:    c.month,
		Incomes:  make([]Income, 0, len(c.ordinances)),
		Previous: c.funds,
	}

	for _, o := range c.ordinances {
		if err := o.Simulate(); err != nil {
			return report, fmt.Errorf("simulate ordinance 0x%08x: %w", o.ID(), err)
		}

		income := Income{
			ID:     o.ID(),
			Name:   o.Name(),
			On:     o.IsOn(),
			Income: o.MonthlyAdjustedIncome(),
		}
		if income.On && o.IsIncomeOrdinance() {
			c.funds = addSaturating(c.funds, income.Income)
			income.Charged = true
		}
		report.Incomes = append(report.Incomes, income)
	}

	report.Funds = c.funds
	return report, nil
}

func addSaturating(a, b int64) int64 {
	sum := a + b
	if a > 0 && b > 0 && sum < 0 {
		return math.MaxInt64
	}
	if a < 0 && b < 0 && sum >= 0 {
		return math.MinInt64
	}
	return sum
}
