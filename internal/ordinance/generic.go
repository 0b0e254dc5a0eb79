package ordinance

import (
	"github.com/stwalsh4118/city-lottery/internal/gzio"
	"github.com/stwalsh4118/city-lottery/internal/logger"
)

// Generic is an ordinance whose income is a constant plus a factor of the
// city's residential population.
type Generic struct {
	State
	yearFirstAvailable uint32
}

// NewGeneric creates a generic ordinance available from the given year.
func NewGeneric(def Definition, yearFirstAvailable uint32, log Logger) *Generic {
	return &Generic{
		State:              newState(def, log),
		yearFirstAvailable: yearFirstAvailable,
	}
}

// YearFirstAvailable returns the first in-game year the ordinance may be enacted.
func (g *Generic) YearFirstAvailable() uint32 {
	return g.yearFirstAvailable
}

// CurrentMonthlyIncome returns constant + factor × population, or just the
// constant while unbound.
func (g *Generic) CurrentMonthlyIncome() int64 {
	if g.residential == nil {
		return g.monthlyConstantIncome
	}

	population := g.residential.Population()
	income := SaturatingInt64(float64(g.monthlyConstantIncome) + float64(g.monthlyIncomeFactor)*float64(population))

	g.log.Trace(logger.LogOrdinanceAPI, "CurrentMonthlyIncome", map[string]interface{}{
		"clsid":      g.clsid,
		"constant":   g.monthlyConstantIncome,
		"factor":     g.monthlyIncomeFactor,
		"population": population,
		"current":    income,
	})
	return income
}

// CheckConditions reports whether the ordinance can currently be offered.
func (g *Generic) CheckConditions() bool {
	return g.checkConditions(g.yearFirstAvailable)
}

// Simulate runs the monthly income update.
func (g *Generic) Simulate() error {
	g.simulate(g.CurrentMonthlyIncome())
	return nil
}

// PostCityInit binds the ordinance to a city.
func (g *Generic) PostCityInit(city City) error {
	residential, simulator, err := bindFacilities(city)
	if err != nil {
		return err
	}
	g.bind(city, residential, simulator)
	return nil
}

// PreCityShutdown unbinds the ordinance. It always succeeds.
func (g *Generic) PreCityShutdown(City) error {
	g.unbind()
	return nil
}

// Encode writes the generic ordinance record.
func (g *Generic) Encode(w gzio.Writer) error {
	return g.encodeRecord(w, func(w gzio.Writer) error {
		return w.WriteFloat32(g.monthlyIncomeFactor)
	})
}

// Decode reads a generic ordinance record. g is unchanged on failure.
func (g *Generic) Decode(r gzio.Reader) error {
	next := *g
	err := next.decodeRecord(r, func(r gzio.Reader) error {
		factor, err := r.ReadFloat32()
		if err != nil {
			return err
		}
		next.monthlyIncomeFactor = factor
		return nil
	})
	if err != nil {
		return err
	}

	*g = next
	return nil
}
