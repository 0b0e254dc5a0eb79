// Package ordinance implements city ordinances: their activation lifecycle,
// monthly income and the binary record they are saved as.
//
// Two kinds exist. Generic earns a constant plus a factor of the total
// residential population. Lottery earns a constant plus per wealth tier
// contributions and uses its own record layout.
package ordinance

import (
	"github.com/stwalsh4118/city-lottery/internal/gzio"
	"github.com/stwalsh4118/city-lottery/internal/property"
)

// Ordinance is the contract the host drives.
type Ordinance interface {
	ID() uint32
	Name() string
	Description() string
	YearFirstAvailable() uint32
	ChanceAvailability() float32
	AdvisorID() uint32

	EnactmentIncome() int64
	RetracmentIncome() int64
	MonthlyConstantIncome() int64
	MonthlyIncomeFactor() float32
	MonthlyAdjustedIncome() int64
	CurrentMonthlyIncome() int64
	IsIncomeOrdinance() bool

	Effects() property.Bag
	Property(id uint32) (property.Record, bool)

	IsInitialized() bool
	IsAvailable() bool
	IsOn() bool
	IsEnabled() bool
	IsBound() bool
	HaveDeserialized() bool
	CheckConditions() bool

	SetAvailable(available bool)
	SetOn(on bool)
	SetEnabled(enabled bool)
	ForceAvailable(available bool)
	ForceOn(on bool)
	ForceEnabled(enabled bool)
	ForceMonthlyAdjustedIncome(income int64)

	// Simulate stores the current monthly income as the adjusted income.
	Simulate() error
	PostCityInit(city City) error
	PreCityShutdown(city City) error

	Encode(w gzio.Writer) error
	Decode(r gzio.Reader) error
}

var (
	_ Ordinance = (*Generic)(nil)
	_ Ordinance = (*Lottery)(nil)
)
