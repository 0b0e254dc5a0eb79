package ordinance

import (
	"github.com/stretchr/testify/mock"
)

// MockResidentialSimulator is a mock implementation of ResidentialSimulator for testing
type MockResidentialSimulator struct {
	mock.Mock
}

func (m *MockResidentialSimulator) Population() int32 {
	args := m.Called()
	return args.Get(0).(int32)
}

// MockSimulator is a mock implementation of Simulator for testing
type MockSimulator struct {
	mock.Mock
}

func (m *MockSimulator) Year() uint32 {
	args := m.Called()
	return args.Get(0).(uint32)
}

// MockDemandSimulator is a mock implementation of DemandSimulator for testing
type MockDemandSimulator struct {
	mock.Mock
}

func (m *MockDemandSimulator) Supply(group uint32, censusIndex uint32) (float32, bool) {
	args := m.Called(group, censusIndex)
	return args.Get(0).(float32), args.Bool(1)
}

// testCity hands out whichever facilities are set.
type testCity struct {
	residential ResidentialSimulator
	simulator   Simulator
	demand      DemandSimulator
}

func (c *testCity) ResidentialSimulator() (ResidentialSimulator, bool) {
	return c.residential, c.residential != nil
}

func (c *testCity) Simulator() (Simulator, bool) {
	return c.simulator, c.simulator != nil
}

func (c *testCity) DemandSimulator() (DemandSimulator, bool) {
	return c.demand, c.demand != nil
}

// localizedCity is a testCity that also resolves localized strings.
type localizedCity struct {
	testCity
	strings map[StringKey]string
}

func (c *localizedCity) LocalizedString(key StringKey) (string, bool) {
	s, ok := c.strings[key]
	return s, ok
}

// newTestCity builds a city providing every facility with the given tier
// populations and year.
func newTestCity(low, med, high float32, year uint32) (*testCity, *MockDemandSimulator) {
	residential := new(MockResidentialSimulator)
	residential.On("Population").Return(int32(low + med + high)).Maybe()

	simulator := new(MockSimulator)
	simulator.On("Year").Return(year).Maybe()

	demand := new(MockDemandSimulator)
	demand.On("Supply", DemandGroupResidentialLowWealth, uint32(0)).Return(low, true).Maybe()
	demand.On("Supply", DemandGroupResidentialMedWealth, uint32(0)).Return(med, true).Maybe()
	demand.On("Supply", DemandGroupResidentialHighWealth, uint32(0)).Return(high, true).Maybe()

	return &testCity{residential: residential, simulator: simulator, demand: demand}, demand
}
