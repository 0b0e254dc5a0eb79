package sandbox

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/city-lottery/internal/ordinance"
)

func TestNewCity_Defaults(t *testing.T) {
	c := NewCity("Springfield", Population{Low: 10, Med: 20, High: 30})

	year, month := c.Date()
	assert.Equal(t, "Springfield", c.Name())
	assert.Equal(t, uint32(2000), year)
	assert.Equal(t, uint32(1), month)
	assert.Equal(t, int32(60), c.Population())
	assert.Equal(t, int64(0), c.Funds())
	assert.Empty(t, c.Ordinances())
}

func TestNewCity_InvalidMonthResets(t *testing.T) {
	c := NewCity("x", Population{}, WithDate(1999, 13))

	year, month := c.Date()
	assert.Equal(t, uint32(1999), year)
	assert.Equal(t, uint32(1), month)
}

func TestPopulation_TotalClamps(t *testing.T) {
	p := Population{Low: math.MaxInt32, Med: math.MaxInt32, High: 1}
	assert.Equal(t, int32(math.MaxInt32), p.Total())

	p = Population{Low: math.MinInt32, Med: -1}
	assert.Equal(t, int32(math.MinInt32), p.Total())
}

func TestCity_Facilities(t *testing.T) {
	tests := []struct {
		name            string
		opts            []Option
		wantResidential bool
		wantSimulator   bool
		wantDemand      bool
		wantOrdinances  bool
	}{
		{"full", nil, true, true, true, true},
		{"no residential", []Option{WithoutResidentialSimulator()}, false, true, true, true},
		{"no simulator", []Option{WithoutSimulator()}, true, false, true, true},
		{"no demand", []Option{WithoutDemand()}, true, true, false, true},
		{"no ordinance simulator", []Option{WithoutOrdinanceSimulator()}, true, true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCity("x", Population{}, tt.opts...)

			_, ok := c.ResidentialSimulator()
			assert.Equal(t, tt.wantResidential, ok)
			_, ok = c.Simulator()
			assert.Equal(t, tt.wantSimulator, ok)
			_, ok = c.DemandSimulator()
			assert.Equal(t, tt.wantDemand, ok)
			_, ok = c.OrdinanceSimulator()
			assert.Equal(t, tt.wantOrdinances, ok)
		})
	}
}

func TestCity_Supply(t *testing.T) {
	c := NewCity("x", Population{Low: 100, Med: 200, High: 300})

	tests := []struct {
		group  uint32
		index  uint32
		want   float32
		wantOK bool
	}{
		{ordinance.DemandGroupResidentialLowWealth, 0, 100, true},
		{ordinance.DemandGroupResidentialMedWealth, 0, 200, true},
		{ordinance.DemandGroupResidentialHighWealth, 0, 300, true},
		{ordinance.DemandGroupResidentialLowWealth, 1, 0, false},
		{0x3110, 0, 0, false},
	}

	for _, tt := range tests {
		got, ok := c.Supply(tt.group, tt.index)
		assert.Equal(t, tt.want, got, "group 0x%x", tt.group)
		assert.Equal(t, tt.wantOK, ok, "group 0x%x", tt.group)
	}
}

func TestCity_Registry(t *testing.T) {
	c := NewCity("x", Population{})
	lottery := ordinance.NewLottery(nil)
	generic := ordinance.NewGeneric(ordinance.Definition{ID: 0x1}, 0, nil)

	require.NoError(t, c.AddOrdinance(lottery))
	require.NoError(t, c.AddOrdinance(generic))

	err := c.AddOrdinance(ordinance.NewLottery(nil))
	assert.ErrorIs(t, err, ErrDuplicateOrdinance)

	found, ok := c.OrdinanceByID(ordinance.LotteryID)
	require.True(t, ok)
	assert.Same(t, lottery, found)
	assert.Len(t, c.Ordinances(), 2)

	require.NoError(t, c.RemoveOrdinance(lottery))
	_, ok = c.OrdinanceByID(ordinance.LotteryID)
	assert.False(t, ok)
	assert.ErrorIs(t, c.RemoveOrdinance(lottery), ErrOrdinanceNotFound)
	assert.Len(t, c.Ordinances(), 1)
}

func TestCity_LocalizedString(t *testing.T) {
	key := ordinance.StringKey{Group: 1, Instance: 2}
	source := map[ordinance.StringKey]string{key: "Lotería"}
	c := NewCity("x", Population{}, WithLocalizedStrings(source))
	source[key] = "changed"

	s, ok := c.LocalizedString(key)
	assert.True(t, ok)
	assert.Equal(t, "Lotería", s)

	_, ok = NewCity("y", Population{}).LocalizedString(key)
	assert.False(t, ok)
}

func TestCity_AdvanceMonth(t *testing.T) {
	c := NewCity("x", Population{Low: 10000, Med: 5000}, WithDate(2000, 12), WithFunds(100))
	lottery := ordinance.NewLottery(nil)
	require.NoError(t, lottery.PostCityInit(c))
	require.NoError(t, c.AddOrdinance(lottery))

	// Not enacted: simulated but not charged
	report, err := c.AdvanceMonth()
	require.NoError(t, err)

	assert.Equal(t, uint32(2001), report.Year)
	assert.Equal(t, uint32(1), report.Month)
	require.Len(t, report.Incomes, 1)
	assert.Equal(t, int64(1150), report.Incomes[0].Income)
	assert.False(t, report.Incomes[0].Charged)
	assert.Equal(t, int64(100), report.Funds)

	lottery.SetAvailable(true)
	lottery.SetOn(true)

	report, err = c.AdvanceMonth()
	require.NoError(t, err)

	assert.Equal(t, uint32(2), report.Month)
	assert.True(t, report.Incomes[0].On)
	assert.True(t, report.Incomes[0].Charged)
	assert.Equal(t, int64(100), report.Previous)
	assert.Equal(t, int64(1250), report.Funds)
	assert.Equal(t, int64(1250), c.Funds())
}

func TestCity_AdvanceMonth_PopulationChange(t *testing.T) {
	c := NewCity("x", Population{Low: 10000})
	lottery := ordinance.NewLottery(nil)
	require.NoError(t, lottery.PostCityInit(c))
	require.NoError(t, c.AddOrdinance(lottery))

	c.SetPopulation(Population{Low: 20000})
	report, err := c.AdvanceMonth()

	require.NoError(t, err)
	assert.Equal(t, int64(1500), report.Incomes[0].Income)
	assert.Equal(t, Population{Low: 20000}, c.Tiers())
}

func TestAddSaturating(t *testing.T) {
	assert.Equal(t, int64(3), addSaturating(1, 2))
	assert.Equal(t, int64(math.MaxInt64), addSaturating(math.MaxInt64, 1))
	assert.Equal(t, int64(math.MinInt64), addSaturating(math.MinInt64, -1))
	assert.Equal(t, int64(-1), addSaturating(math.MaxInt64, math.MinInt64))
}
