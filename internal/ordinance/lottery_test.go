package ordinance

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/city-lottery/internal/gzio"
	"github.com/stwalsh4118/city-lottery/internal/gzio/gziotest"
	"github.com/stwalsh4118/city-lottery/internal/logger"
	"github.com/stwalsh4118/city-lottery/internal/property"
)

type staticParameters struct {
	constant       int64
	low, med, high float32
	effects        property.Bag
}

func (p staticParameters) MonthlyConstantIncome() int64        { return p.constant }
func (p staticParameters) ResidentialLowWealthFactor() float32  { return p.low }
func (p staticParameters) ResidentialMedWealthFactor() float32  { return p.med }
func (p staticParameters) ResidentialHighWealthFactor() float32 { return p.high }
func (p staticParameters) OrdinanceEffects() property.Bag       { return p.effects }

// lotterySnapshot captures every persisted field of a lottery.
type lotterySnapshot struct {
	ID                    uint32
	Name                  string
	Description           string
	EnactmentIncome       int64
	RetracmentIncome      int64
	MonthlyConstantIncome int64
	MonthlyAdjustedIncome int64
	Low, Med, High        float32
	IncomeOrdinance       bool
	Effects               []property.Record
	Initialized           bool
	Available             bool
	On                    bool
	Enabled               bool
}

func snapshotLottery(l *Lottery) lotterySnapshot {
	low, med, high := l.TierFactors()
	return lotterySnapshot{
		ID:                    l.ID(),
		Name:                  l.Name(),
		Description:           l.Description(),
		EnactmentIncome:       l.EnactmentIncome(),
		RetracmentIncome:      l.RetracmentIncome(),
		MonthlyConstantIncome: l.MonthlyConstantIncome(),
		MonthlyAdjustedIncome: l.MonthlyAdjustedIncome(),
		Low:                   low,
		Med:                   med,
		High:                  high,
		IncomeOrdinance:       l.IsIncomeOrdinance(),
		Effects:               l.Effects().Records(),
		Initialized:           l.IsInitialized(),
		Available:             l.IsAvailable(),
		On:                    l.on,
		Enabled:               l.IsEnabled(),
	}
}

func encodeLottery(t *testing.T, l *Lottery) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, l.Encode(gzio.NewWriter(&buf)))
	return buf.Bytes()
}

func TestNewLottery_Defaults(t *testing.T) {
	l := NewLottery(nil)

	assert.Equal(t, uint32(0xE95F7779), l.ID())
	assert.Equal(t, "City-wide Lottery Program", l.Name())
	assert.Contains(t, l.Description(), "A city-wide lottery program.")
	assert.Equal(t, int64(0), l.EnactmentIncome())
	assert.Equal(t, int64(0), l.RetracmentIncome())
	assert.Equal(t, int64(500), l.MonthlyConstantIncome())
	assert.Equal(t, float32(0), l.MonthlyIncomeFactor())
	assert.True(t, l.IsIncomeOrdinance())
	assert.Equal(t, uint32(0), l.YearFirstAvailable())
	assert.Equal(t, float32(100), l.ChanceAvailability())
	assert.Equal(t, uint32(0), l.AdvisorID())
	assert.False(t, l.IsBound())
	assert.False(t, l.IsEnabled())

	low, med, high := l.TierFactors()
	assert.Equal(t, float32(0.05), low)
	assert.Equal(t, float32(0.03), med)
	assert.Equal(t, float32(0.01), high)
}

func TestDefaultEffects(t *testing.T) {
	records := DefaultEffects().Records()
	require.Len(t, records, 3)

	expected := []struct {
		id    uint32
		value float32
	}{
		{0xA92D9D7A, 102.0},
		{0x2A653110, 1.01},
		{0x28ED0380, 1.10},
	}
	for i, e := range expected {
		assert.Equal(t, e.id, records[i].ID())
		v, ok := records[i].Value().Float32()
		require.True(t, ok)
		assert.Equal(t, e.value, v)
	}
}

func TestDefaultEffects_ReturnsIndependentBags(t *testing.T) {
	a := DefaultEffects()
	a.Clear()

	assert.Equal(t, 3, DefaultEffects().Len())
}

func TestLottery_CurrentMonthlyIncome(t *testing.T) {
	tests := []struct {
		name           string
		constant       int64
		low, med, high float32
		pLow, pMed     float32
		pHigh          float32
		want           int64
	}{
		{
			name:     "tiered example",
			constant: 500,
			low:      0.05, med: 0.03, high: 0,
			pLow: 10000, pMed: 5000, pHigh: 9999,
			want: 1150,
		},
		{
			name:     "zero factor excludes large population",
			constant: 0,
			low:      0, med: 0, high: 0,
			pHigh: 1000000,
			want:  0,
		},
		{
			name:     "negative factor excludes tier",
			constant: 100,
			low:      -1, med: 0.5, high: 0,
			pLow: 1000, pMed: 10,
			want: 105,
		},
		{
			name:     "empty tiers contribute nothing",
			constant: 500,
			low:      0.05, med: 0.03, high: 0.01,
			want: 500,
		},
		{
			name:     "negative population is ignored",
			constant: 500,
			low:      0.05, med: 0, high: 0,
			pLow: -10000,
			want: 500,
		},
		{
			name:     "all tiers",
			constant: 500,
			low:      0.05, med: 0.03, high: 0.01,
			pLow: 20000, pMed: 10000, pHigh: 5000,
			want: 500 + 1000 + 300 + 50,
		},
		{
			name:     "saturates at max",
			constant: math.MaxInt64,
			low:      math.MaxFloat32, med: 0, high: 0,
			pLow: math.MaxFloat32,
			want: math.MaxInt64,
		},
		{
			name:     "negative constant",
			constant: -1000,
			low:      0.5, med: 0, high: 0,
			pLow: 1000,
			want: -500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city, _ := newTestCity(tt.pLow, tt.pMed, tt.pHigh, 2000)
			l := NewLottery(nil)
			l.RefreshParameters(staticParameters{
				constant: tt.constant,
				low:      tt.low,
				med:      tt.med,
				high:     tt.high,
			})
			require.NoError(t, l.PostCityInit(city))

			assert.Equal(t, tt.want, l.CurrentMonthlyIncome())
		})
	}
}

func TestLottery_CurrentMonthlyIncome_SkipsQueryForZeroFactor(t *testing.T) {
	city, demand := newTestCity(10000, 5000, 9999, 2000)
	l := NewLottery(nil)
	l.SetTierFactors(0.05, 0.03, 0)
	require.NoError(t, l.PostCityInit(city))

	assert.Equal(t, int64(1150), l.CurrentMonthlyIncome())
	demand.AssertNotCalled(t, "Supply", DemandGroupResidentialHighWealth, uint32(0))
}

func TestLottery_CurrentMonthlyIncome_MissingDemandValue(t *testing.T) {
	city, _ := newTestCity(0, 0, 0, 2000)
	demand := new(MockDemandSimulator)
	demand.On("Supply", DemandGroupResidentialLowWealth, uint32(0)).Return(float32(10000), true)
	demand.On("Supply", DemandGroupResidentialMedWealth, uint32(0)).Return(float32(5000), false)
	demand.On("Supply", DemandGroupResidentialHighWealth, uint32(0)).Return(float32(0), false)
	city.demand = demand

	l := NewLottery(nil)
	require.NoError(t, l.PostCityInit(city))

	assert.Equal(t, int64(1000), l.CurrentMonthlyIncome())
	demand.AssertExpectations(t)
}

func TestLottery_CurrentMonthlyIncome_Unbound(t *testing.T) {
	l := NewLottery(nil)

	assert.Equal(t, int64(500), l.CurrentMonthlyIncome())
	assert.Equal(t, float32(0), l.TierPopulation(DemandGroupResidentialLowWealth))
}

func TestLottery_Simulate(t *testing.T) {
	city, _ := newTestCity(10000, 5000, 0, 2000)
	l := NewLottery(nil)
	require.NoError(t, l.PostCityInit(city))

	require.NoError(t, l.Simulate())

	// 500 + 500 + 150
	assert.Equal(t, int64(1150), l.MonthlyAdjustedIncome())
}

func TestLottery_PostCityInit_MissingDemandSimulator(t *testing.T) {
	city, _ := newTestCity(1, 1, 1, 2000)
	city.demand = nil
	l := NewLottery(nil)

	err := l.PostCityInit(city)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingFacility)
	assert.False(t, l.IsBound())
	assert.False(t, l.IsEnabled())
	assert.Equal(t, int64(500), l.CurrentMonthlyIncome())
}

func TestLottery_PreCityShutdown(t *testing.T) {
	city, _ := newTestCity(10000, 0, 0, 2000)
	l := NewLottery(nil)
	require.NoError(t, l.PostCityInit(city))
	require.True(t, l.IsBound())

	require.NoError(t, l.PreCityShutdown(city))

	assert.False(t, l.IsBound())
	assert.False(t, l.IsEnabled())
	assert.Equal(t, float32(0), l.TierPopulation(DemandGroupResidentialLowWealth))
	assert.Equal(t, int64(500), l.CurrentMonthlyIncome())
}

func TestLottery_RefreshParameters(t *testing.T) {
	var effects property.Bag
	effects.AddFloat32(property.CrimeEffect, 1.5)

	l := NewLottery(nil)
	l.RefreshParameters(staticParameters{constant: 750, low: 0.1, med: 0.2, high: 0.3, effects: effects})

	// Changing the source afterwards must not leak into the ordinance
	effects.AddFloat32(property.DemandEffectCs1, 1.2)

	assert.Equal(t, int64(750), l.MonthlyConstantIncome())
	low, med, high := l.TierFactors()
	assert.Equal(t, float32(0.1), low)
	assert.Equal(t, float32(0.2), med)
	assert.Equal(t, float32(0.3), high)
	assert.Equal(t, 1, l.Effects().Len())
	assert.True(t, l.Effects().Has(property.CrimeEffect))
}

func TestLottery_EncodeLayout(t *testing.T) {
	l := NewLottery(nil)
	l.SetAvailable(true)
	l.SetOn(true)
	l.ForceMonthlyAdjustedIncome(-42)

	data := encodeLottery(t, l)

	name := l.Name()
	desc := l.Description()
	bagSize := 4 + 4 + 3*(4+2+4)
	expectedSize := 4 + 4 + (4 + len(name)) + (4 + len(desc)) + 5*8 + 3*4 + 1 + bagSize + 4
	require.Len(t, data, expectedSize)

	le := binary.LittleEndian
	assert.Equal(t, uint32(1), le.Uint32(data[0:]))
	assert.Equal(t, LotteryID, le.Uint32(data[4:]))
	assert.Equal(t, uint32(len(name)), le.Uint32(data[8:]))
	assert.Equal(t, name, string(data[12:12+len(name)]))

	off := 12 + len(name)
	assert.Equal(t, uint32(len(desc)), le.Uint32(data[off:]))
	off += 4 + len(desc)

	incomes := make([]int64, 5)
	for i := range incomes {
		incomes[i] = int64(le.Uint64(data[off:]))
		off += 8
	}
	// enactment, retracment twice, constant, adjusted
	assert.Equal(t, []int64{0, 0, 0, 500, -42}, incomes)

	factors := make([]float32, 3)
	for i := range factors {
		factors[i] = math.Float32frombits(le.Uint32(data[off:]))
		off += 4
	}
	assert.Equal(t, []float32{0.05, 0.03, 0.01}, factors)

	assert.Equal(t, byte(1), data[off], "income ordinance")
	off++

	assert.Equal(t, property.BagVersion, le.Uint32(data[off:]))
	assert.Equal(t, uint32(3), le.Uint32(data[off+4:]))
	off += bagSize

	// initialized, available, on, enabled
	assert.Equal(t, []byte{0, 1, 1, 0}, data[off:])
}

func TestLottery_RoundTrip(t *testing.T) {
	city, _ := newTestCity(10000, 5000, 2000, 2000)

	src := NewLottery(nil)
	var effects property.Bag
	effects.AddFloat32(property.CrimeEffect, 1.25)
	effects.AddInt32(property.MayorRating, -3)
	effects.AddUint32(property.TravelStrategyModifier, 7)
	src.RefreshParameters(staticParameters{constant: 900, low: 0.07, med: 0, high: 0.02, effects: effects})
	require.NoError(t, src.PostCityInit(city))
	src.SetAvailable(true)
	src.SetOn(true)
	require.NoError(t, src.Simulate())

	data := encodeLottery(t, src)

	dst := NewLottery(nil)
	require.NoError(t, dst.Decode(gzio.NewReader(bytes.NewReader(data))))

	assert.Equal(t, snapshotLottery(src), snapshotLottery(dst))
	assert.True(t, dst.HaveDeserialized())
	assert.False(t, dst.IsBound())
}

func TestLottery_DecodeThenBindKeepsRestoredFlags(t *testing.T) {
	src := NewLottery(nil)
	src.SetEnabled(false)
	src.SetAvailable(true)
	data := encodeLottery(t, src)

	dst := NewLottery(nil)
	require.NoError(t, dst.Decode(gzio.NewReader(bytes.NewReader(data))))

	city, _ := newTestCity(0, 0, 0, 2000)
	require.NoError(t, dst.PostCityInit(city))

	assert.False(t, dst.IsEnabled(), "restored enabled flag must survive bind")
	assert.True(t, dst.IsAvailable())
}

func TestLottery_DecodeUnsupportedVersion(t *testing.T) {
	data := encodeLottery(t, NewLottery(nil))
	binary.LittleEndian.PutUint32(data[0:], 2)

	dst := NewLottery(nil)
	dst.SetAvailable(true)
	dst.SetTierFactors(0.5, 0.5, 0.5)
	before := snapshotLottery(dst)

	err := dst.Decode(gzio.NewReader(bytes.NewReader(data)))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
	assert.Equal(t, before, snapshotLottery(dst))
	assert.False(t, dst.HaveDeserialized())
}

func TestLottery_DecodeTruncatedLeavesTargetUntouched(t *testing.T) {
	src := NewLottery(nil)
	src.SetAvailable(true)
	src.SetOn(true)
	data := encodeLottery(t, src)

	for n := 0; n < len(data); n++ {
		dst := NewLottery(nil)
		dst.SetTierFactors(0.9, 0.8, 0.7)
		dst.ForceMonthlyAdjustedIncome(123)
		before := snapshotLottery(dst)

		err := dst.Decode(gzio.NewReader(gziotest.Truncated(data, n)))

		require.Error(t, err, "truncated at %d", n)
		require.Equal(t, before, snapshotLottery(dst), "truncated at %d", n)
		require.False(t, dst.HaveDeserialized())
	}
}

func TestLottery_DecodeCorruptBag(t *testing.T) {
	src := NewLottery(nil)
	data := encodeLottery(t, src)

	// Bag version sits right after the income ordinance flag
	off := 4 + 4 + 4 + len(src.Name()) + 4 + len(src.Description()) + 5*8 + 3*4 + 1
	binary.LittleEndian.PutUint32(data[off:], 9)

	dst := NewLottery(nil)
	err := dst.Decode(gzio.NewReader(bytes.NewReader(data)))

	require.Error(t, err)
	assert.ErrorIs(t, err, property.ErrUnsupportedVersion)
	assert.Equal(t, 3, dst.Effects().Len())
}

func TestLottery_EncodeWriteFailure(t *testing.T) {
	full := encodeLottery(t, NewLottery(nil))

	for _, limit := range []int{0, 4, 20, len(full) / 2, len(full) - 1} {
		w := gzio.NewWriter(&gziotest.LimitedWriter{N: limit})
		err := NewLottery(nil).Encode(w)

		require.Error(t, err, "limit %d", limit)
		assert.ErrorIs(t, err, gziotest.ErrInjected)
	}
}

func TestLottery_EncodeWithPriorStreamError(t *testing.T) {
	w := gzio.NewWriter(&gziotest.LimitedWriter{N: 0})
	require.Error(t, w.WriteUint8(1))

	err := NewLottery(nil).Encode(w)

	assert.ErrorIs(t, err, gziotest.ErrInjected)
}

func TestLottery_LocalizedStrings(t *testing.T) {
	base, _ := newTestCity(0, 0, 0, 2000)
	def := LotteryDefinition()

	tests := []struct {
		name     string
		strings  map[StringKey]string
		wantName string
		wantDesc string
	}{
		{
			name:     "replaces both",
			strings:  map[StringKey]string{def.NameKey: "Stadtlotterie", def.DescriptionKey: "Eine Lotterie."},
			wantName: "Stadtlotterie",
			wantDesc: "Eine Lotterie.",
		},
		{
			name:     "empty string ignored",
			strings:  map[StringKey]string{def.NameKey: "", def.DescriptionKey: "Eine Lotterie."},
			wantName: def.Name,
			wantDesc: "Eine Lotterie.",
		},
		{
			name:     "case-insensitive match keeps current text",
			strings:  map[StringKey]string{def.NameKey: "CITY-WIDE LOTTERY PROGRAM"},
			wantName: def.Name,
			wantDesc: def.Description,
		},
		{
			name:     "missing resources",
			strings:  map[StringKey]string{},
			wantName: def.Name,
			wantDesc: def.Description,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city := &localizedCity{testCity: *base, strings: tt.strings}
			l := NewLottery(nil)

			require.NoError(t, l.PostCityInit(city))

			assert.Equal(t, tt.wantName, l.Name())
			assert.Equal(t, tt.wantDesc, l.Description())
		})
	}
}

func TestLottery_PropertyTrace(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, zerolog.DebugLevel).WithOptions(logger.LogPropertyAPI)
	l := NewLottery(log)

	rec, ok := l.Property(property.CrimeEffect)

	require.True(t, ok)
	assert.Equal(t, property.CrimeEffect, rec.ID())
	assert.Contains(t, buf.String(), "Crime Effect")
}

func TestLottery_TraceDisabled(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, zerolog.DebugLevel)
	l := NewLottery(log)

	l.Property(property.CrimeEffect)
	l.SetOn(true)

	assert.Empty(t, buf.String())
}
