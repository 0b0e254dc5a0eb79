package property

import "fmt"

// Well-known ordinance effect property ids.
const (
	CrimeEffect             uint32 = 0x28ED0380
	MayorRating             uint32 = 0xAA5B8407
	AirEffect               uint32 = 0x08F79B8E
	FlammabilityEffect      uint32 = 0x28F42AA0
	WaterEffect             uint32 = 0xE8F79C8B
	GarbageEffect           uint32 = 0xE8F79C90
	WaterUseReduction       uint32 = 0xA8F4EB0C
	PowerReductionEffect    uint32 = 0x0911E117
	CommercialDemandEffect  uint32 = 0x2A633000
	DemandEffectCs1         uint32 = 0x2A653110
	DemandEffectCs2         uint32 = 0x2A653120
	DemandEffectCs3         uint32 = 0x2A653130
	DemandEffectCo2         uint32 = 0x2A653320
	DemandEffectCo3         uint32 = 0x2A653330
	IndustrialDemandEffect  uint32 = 0x2A634000
	DemandEffectIR          uint32 = 0x2A654100
	DemandEffectID          uint32 = 0x2A654200
	DemandEffectIM          uint32 = 0x2A654300
	DemandEffectIHT         uint32 = 0x2A654400
	HealthCoverageRadius    uint32 = 0x491B3AD5
	HealthEffectVsDistance  uint32 = 0x891B3AE6
	HealthQuotientBoost     uint32 = 0xE91B3AEE
	HealthQuotientDecay     uint32 = 0xC92D9C7A
	HealthCapacityEffect    uint32 = 0x092D909B
	HealthEffectVsAge       uint32 = 0xE92D9DB4
	SchoolCoverageRadius    uint32 = 0xA91B3AF4
	SchoolEffectVsDistance  uint32 = 0xA91B3AFA
	SchoolEQBoostEffect     uint32 = 0xA92D9D7A
	SchoolEQDecayEffect     uint32 = 0x692EF65A
	SchoolCapacityEffect    uint32 = 0x892D9D02
	SchoolEffectVsAge       uint32 = 0xC91B3B02
	TravelStrategyModifier  uint32 = 0x8A612FEE
	AirEffectByZoneType     uint32 = 0x8A67E373
	WaterEffectByZoneType   uint32 = 0x8A67E374
	GarbageEffectByZoneType uint32 = 0x8A67E376
	TrafficAirPollution     uint32 = 0x8A67E378
)

var descriptions = map[uint32]string{
	CrimeEffect:             "Crime Effect (float32[1])",
	MayorRating:             "Mayor Rating (int32[1])",
	AirEffect:               "Air Effect (float32[1])",
	FlammabilityEffect:      "Flammability Effect (float32[1])",
	WaterEffect:             "Water Effect (float32[1])",
	GarbageEffect:           "Garbage Effect (float32[1])",
	WaterUseReduction:       "Water Use Reduction (float32[1])",
	PowerReductionEffect:    "Power Reduction Effect (float32[1])",
	CommercialDemandEffect:  "Commercial Demand Effect (float32[1])",
	DemandEffectCs1:         "Demand Effect:Cs$ (float32[1])",
	DemandEffectCs2:         "Demand Effect:Cs$$ (float32[1])",
	DemandEffectCs3:         "Demand Effect:Cs$$$ (float32[1])",
	DemandEffectCo2:         "Demand Effect:Co$$ (float32[1])",
	DemandEffectCo3:         "Demand Effect:Co$$$ (float32[1])",
	IndustrialDemandEffect:  "Industrial Demand Effect (float32[1])",
	DemandEffectIR:          "Demand Effect:IR (float32[1])",
	DemandEffectID:          "Demand Effect:ID (float32[1])",
	DemandEffectIM:          "Demand Effect:IM (float32[1])",
	DemandEffectIHT:         "Demand Effect:IHT (float32[1])",
	HealthCoverageRadius:    "Health Coverage Radius % Effect (float32[1])",
	HealthEffectVsDistance:  "Health Effectiveness vs. Distance Effect (float32, general response curve)",
	HealthQuotientBoost:     "Health Quotient Boost Effect (float32[1])",
	HealthQuotientDecay:     "Health Quotient Decay Effect (float32[1])",
	HealthCapacityEffect:    "Health Capacity Effect (float32[1])",
	HealthEffectVsAge:       "Health Effectiveness vs. Average Age Effect (float32, general response curve)",
	SchoolCoverageRadius:    "School Coverage Radius % Effect (float32[1])",
	SchoolEffectVsDistance:  "School Effectiveness vs. Distance Effect (float32, general response curve)",
	SchoolEQBoostEffect:     "School EQ Boost Effect (float32[1])",
	SchoolEQDecayEffect:     "School EQ Decay Effect (float32[1])",
	SchoolCapacityEffect:    "School Capacity Effect (float32[1])",
	SchoolEffectVsAge:       "School Effectiveness vs. Average Age Effect (float32, general response curve)",
	TravelStrategyModifier:  "Travel Strategy Modifier (int32[9])",
	AirEffectByZoneType:     "Air Effect by zone type (float32[16])",
	WaterEffectByZoneType:   "Water Effect by zone type (float32[16])",
	GarbageEffectByZoneType: "Garbage Effect by zone type (float32[16])",
	TrafficAirPollution:     "Traffic Air Pollution Effect (float32[1])",
}

// Describe returns a human readable name for well-known property ids.
func Describe(id uint32) (string, bool) {
	d, ok := descriptions[id]
	return d, ok
}

// FormatID formats a property id for logs, appending its description when
// the id is well known.
func FormatID(id uint32) string {
	if d, ok := Describe(id); ok {
		return fmt.Sprintf("0x%08x (%s)", id, d)
	}
	return fmt.Sprintf("0x%08x", id)
}
