package ordinance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stwalsh4118/city-lottery/internal/gzio"
	"github.com/stwalsh4118/city-lottery/internal/logger"
	"github.com/stwalsh4118/city-lottery/internal/property"
)

// RecordVersion is the only serialized ordinance record version.
const RecordVersion uint32 = 1

// Ordinance errors
var (
	ErrMissingFacility    = errors.New("city does not provide a required facility")
	ErrUnsupportedVersion = errors.New("unsupported ordinance record version")
)

// Definition holds the construction parameters of an ordinance.
type Definition struct {
	ID                    uint32
	Name                  string
	NameKey               StringKey
	Description           string
	DescriptionKey        StringKey
	EnactmentIncome       int64
	RetracmentIncome      int64
	MonthlyConstantIncome int64
	MonthlyIncomeFactor   float32
	IncomeOrdinance       bool
	Effects               property.Bag
}

// State is the lifecycle and persisted data shared by every ordinance kind.
// It is embedded by the concrete variants, which supply the income formula
// and the income factor section of the binary record.
type State struct {
	clsid          uint32
	name           string
	description    string
	nameKey        StringKey
	descriptionKey StringKey

	enactmentIncome       int64
	retracmentIncome      int64
	monthlyConstantIncome int64
	monthlyIncomeFactor   float32
	monthlyAdjustedIncome int64
	isIncomeOrdinance     bool
	effects               property.Bag

	initialized      bool
	available        bool
	on               bool
	enabled          bool
	haveDeserialized bool

	// nil while unbound
	residential ResidentialSimulator
	simulator   Simulator

	log Logger
}

func newState(def Definition, log Logger) State {
	if log == nil {
		log = logger.Nop()
	}
	return State{
		clsid:                 def.ID,
		name:                  def.Name,
		description:           def.Description,
		nameKey:               def.NameKey,
		descriptionKey:        def.DescriptionKey,
		enactmentIncome:       def.EnactmentIncome,
		retracmentIncome:      def.RetracmentIncome,
		monthlyConstantIncome: def.MonthlyConstantIncome,
		monthlyIncomeFactor:   def.MonthlyIncomeFactor,
		isIncomeOrdinance:     def.IncomeOrdinance,
		effects:               def.Effects.Clone(),
		log:                   log,
	}
}

// ID returns the ordinance class id.
func (s *State) ID() uint32 { return s.clsid }

// Name returns the display name.
func (s *State) Name() string { return s.name }

// Description returns the display description.
func (s *State) Description() string { return s.description }

// ChanceAvailability returns the percentage chance the ordinance is offered.
func (s *State) ChanceAvailability() float32 { return 100 }

// AdvisorID returns the advisor that recommends the ordinance. 0 means none.
func (s *State) AdvisorID() uint32 { return 0 }

func (s *State) EnactmentIncome() int64       { return s.enactmentIncome }
func (s *State) RetracmentIncome() int64      { return s.retracmentIncome }
func (s *State) MonthlyConstantIncome() int64 { return s.monthlyConstantIncome }
func (s *State) MonthlyIncomeFactor() float32 { return s.monthlyIncomeFactor }
func (s *State) MonthlyAdjustedIncome() int64 { return s.monthlyAdjustedIncome }
func (s *State) IsIncomeOrdinance() bool      { return s.isIncomeOrdinance }
func (s *State) IsInitialized() bool          { return s.initialized }
func (s *State) IsAvailable() bool            { return s.available }
func (s *State) IsEnabled() bool              { return s.enabled }

// IsOn reports whether the ordinance is both available and switched on.
func (s *State) IsOn() bool {
	result := s.available && s.on
	s.log.Trace(logger.LogOrdinanceAPI, "IsOn", map[string]interface{}{
		"clsid":  s.clsid,
		"result": result,
	})
	return result
}

// IsBound reports whether the ordinance is attached to a city.
func (s *State) IsBound() bool {
	return s.residential != nil && s.simulator != nil
}

// HaveDeserialized reports whether state was restored from a saved record.
func (s *State) HaveDeserialized() bool { return s.haveDeserialized }

// Effects returns a copy of the side-effect properties.
func (s *State) Effects() property.Bag {
	return s.effects.Clone()
}

// Property returns the first effect property with the given id.
func (s *State) Property(id uint32) (property.Record, bool) {
	rec, ok := s.effects.Get(id)
	fields := map[string]interface{}{
		"clsid":    s.clsid,
		"property": property.FormatID(id),
		"found":    ok,
	}
	if ok {
		fields["value"] = rec.Value().String()
	}
	s.log.Trace(logger.LogPropertyAPI, "Property", fields)
	return rec, ok
}

// SetAvailable sets the available flag and zeroes the adjusted income.
func (s *State) SetAvailable(available bool) {
	s.log.Trace(logger.LogOrdinanceAPI, "SetAvailable", map[string]interface{}{
		"clsid": s.clsid,
		"value": available,
	})
	s.available = available
	s.monthlyAdjustedIncome = 0
}

// SetOn sets the raw on flag. Switching on charges the enactment income,
// switching off the retracment income.
func (s *State) SetOn(on bool) {
	s.log.Trace(logger.LogOrdinanceAPI, "SetOn", map[string]interface{}{
		"clsid": s.clsid,
		"value": on,
	})
	s.on = on
	if on {
		s.monthlyAdjustedIncome = s.enactmentIncome
	} else {
		s.monthlyAdjustedIncome = s.retracmentIncome
	}
}

// SetEnabled sets the enabled flag.
func (s *State) SetEnabled(enabled bool) {
	s.log.Trace(logger.LogOrdinanceAPI, "SetEnabled", map[string]interface{}{
		"clsid": s.clsid,
		"value": enabled,
	})
	s.enabled = enabled
}

func (s *State) ForceAvailable(available bool) { s.SetAvailable(available) }
func (s *State) ForceOn(on bool)               { s.SetOn(on) }
func (s *State) ForceEnabled(enabled bool)     { s.SetEnabled(enabled) }

// ForceMonthlyAdjustedIncome overwrites the last computed monthly income.
func (s *State) ForceMonthlyAdjustedIncome(income int64) {
	s.log.Trace(logger.LogOrdinanceAPI, "ForceMonthlyAdjustedIncome", map[string]interface{}{
		"clsid": s.clsid,
		"value": income,
	})
	s.monthlyAdjustedIncome = income
}

// bind attaches the query facilities. It never fails; callers check
// facility availability first so a failed bind leaves the state untouched.
func (s *State) bind(city City, residential ResidentialSimulator, simulator Simulator) {
	s.residential = residential
	s.simulator = simulator

	if !s.haveDeserialized {
		s.enabled = true
	}

	if loc, ok := city.(Localizer); ok {
		s.refreshLocalizedStrings(loc)
	}

	s.log.Trace(logger.LogOrdinanceAPI, "PostCityInit", map[string]interface{}{
		"clsid":   s.clsid,
		"enabled": s.enabled,
	})
}

// unbind detaches the query facilities and disables the ordinance.
func (s *State) unbind() {
	s.residential = nil
	s.simulator = nil
	s.enabled = false

	s.log.Trace(logger.LogOrdinanceAPI, "PreCityShutdown", map[string]interface{}{
		"clsid": s.clsid,
	})
}

// bindFacilities fetches the facilities every ordinance needs.
func bindFacilities(city City) (ResidentialSimulator, Simulator, error) {
	if city == nil {
		return nil, nil, fmt.Errorf("%w: no city", ErrMissingFacility)
	}
	residential, ok := city.ResidentialSimulator()
	if !ok || residential == nil {
		return nil, nil, fmt.Errorf("%w: residential simulator", ErrMissingFacility)
	}
	simulator, ok := city.Simulator()
	if !ok || simulator == nil {
		return nil, nil, fmt.Errorf("%w: simulator", ErrMissingFacility)
	}
	return residential, simulator, nil
}

func (s *State) refreshLocalizedStrings(loc Localizer) {
	if !s.nameKey.IsZero() {
		if name, ok := loc.LocalizedString(s.nameKey); ok && name != "" && !strings.EqualFold(name, s.name) {
			s.name = name
		}
	}
	if !s.descriptionKey.IsZero() {
		if desc, ok := loc.LocalizedString(s.descriptionKey); ok && desc != "" && !strings.EqualFold(desc, s.description) {
			s.description = desc
		}
	}
}

// checkConditions reports whether the ordinance is enabled, bound and past
// its first available year.
func (s *State) checkConditions(yearFirstAvailable uint32) bool {
	result := false
	if s.enabled && s.simulator != nil {
		result = s.simulator.Year() >= yearFirstAvailable
	}

	s.log.Trace(logger.LogOrdinanceAPI, "CheckConditions", map[string]interface{}{
		"clsid":  s.clsid,
		"result": result,
	})
	return result
}

func (s *State) simulate(income int64) {
	s.monthlyAdjustedIncome = income

	s.log.Trace(logger.LogOrdinanceAPI, "Simulate", map[string]interface{}{
		"clsid":                 s.clsid,
		"monthlyAdjustedIncome": income,
	})
}

// encodeRecord writes the ordinance record. writeFactors writes the
// variant specific income factor section between the adjusted income and
// the income ordinance flag.
func (s *State) encodeRecord(w gzio.Writer, writeFactors func(gzio.Writer) error) error {
	s.log.Trace(logger.LogOrdinanceAPI, "Encode", map[string]interface{}{"clsid": s.clsid})

	if err := w.Err(); err != nil {
		return err
	}

	if err := w.WriteUint32(RecordVersion); err != nil {
		return err
	}
	if err := w.WriteUint32(s.clsid); err != nil {
		return err
	}
	if err := w.WriteString(s.name); err != nil {
		return err
	}
	if err := w.WriteString(s.description); err != nil {
		return err
	}
	if err := w.WriteInt64(s.enactmentIncome); err != nil {
		return err
	}
	// The retracment income is stored twice.
	if err := w.WriteInt64(s.retracmentIncome); err != nil {
		return err
	}
	if err := w.WriteInt64(s.retracmentIncome); err != nil {
		return err
	}
	if err := w.WriteInt64(s.monthlyConstantIncome); err != nil {
		return err
	}
	if err := w.WriteInt64(s.monthlyAdjustedIncome); err != nil {
		return err
	}
	if err := writeFactors(w); err != nil {
		return err
	}
	if err := gzio.WriteBool(w, s.isIncomeOrdinance); err != nil {
		return err
	}
	if err := s.effects.Encode(w); err != nil {
		return fmt.Errorf("encode effects: %w", err)
	}

	for _, flag := range []bool{s.initialized, s.available, s.on, s.enabled} {
		if err := gzio.WriteBool(w, flag); err != nil {
			return err
		}
	}
	return nil
}

// decodeRecord reads a record written by encodeRecord into s. It mutates s
// as it reads, so callers decode into a copy and commit it on success.
func (s *State) decodeRecord(r gzio.Reader, readFactors func(gzio.Reader) error) error {
	s.log.Trace(logger.LogOrdinanceAPI, "Decode", map[string]interface{}{"clsid": s.clsid})

	if err := r.Err(); err != nil {
		return err
	}

	version, err := r.ReadUint32()
	if err != nil {
		return err
	}
	if version != RecordVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	if s.clsid, err = r.ReadUint32(); err != nil {
		return err
	}
	if s.name, err = r.ReadString(); err != nil {
		return err
	}
	if s.description, err = r.ReadString(); err != nil {
		return err
	}
	if s.enactmentIncome, err = r.ReadInt64(); err != nil {
		return err
	}
	if s.retracmentIncome, err = r.ReadInt64(); err != nil {
		return err
	}
	if s.retracmentIncome, err = r.ReadInt64(); err != nil {
		return err
	}
	if s.monthlyConstantIncome, err = r.ReadInt64(); err != nil {
		return err
	}
	if s.monthlyAdjustedIncome, err = r.ReadInt64(); err != nil {
		return err
	}
	if err := readFactors(r); err != nil {
		return err
	}
	if s.isIncomeOrdinance, err = gzio.ReadBool(r); err != nil {
		return err
	}
	if err := s.effects.Decode(r); err != nil {
		return fmt.Errorf("decode effects: %w", err)
	}

	for _, flag := range []*bool{&s.initialized, &s.available, &s.on, &s.enabled} {
		if *flag, err = gzio.ReadBool(r); err != nil {
			return err
		}
	}

	s.haveDeserialized = true
	return nil
}
