package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-viper/encoding/ini"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"github.com/stwalsh4118/city-lottery/internal/property"
)

// SettingsSection is the INI section holding the lottery settings.
const SettingsSection = "CityLotteryOrdinance"

// Settings keys
const (
	KeyMonthlyConstantIncome = "MonthlyConstantIncome"
	KeyLowWealthFactor       = "R$IncomeFactor"
	KeyMedWealthFactor       = "R$$IncomeFactor"
	KeyHighWealthFactor      = "R$$$IncomeFactor"
	KeyCrimeEffect           = "CrimeEffectMultiplier"
	KeyCs1DemandEffect       = "Cs$DemandEffect"
	KeySchoolEQBoostEffect   = "SchoolEQBoostEffect"
)

// Settings errors
var (
	ErrMissingSetting    = errors.New("missing setting")
	ErrInvalidSetting    = errors.New("invalid setting")
	ErrSettingOutOfRange = errors.New("setting out of range")
)

// Effect values that leave the simulation unchanged are not added to the
// effects bag.
const (
	neutralCrimeEffect     float32 = 1.0
	neutralCs1DemandEffect float32 = 1.0
	neutralSchoolEQBoost   float32 = 100
)

// Settings holds the tunable lottery parameters.
type Settings struct {
	monthlyConstantIncome int64
	lowWealthFactor       float32
	medWealthFactor       float32
	highWealthFactor      float32
	effects               property.Bag
}

// DefaultSettings returns the settings used before a settings file is read.
// The effects bag is empty.
func DefaultSettings() *Settings {
	return &Settings{
		monthlyConstantIncome: 500,
		lowWealthFactor:       0.05,
		medWealthFactor:       0.03,
		highWealthFactor:      0.01,
	}
}

// LoadSettings reads the settings file at path.
func LoadSettings(path string) (*Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open the settings file: %w", err)
	}
	defer f.Close()

	return ReadSettings(f)
}

// ReadSettings reads INI formatted settings from r. Every key is required.
func ReadSettings(r io.Reader) (*Settings, error) {
	codecRegistry := viper.NewCodecRegistry()
	if err := codecRegistry.RegisterCodec("ini", &ini.Codec{}); err != nil {
		return nil, fmt.Errorf("failed to register ini codec: %w", err)
	}

	v := viper.NewWithOptions(viper.WithCodecRegistry(codecRegistry))
	v.SetConfigType("ini")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("failed to parse the settings file: %w", err)
	}

	s := &Settings{}
	var err error

	if s.monthlyConstantIncome, err = getInt64(v, KeyMonthlyConstantIncome); err != nil {
		return nil, err
	}
	if s.lowWealthFactor, err = getFloat32(v, KeyLowWealthFactor); err != nil {
		return nil, err
	}
	if s.medWealthFactor, err = getFloat32(v, KeyMedWealthFactor); err != nil {
		return nil, err
	}
	if s.highWealthFactor, err = getFloat32(v, KeyHighWealthFactor); err != nil {
		return nil, err
	}

	crime, err := getFloat32InRange(v, KeyCrimeEffect, 0.01, 2.0)
	if err != nil {
		return nil, err
	}
	cs1Demand, err := getFloat32InRange(v, KeyCs1DemandEffect, 0.01, 2.0)
	if err != nil {
		return nil, err
	}
	schoolEQ, err := getFloat32InRange(v, KeySchoolEQBoostEffect, 0, 200)
	if err != nil {
		return nil, err
	}

	// Neutral values are compared exactly
	if crime != neutralCrimeEffect {
		s.effects.AddFloat32(property.CrimeEffect, crime)
	}
	if cs1Demand != neutralCs1DemandEffect {
		s.effects.AddFloat32(property.DemandEffectCs1, cs1Demand)
	}
	if schoolEQ != neutralSchoolEQBoost {
		s.effects.AddFloat32(property.SchoolEQBoostEffect, schoolEQ)
	}

	return s, nil
}

// MonthlyConstantIncome returns the fixed monthly income.
func (s *Settings) MonthlyConstantIncome() int64 { return s.monthlyConstantIncome }

// ResidentialLowWealthFactor returns the R$ income factor.
func (s *Settings) ResidentialLowWealthFactor() float32 { return s.lowWealthFactor }

// ResidentialMedWealthFactor returns the R$$ income factor.
func (s *Settings) ResidentialMedWealthFactor() float32 { return s.medWealthFactor }

// ResidentialHighWealthFactor returns the R$$$ income factor.
func (s *Settings) ResidentialHighWealthFactor() float32 { return s.highWealthFactor }

// OrdinanceEffects returns a copy of the configured effects.
func (s *Settings) OrdinanceEffects() property.Bag { return s.effects.Clone() }

func settingKey(name string) string {
	return SettingsSection + "." + name
}

func getRaw(v *viper.Viper, name string) (interface{}, error) {
	key := settingKey(name)
	if !v.IsSet(key) {
		return nil, fmt.Errorf("%w: %s", ErrMissingSetting, key)
	}
	return v.Get(key), nil
}

func getInt64(v *viper.Viper, name string) (int64, error) {
	raw, err := getRaw(v, name)
	if err != nil {
		return 0, err
	}
	n, err := cast.ToInt64E(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidSetting, name, err)
	}
	return n, nil
}

func getFloat32(v *viper.Viper, name string) (float32, error) {
	raw, err := getRaw(v, name)
	if err != nil {
		return 0, err
	}
	f, err := cast.ToFloat32E(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidSetting, name, err)
	}
	return f, nil
}

func getFloat32InRange(v *viper.Viper, name string, lo, hi float32) (float32, error) {
	f, err := getFloat32(v, name)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(float64(f)) {
		return 0, fmt.Errorf("%w: %s is not a number", ErrInvalidSetting, name)
	}
	if f < lo {
		return 0, fmt.Errorf("%w: %s is less than %f", ErrSettingOutOfRange, name, lo)
	}
	if f > hi {
		return 0, fmt.Errorf("%w: %s is greater than %f", ErrSettingOutOfRange, name, hi)
	}
	return f, nil
}
