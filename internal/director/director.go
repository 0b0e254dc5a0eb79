// Package director connects the lottery ordinance to a host: it loads the
// plugin settings at startup and registers, rebinds and removes the
// ordinance as cities load and unload.
package director

import (
	"errors"

	"github.com/stwalsh4118/city-lottery/internal/config"
	"github.com/stwalsh4118/city-lottery/internal/logger"
	"github.com/stwalsh4118/city-lottery/internal/ordinance"
)

// Host notification message ids
const (
	MessagePostCityInit    uint32 = 0x26D31EC1
	MessagePreCityShutdown uint32 = 0x26D31EC2
)

// DirectorID identifies the director to the host.
const DirectorID uint32 = 0xC8F8CD0F

// Registry is the host's per city ordinance registry.
type Registry interface {
	OrdinanceByID(id uint32) (ordinance.Ordinance, bool)
	AddOrdinance(o ordinance.Ordinance) error
	RemoveOrdinance(o ordinance.Ordinance) error
	Ordinances() []ordinance.Ordinance
}

// CityContext is a live city as seen by the director.
type CityContext interface {
	ordinance.City
	OrdinanceSimulator() (Registry, bool)
}

// Director owns the process wide lottery ordinance instance.
type Director struct {
	settingsPath string
	settings     *config.Settings
	lottery      *ordinance.Lottery
	log          *logger.Logger
}

// New creates a director that reads its settings from settingsPath.
func New(settingsPath string, log *logger.Logger) *Director {
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("director")

	return &Director{
		settingsPath: settingsPath,
		lottery:      ordinance.NewLottery(log),
		log:          log,
	}
}

// PostAppInit loads the settings file. On failure the error is logged, the
// director stays inactive and false is returned.
func (d *Director) PostAppInit() bool {
	settings, err := config.LoadSettings(d.settingsPath)
	if err != nil {
		d.log.Error("Failed to load the settings file", err, map[string]interface{}{
			"path": d.settingsPath,
		})
		return false
	}

	d.settings = settings
	d.log.Info("Settings loaded", map[string]interface{}{
		"path":            d.settingsPath,
		"constant_income": settings.MonthlyConstantIncome(),
		"effects":         settings.OrdinanceEffects().Len(),
	})
	return true
}

// Active reports whether PostAppInit succeeded.
func (d *Director) Active() bool {
	return d.settings != nil
}

// Settings returns the loaded settings, or nil before PostAppInit succeeds.
func (d *Director) Settings() *config.Settings {
	return d.settings
}

// ClassIDs lists the ordinance classes the director provides.
func (d *Director) ClassIDs() []uint32 {
	return []uint32{d.lottery.ID()}
}

// Ordinance returns the ordinance instance for a class id.
func (d *Director) Ordinance(clsid uint32) (ordinance.Ordinance, bool) {
	if clsid != d.lottery.ID() {
		return nil, false
	}
	return d.lottery, true
}

// Lottery returns the lottery ordinance instance.
func (d *Director) Lottery() *ordinance.Lottery {
	return d.lottery
}

// HandleMessage dispatches a host notification. Unknown messages are
// ignored. It reports whether the notification was handled successfully.
func (d *Director) HandleMessage(id uint32, city CityContext) bool {
	switch id {
	case MessagePostCityInit:
		return d.PostCityInit(city)
	case MessagePreCityShutdown:
		return d.PreCityShutdown(city)
	default:
		return true
	}
}

// PostCityInit registers the lottery with a newly loaded city, or rebinds
// the instance the city already holds when it was restored from a save.
// The lottery then picks up the current settings.
func (d *Director) PostCityInit(city CityContext) bool {
	if !d.Active() {
		d.log.Warn("Ignoring city init, settings are not loaded", nil)
		return false
	}
	if city == nil {
		return false
	}

	registry, ok := city.OrdinanceSimulator()
	if !ok || registry == nil {
		d.log.Error("City has no ordinance simulator", errors.New("missing ordinance simulator"), nil)
		return false
	}

	var lottery *ordinance.Lottery
	registered, ok := registry.OrdinanceByID(d.lottery.ID())
	if !ok {
		// Only add the ordinance when the city save did not already contain it
		if err := d.lottery.PostCityInit(city); err != nil {
			d.log.Error("Failed to initialize the ordinance", err, nil)
			return false
		}
		if err := registry.AddOrdinance(d.lottery); err != nil {
			d.log.Error("Failed to add the ordinance", err, nil)
			return false
		}
		lottery = d.lottery
	} else {
		var isLottery bool
		if lottery, isLottery = registered.(*ordinance.Lottery); !isLottery {
			d.log.Error("Registered ordinance is not the lottery", errors.New("unexpected ordinance type"), map[string]interface{}{
				"clsid": registered.ID(),
			})
			return false
		}
		if err := lottery.PostCityInit(city); err != nil {
			d.log.Error("Failed to initialize the ordinance", err, nil)
			return false
		}
	}

	lottery.RefreshParameters(d.settings)

	d.dumpRegisteredOrdinances(registry)
	return true
}

// PreCityShutdown unbinds the lottery and removes it from the city.
func (d *Director) PreCityShutdown(city CityContext) bool {
	if city == nil {
		return false
	}
	registry, ok := city.OrdinanceSimulator()
	if !ok || registry == nil {
		return false
	}

	if err := d.lottery.PreCityShutdown(city); err != nil {
		d.log.Error("Failed to shut down the ordinance", err, nil)
	}
	if err := registry.RemoveOrdinance(d.lottery); err != nil {
		d.log.Warn("Ordinance was not registered", map[string]interface{}{"error": err.Error()})
	}
	return true
}

func (d *Director) dumpRegisteredOrdinances(registry Registry) {
	if !d.log.Enabled(logger.LogDumpRegisteredOrdinances) {
		return
	}
	for _, o := range registry.Ordinances() {
		d.log.Trace(logger.LogDumpRegisteredOrdinances, "Registered ordinance", map[string]interface{}{
			"clsid":     o.ID(),
			"name":      o.Name(),
			"available": o.IsAvailable(),
			"on":        o.IsOn(),
			"income":    o.MonthlyAdjustedIncome(),
		})
	}
}
