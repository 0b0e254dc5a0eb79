package ordinance

import (
	"github.com/stwalsh4118/city-lottery/internal/logger"
)

// Logger is the diagnostic sink used by ordinances.
// *logger.Logger satisfies it.
type Logger interface {
	Trace(opt logger.Option, msg string, fields map[string]interface{})
}

// StringKey identifies a localized string resource. The zero key means none.
type StringKey struct {
	Group    uint32
	Instance uint32
}

// IsZero reports whether the key is unset.
func (k StringKey) IsZero() bool {
	return k.Group == 0 && k.Instance == 0
}

// ResidentialSimulator reports the city's total residential population.
type ResidentialSimulator interface {
	Population() int32
}

// Simulator reports the simulation date.
type Simulator interface {
	Year() uint32
}

// DemandSimulator reports demand supply values per demand group.
// The second return value is false when the host has no demand record for
// the group.
type DemandSimulator interface {
	Supply(group uint32, censusIndex uint32) (float32, bool)
}

// City is the live city context an ordinance binds to.
// Each accessor reports false when the host does not provide the facility.
type City interface {
	ResidentialSimulator() (ResidentialSimulator, bool)
	Simulator() (Simulator, bool)
	DemandSimulator() (DemandSimulator, bool)
}

// Localizer looks up localized string resources. A City that also implements
// Localizer gets ordinance names and descriptions refreshed on bind.
type Localizer interface {
	LocalizedString(key StringKey) (string, bool)
}
