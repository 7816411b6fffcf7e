package plate

import "toll_plaza/internal/domain"

// Assembly is the canonical form of a set of plate components.
type Assembly struct {
	Canonical string
	// Complete means Canonical is usable as a registry key.
	Complete bool
	// Partial is true when at least one of area, class or serial was found,
	// whether or not the plate is complete.
	Partial bool
}

// Assemble builds the canonical plate. The metro qualifier is expected to be
// merged into AreaName already.
func Assemble(c domain.PlateComponents) Assembly {
	a := Assembly{Partial: c.AreaName != "" || c.VehicleClass != "" || c.Serial != ""}
	switch {
	case c.AreaName != "" && c.VehicleClass != "" && c.Serial != "":
		a.Canonical = c.AreaName + "-" + c.VehicleClass + "-" + c.Serial
	case c.AreaName != "" && c.Serial != "":
		a.Canonical = c.AreaName + "-" + c.Serial
	}
	a.Complete = a.Canonical != ""
	return a
}
