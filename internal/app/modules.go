package app

import (
	"github.com/specialistvlad/circles/internal/registry"
	"github.com/specialistvlad/circles/modules/arith"
	"github.com/specialistvlad/circles/modules/control"
	"github.com/specialistvlad/circles/modules/osc"
	"github.com/specialistvlad/circles/modules/placeholder"
)

// coreModules is the definitive list of all operation modules that are
// compiled into the circles binary.
var coreModules = []registry.Module{
	&control.Module{},
	&arith.Module{},
	&osc.Module{},
	&placeholder.Module{},
}
