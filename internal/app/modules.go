package app

import (
	"github.com/rolfedh/adtgo/internal/registry"
	"github.com/rolfedh/adtgo/modules/contenttype"
	"github.com/rolfedh/adtgo/modules/directoryconfig"
	"github.com/rolfedh/adtgo/modules/entityreference"
	"github.com/rolfedh/adtgo/modules/migratetitles"
)

// coreModules is the definitive list of all modules that are compiled into
// the adt-sequencer binary.
var coreModules = []registry.Registrar{
	&directoryconfig.Module{},
	&entityreference.Module{},
	&contenttype.Module{},
	&migratetitles.Module{},
}
