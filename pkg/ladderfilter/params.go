package ladderfilter

import (
	"github.com/justyntemme/ladderfilter/pkg/framework/param"
	"github.com/justyntemme/ladderfilter/pkg/framework/state"
)

// Parameter IDs
const (
	ParamCutoff uint32 = iota
	ParamResonance
	ParamDrive
	ParamFilterMode
)

// Persistence keys, also used by automation scripts and the remote API.
const (
	KeyCutoff     = "cutoffValue"
	KeyResonance  = "resonanceValue"
	KeyDrive      = "driveValue"
	KeyFilterMode = "filterModeChoice"
)

// RootTag names the root element of the state document.
const RootTag = "LadderFilterParams"

// Parameter ranges and defaults
const (
	CutoffMin     = 20.0
	CutoffMax     = 20000.0
	CutoffDefault = 20000.0
	CutoffSkew    = 0.35

	ResonanceMin     = 0.0
	ResonanceMax     = 1.0
	ResonanceDefault = 0.0

	DriveMin     = 1.0
	DriveMax     = 3.0
	DriveDefault = 1.0

	FilterModeDefault = 1
)

// Values applied on restore when an attribute is missing. They are not the
// construction defaults: a document without cutoffValue restores 1 kHz, not
// 20 kHz, and one without driveValue restores 1.2.
const (
	fallbackCutoff     = 1000.0
	fallbackResonance  = 0.0
	fallbackDrive      = 1.2
	fallbackFilterMode = FilterModeDefault
)

func newParameters() []*param.Parameter {
	options := make([]param.ChoiceOption, 0, len(modeTable))
	for _, item := range MenuItems() {
		options = append(options, param.ChoiceOption{
			Value: float64(item.ID),
			Name:  item.Name,
		})
	}

	return []*param.Parameter{
		param.FrequencyParameter(ParamCutoff, "Cutoff", CutoffMin, CutoffMax, CutoffDefault).
			Key(KeyCutoff).
			Skew(CutoffSkew).
			Build(),
		param.ResonanceParameter(ParamResonance, "Res").
			Key(KeyResonance).
			Build(),
		param.DriveParameter(ParamDrive, "Drive", DriveMin, DriveMax, DriveDefault).
			Key(KeyDrive).
			Build(),
		param.Choice(ParamFilterMode, "Mode", options).
			Key(KeyFilterMode).
			Default(FilterModeDefault).
			Build(),
	}
}

func stateFields() []state.Field {
	return []state.Field{
		{Key: KeyCutoff, ParamID: ParamCutoff, Kind: state.Float, Fallback: fallbackCutoff},
		{Key: KeyResonance, ParamID: ParamResonance, Kind: state.Float, Fallback: fallbackResonance},
		{Key: KeyDrive, ParamID: ParamDrive, Kind: state.Float, Fallback: fallbackDrive},
		{Key: KeyFilterMode, ParamID: ParamFilterMode, Kind: state.Int, Fallback: fallbackFilterMode},
	}
}
