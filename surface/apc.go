package surface

import "go-variations/variation"

// APC mini button color codes
const (
	ApcOff uint8 = iota
	ApcGreen
	ApcGreenBlinking
	ApcRed
	ApcRedBlinking
	ApcYellow
	ApcYellowBlinking
)

// APC mini logical indices
var (
	SceneTrigger1To64       = Range(0, 63)
	Sliders1To9             = Range(48, 56)
	SceneLaunch1ClipStop    = Button(82)
	SceneLaunch8ClipStopAll = Button(89)
	Shift                   = Button(98)
)

type apcPalette struct{}

func (apcPalette) StateColor(s variation.State) uint8 {
	switch s {
	case variation.StateInactive:
		return ApcGreen
	case variation.StateActive:
		return ApcRed
	case variation.StateModified:
		return ApcYellowBlinking
	case variation.StateBlended:
		return ApcRedBlinking
	}
	return ApcOff
}

func (apcPalette) ModeColor(m InputMode) (uint8, bool) {
	switch m {
	case ModeSave:
		return ApcYellow, true
	case ModeDelete:
		return ApcRed, true
	}
	return 0, false
}

func (apcPalette) Off() uint8 { return ApcOff }

// Bindings returns the trigger combinations shared by the supported surfaces
func Bindings() []*Combination {
	blend := NewCombination("blend", ModeDefault, AllCombinedButtonsReleased,
		func(c Commands, t Trigger) { c.StartBlendingPresets(t.Offsets) },
		SceneTrigger1To64)
	blend.MinButtons = 2

	return []*Combination{
		NewCombination("activate", ModeDefault, SingleRangeButtonPressed,
			func(c Commands, t Trigger) { c.ActivateOrCreatePresetAtIndex(t.Offset) },
			SceneTrigger1To64),
		NewCombination("save", ModeSave, SingleRangeButtonPressed,
			func(c Commands, t Trigger) { c.SavePresetAtIndex(t.Offset) },
			SceneTrigger1To64),
		NewCombination("remove", ModeDelete, SingleRangeButtonPressed,
			func(c Commands, t Trigger) { c.RemovePresetAtIndex(t.Offset) },
			SceneTrigger1To64),
		blend,
		NewCombination("blend-update", ModeDefault, ControllerChange,
			func(c Commands, t Trigger) { c.BlendValuesUpdate(int(t.Value)) },
			Sliders1To9),
		NewCombination("append", ModeDefault, SingleActionButtonPressed,
			func(c Commands, t Trigger) { c.AppendPresetToCurrentGroup() },
			SceneLaunch8ClipStopAll),
	}
}

// ModeButtons returns Shift for save and the first scene launch for delete
func ModeButtons() []ModeButton {
	return []ModeButton{
		{Range: Shift, Mode: ModeSave},
		{Range: SceneLaunch1ClipStop, Mode: ModeDelete},
	}
}

// NewApcMini creates an Akai APC mini surface
func NewApcMini(port Port) *Surface {
	return NewSurface("APC mini", port, NewDecoder(Bindings(), ModeButtons()), apcPalette{}, SceneTrigger1To64)
}
