package elonpet

// Elon type and colors
const (
	PetTypeElon PetType = "elon"

	ColorClassic Color = "classic"
	ColorWario   Color = "wario"
)

var elon = &Species{
	Type:           PetTypeElon,
	Label:          "elon",
	Emoji:          "👨🏻‍💻",
	Hello:          "That's my lesson for taking a vacation: Vacation will kill you.",
	PossibleColors: []Color{ColorClassic, ColorWario},
	Names:          []string{"Elon", "Elongator", "Elmo", "Space Karen", "Technoking"},
	Speed:          "normal",
	Sequence: Sequence{
		StartingState: StateSitIdle,
		SequenceStates: []Transition{
			{
				State:              StateSitIdle,
				PossibleNextStates: []StateID{StateWalkRight, StateRunRight, StateSwipe},
			},
			{
				State:              StateWalkRight,
				PossibleNextStates: []StateID{StateWalkLeft, StateRunLeft},
			},
			{
				State:              StateRunRight,
				PossibleNextStates: []StateID{StateWalkLeft, StateRunLeft},
			},
			{
				State:              StateWalkLeft,
				PossibleNextStates: []StateID{StateSitIdle},
			},
			{
				State:              StateRunLeft,
				PossibleNextStates: []StateID{StateSitIdle},
			},
			{
				State:              StateChase,
				PossibleNextStates: []StateID{StateIdleWithBall},
			},
			{
				State:              StateSwipe,
				PossibleNextStates: []StateID{StateSitIdle},
			},
			{
				State: StateIdleWithBall,
				PossibleNextStates: []StateID{
					StateWalkRight, StateWalkLeft, StateRunLeft, StateRunRight, StateSwipe,
				},
			},
		},
	},
	Overrides: map[StateID]StateOverride{
		StateSwipe: {
			HoldTicks: 30,
			Quips: []string{
				"Vacation will kill you.",
				"I'd like to die on Mars. Just not on impact.",
				"The first step is to establish that something is possible.",
				"Work like hell.",
				"Ship it.",
			},
		},
	},
}
