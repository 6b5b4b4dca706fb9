package quest

import "lifelens-island/internal/domain/island"

// LandmarkQuestID is the stable id of the quest seeded by a landmark kind.
func LandmarkQuestID(kind island.LandmarkKind) string {
	return "landmark-" + string(kind)
}

// LandmarkQuest returns a fresh copy of the catalog quest for kind.
func LandmarkQuest(kind island.LandmarkKind) (Quest, bool) {
	def, ok := landmarkCatalog[kind]
	if !ok {
		return Quest{}, false
	}
	q := def
	q.ID = LandmarkQuestID(kind)
	q.Source = SourceLandmark
	q.Landmark = kind
	q.Reward.Cells = append([]island.Coord(nil), def.Reward.Cells...)
	q.Reward.Items = append([]string(nil), def.Reward.Items...)
	return q, true
}

var landmarkCatalog = map[island.LandmarkKind]Quest{
	island.LandmarkBuriedBay: {
		Title:       "The Buried Bay",
		Description: "An old sea chest pokes out of the sand. Its lock is etched with a riddle.",
		Reward: Reward{
			Currency: 50,
			Cells:    []island.Coord{{X: 12, Y: 8}, {X: 13, Y: 8}, {X: 11, Y: 9}, {X: 11, Y: 10}},
			Items:    []string{"Rusty Spyglass"},
		},
		Payload: RiddlePayload{Riddle: Riddle{
			Question: "The more of me you save, the more you have to spend tomorrow. What am I?",
			Options:  []string{"Doubloons", "Seawater", "Sand"},
			Answer:   "Doubloons",
		}},
	},
	island.LandmarkSkullRock: {
		Title:       "Skull Rock Parley",
		Description: "A smooth-talking captain waits at the rock with an offer.",
		Reward: Reward{
			Currency: 70,
			Cells:    []island.Coord{{X: 12, Y: 11}, {X: 13, Y: 11}, {X: 12, Y: 12}, {X: 13, Y: 12}, {X: 14, Y: 12}},
		},
		Payload: DecisionPayload{
			Scenario: "The captain promises to double every doubloon you hand over by next tide, guaranteed. Your crew's food money is in your pocket.",
			Choices: [2]Choice{
				{Text: "Hand over the food money", Correct: false, Feedback: "The captain sails off at dawn. Guaranteed doubling is the oldest trick on the seas."},
				{Text: "Keep the money and walk away", Correct: true, Feedback: "Wise. Promises with no risk attached usually hide all the risk."},
			},
			BonusCurrency: 10,
		},
	},
	island.LandmarkCave: {
		Title:       "Smuggler's Cave",
		Description: "Three carved doors stand between you and the smugglers' hoard.",
		Reward: Reward{
			Currency: 100,
			Cells:    []island.Coord{{X: 16, Y: 10}, {X: 18, Y: 10}, {X: 17, Y: 9}, {X: 18, Y: 9}, {X: 17, Y: 11}},
			Items:    []string{"Smuggler's Ledger"},
		},
		Payload: ChainPayload{
			Riddles: []Riddle{
				{
					Question: "I grow when you leave me alone in the bank. What am I?",
					Options:  []string{"Interest", "Rust", "Barnacles"},
					Answer:   "Interest",
				},
				{
					Question: "I am the plan that tells every doubloon where to go. What am I?",
					Options:  []string{"A map", "A budget", "A compass"},
					Answer:   "A budget",
				},
				{
					Question: "Sailors keep me for storms; savers keep me for surprises. What am I?",
					Options:  []string{"An anchor", "An emergency fund", "A parrot"},
					Answer:   "An emergency fund",
				},
			},
			BonusCurrency: 25,
		},
	},
	island.LandmarkShipwreck: {
		Title:       "The Shipwreck",
		Description: "The wreck's name boards are scattered. Piece the words back together.",
		Reward: Reward{
			Currency: 80,
			Cells:    []island.Coord{{X: 7, Y: 5}, {X: 5, Y: 5}, {X: 6, Y: 6}, {X: 7, Y: 4}, {X: 6, Y: 4}},
			Items:    []string{"Captain's Log"},
		},
		Payload: HangmanPayload{
			Words: []HangmanWord{
				{Word: "ANCHOR", Clue: "Keeps a ship from drifting"},
				{Word: "COMPASS", Clue: "Always points the way north"},
				{Word: "SAVINGS", Clue: "What the wise keep for a rainy day"},
			},
			BonusCurrency: 20,
		},
	},
	island.LandmarkVolcano: {
		Title:       "Heart of the Volcano",
		Description: "Glyphs glow on the crater wall. Spell them out before the lava rises.",
		Reward: Reward{
			Currency: 120,
			Cells:    []island.Coord{{X: 14, Y: 4}, {X: 13, Y: 5}, {X: 15, Y: 5}, {X: 14, Y: 6}, {X: 16, Y: 5}},
			Items:    []string{"Obsidian Idol"},
		},
		Payload: HangmanPayload{
			Words: []HangmanWord{
				{Word: "BUDGET", Clue: "A plan for your coins"},
				{Word: "TREASURE", Clue: "What every pirate seeks"},
			},
			BonusCurrency: 30,
		},
	},
	island.LandmarkLighthouse: {
		Title:       "The Lighthouse Keeper",
		Description: "The keeper's lamp is running out of oil and winter is coming.",
		Reward: Reward{
			Currency: 60,
			Cells:    []island.Coord{{X: 16, Y: 3}, {X: 16, Y: 4}, {X: 17, Y: 4}, {X: 15, Y: 2}},
			Items:    []string{"Keeper's Lantern"},
		},
		Payload: DecisionPayload{
			Scenario: "You have enough doubloons for oil all winter, or a shiny brass telescope today.",
			Choices: [2]Choice{
				{Text: "Stock up on oil first", Correct: true, Feedback: "Needs before wants. The light burns all winter."},
				{Text: "Buy the telescope", Correct: false, Feedback: "A fine view, but the lamp goes dark by midwinter."},
			},
		},
	},
}
