package hostmap

// Callbacks are script snippets the host runs after a quest battle.
type Callbacks struct {
	Win    string `json:"win"`
	Escape string `json:"esc"`
	Lose   string `json:"lose"`
}

// EncounterSpec describes an enemy event to place on a map.
type EncounterSpec struct {
	ID        int
	Name      string
	X, Y      int
	TroopID   int
	Callbacks Callbacks
}

// Emitter turns an encounter description into a host event record.
type Emitter interface {
	Emit(spec EncounterSpec) *Event
}

// EncounterEmitter emits a wandering monster that starts a battle on touch
// and reports the outcome through the three callbacks.
type EncounterEmitter struct {
	CharacterName  string
	CharacterIndex int
}

// NewEncounterEmitter returns an emitter using the stock monster sprite.
func NewEncounterEmitter() *EncounterEmitter {
	return &EncounterEmitter{CharacterName: "Monster", CharacterIndex: 1}
}

func (e *EncounterEmitter) Emit(spec EncounterSpec) *Event {
	script := []Command{
		// troop designation 0 (direct), troop id, can escape, can lose
		{Code: CodeEncounter, Parameters: []any{0, spec.TroopID, true, true}},
		{Code: CodeBattleWin, Parameters: []any{}},
		{Code: CodeScript, Parameters: []any{spec.Callbacks.Win}, Indent: 1},
		{Code: CodeBattleEsc, Parameters: []any{}},
		{Code: CodeScript, Parameters: []any{spec.Callbacks.Escape}, Indent: 1},
		{Code: CodeBattleLose, Parameters: []any{}},
		{Code: CodeScript, Parameters: []any{spec.Callbacks.Lose}, Indent: 1},
		{Code: CodeBattleEnd, Parameters: []any{}},
	}

	page := &Page{
		Conditions: Conditions{
			ActorID:      1,
			ItemID:       1,
			SelfSwitchCh: "A",
			Switch1ID:    1,
			Switch2ID:    1,
			VariableID:   1,
		},
		Image: Image{
			CharacterName:  e.CharacterName,
			Direction:      2,
			CharacterIndex: e.CharacterIndex,
		},
		List:          script,
		MoveFrequency: 3,
		MoveRoute: MoveRoute{
			List:   []Command{{Code: CodeEnd, Parameters: []any{}}},
			Repeat: true,
		},
		MoveSpeed:    2,
		MoveType:     1,
		PriorityType: 1,
		Trigger:      TriggerEventTouch,
		WalkAnime:    true,
	}

	return &Event{
		ID:    spec.ID,
		Name:  spec.Name,
		Meta:  map[string]any{},
		Pages: []*Page{page},
		X:     spec.X,
		Y:     spec.Y,
	}
}
