package hostmap

// Command codes used by the generators.
const (
	CodeEnd        = 0
	CodeTransfer   = 201
	CodeEncounter  = 301
	CodeScript     = 355
	CodeBattleWin  = 601
	CodeBattleEsc  = 602
	CodeBattleLose = 603
	CodeBattleEnd  = 604
)

// Event triggers.
const (
	TriggerAction      = 0
	TriggerPlayerTouch = 1
	TriggerEventTouch  = 2
)

// Command is one line of an event page's script.
type Command struct {
	Code       int   `json:"code"`
	Parameters []any `json:"parameters"`
	Indent     int   `json:"indent"`
}

// Conditions gate whether a page is active.
type Conditions struct {
	ActorID         int    `json:"actorId"`
	ActorValid      bool   `json:"actorValid"`
	ItemID          int    `json:"itemId"`
	ItemValid       bool   `json:"itemValid"`
	SelfSwitchCh    string `json:"selfSwitchCh"`
	SelfSwitchValid bool   `json:"selfSwitchValid"`
	Switch1ID       int    `json:"switch1Id"`
	Switch1Valid    bool   `json:"switch1Valid"`
	Switch2ID       int    `json:"switch2Id"`
	Switch2Valid    bool   `json:"switch2Valid"`
	VariableID      int    `json:"variableId"`
	VariableValid   bool   `json:"variableValid"`
	VariableValue   int    `json:"variableValue"`
}

// Image selects the sprite shown for a page.
type Image struct {
	TileID         int    `json:"tileId"`
	CharacterName  string `json:"characterName"`
	Direction      int    `json:"direction"`
	Pattern        int    `json:"pattern"`
	CharacterIndex int    `json:"characterIndex"`
}

// MoveRoute is a page's autonomous movement script.
type MoveRoute struct {
	List      []Command `json:"list"`
	Repeat    bool      `json:"repeat"`
	Skippable bool      `json:"skippable"`
	Wait      bool      `json:"wait"`
}

// Page is one conditional behaviour of an event.
type Page struct {
	Conditions    Conditions `json:"conditions"`
	DirectionFix  bool       `json:"directionFix"`
	Image         Image      `json:"image"`
	List          []Command  `json:"list"`
	MoveFrequency int        `json:"moveFrequency"`
	MoveRoute     MoveRoute  `json:"moveRoute"`
	MoveSpeed     int        `json:"moveSpeed"`
	MoveType      int        `json:"moveType"`
	PriorityType  int        `json:"priorityType"`
	StepAnime     bool       `json:"stepAnime"`
	Through       bool       `json:"through"`
	Trigger       int        `json:"trigger"`
	WalkAnime     bool       `json:"walkAnime"`
}

// Event is a placed map event.
type Event struct {
	ID    int            `json:"id"`
	Name  string         `json:"name"`
	Note  string         `json:"note"`
	Meta  map[string]any `json:"meta,omitempty"`
	Pages []*Page        `json:"pages"`
	X     int            `json:"x"`
	Y     int            `json:"y"`
}

// HasCommand reports whether any page runs a command with the given code.
func (e *Event) HasCommand(code int) bool {
	for _, page := range e.Pages {
		if page == nil {
			continue
		}
		for _, cmd := range page.List {
			if cmd.Code == code {
				return true
			}
		}
	}
	return false
}

// Clone deep-copies the event. Command parameters are copied shallowly.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	out := *e
	if e.Meta != nil {
		out.Meta = make(map[string]any, len(e.Meta))
		for k, v := range e.Meta {
			out.Meta[k] = v
		}
	}
	out.Pages = make([]*Page, len(e.Pages))
	for i, page := range e.Pages {
		if page == nil {
			continue
		}
		p := *page
		p.List = cloneCommands(page.List)
		p.MoveRoute.List = cloneCommands(page.MoveRoute.List)
		out.Pages[i] = &p
	}
	return &out
}

func cloneCommands(in []Command) []Command {
	if in == nil {
		return nil
	}
	out := make([]Command, len(in))
	for i, cmd := range in {
		out[i] = cmd
		out[i].Parameters = append([]any(nil), cmd.Parameters...)
	}
	return out
}
