package hostmap

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestIndexLayout(t *testing.T) {
	m := &MapData{}
	m.Resize(4, 3)

	if len(m.Data) != 4*3*Layers {
		t.Fatalf("len(Data) = %d, want %d", len(m.Data), 4*3*Layers)
	}
	if got := m.Index(1, 2, 5); got != 5*3*4+2*4+1 {
		t.Errorf("Index(1,2,5) = %d", got)
	}

	m.SetTile(3, 2, 5, 7)
	if m.Tile(3, 2, 5) != 7 {
		t.Error("SetTile/Tile round trip failed")
	}
	if m.Data[len(m.Data)-1] != 7 {
		t.Error("last tile of last layer should be the bottom-right of layer 5")
	}

	m.SetTile(9, 9, 0, 1) // ignored
	if m.Tile(9, 9, 0) != 0 || m.Tile(-1, 0, 0) != 0 {
		t.Error("out-of-range reads should be zero")
	}

	layer := m.Layer(5)
	if len(layer) != 12 || layer[11] != 7 {
		t.Errorf("Layer(5) = %v", layer)
	}
	if m.Layer(6) != nil {
		t.Error("Layer(6) should be nil")
	}
}

func TestCloneIsDeep(t *testing.T) {
	m := &MapData{Width: 1, Height: 1, Data: make([]int, Layers)}
	m.PutEvent(&Event{ID: 2, Name: "gate", Pages: []*Page{{List: []Command{{Code: CodeTransfer, Parameters: []any{1}}}}}})

	c := m.Clone()
	c.Data[0] = 9
	c.Events[2].X = 5
	c.Events[2].Pages[0].List[0].Code = 0

	if m.Data[0] != 0 || m.Events[2].X != 0 || m.Events[2].Pages[0].List[0].Code != CodeTransfer {
		t.Error("mutating the clone changed the original")
	}
	if c.Events[0] != nil || c.Events[1] != nil {
		t.Error("nil event holes should be preserved")
	}
}

func TestFindEvents(t *testing.T) {
	m := &MapData{}
	m.PutEvent(&Event{ID: 1, Name: "chest", Pages: []*Page{nil, {List: []Command{{Code: 101}}}}})
	m.PutEvent(&Event{ID: 3, Name: "exit", Pages: []*Page{{List: []Command{{Code: CodeTransfer}}}}})

	if evt := m.FindEventWithCode(CodeTransfer); evt == nil || evt.ID != 3 {
		t.Errorf("FindEventWithCode = %+v, want event 3", evt)
	}
	if m.FindEventWithCode(999) != nil {
		t.Error("unexpected match for unknown code")
	}
	if evt := m.FindEventByName("chest"); evt == nil || evt.ID != 1 {
		t.Errorf("FindEventByName = %+v", evt)
	}
}

func TestJSONPreservesUnknownFields(t *testing.T) {
	raw := `{"autoplayBgm":true,"bgm":{"name":"Dungeon1"},"width":2,"height":1,"data":[1,2,0,0,0,0,0,0,0,0,0,0],"events":[null,{"id":1,"name":"x","note":"","pages":[],"x":0,"y":0}]}`

	var m MapData
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatal(err)
	}
	if m.Width != 2 || len(m.Events) != 2 || m.Events[0] != nil {
		t.Fatalf("decoded map = %+v", m)
	}
	if _, ok := m.Extra["bgm"]; !ok {
		t.Error("bgm should be kept in Extra")
	}

	out, err := json.Marshal(&m)
	if err != nil {
		t.Fatal(err)
	}
	var back map[string]json.RawMessage
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}
	if string(back["autoplayBgm"]) != "true" {
		t.Errorf("autoplayBgm lost in round trip: %s", out)
	}
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	m := &MapData{DisplayName: "Cave"}
	m.Resize(2, 2)
	m.SetTile(1, 1, 0, 2816)
	if err := store.SaveMap(7, m); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Map007.json")); err != nil {
		t.Errorf("expected Map007.json: %v", err)
	}

	loaded, err := store.LoadMap(7)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Tile(1, 1, 0) != 2816 || loaded.DisplayName != "Cave" {
		t.Errorf("loaded map mismatch: %+v", loaded)
	}

	if _, err := store.LoadMap(8); !errors.Is(err, ErrMapNotFound) {
		t.Errorf("missing map error = %v, want ErrMapNotFound", err)
	}

	infos := `[null,{"id":1,"name":"Town","parentId":0,"order":1},{"id":2,"name":"$Cave","parentId":0,"order":2}]`
	if err := os.WriteFile(filepath.Join(dir, "MapInfos.json"), []byte(infos), 0644); err != nil {
		t.Fatal(err)
	}
	list, err := store.MapInfos()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[1].Name != "$Cave" {
		t.Errorf("MapInfos = %+v", list)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	m := &MapData{}
	m.Resize(1, 1)
	if err := store.SaveMap(1, m); err != nil {
		t.Fatal(err)
	}
	m.Data[0] = 5

	loaded, err := store.LoadMap(1)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Data[0] != 0 {
		t.Error("store kept a reference to the caller's map")
	}
	if _, err := store.LoadMap(2); !errors.Is(err, ErrMapNotFound) {
		t.Errorf("err = %v, want ErrMapNotFound", err)
	}
}

func TestEncounterEmitter(t *testing.T) {
	evt := NewEncounterEmitter().Emit(EncounterSpec{
		ID:   4,
		Name: "Giant Bat",
		X:    3, Y: 5,
		Callbacks: Callbacks{Win: "task.win()", Escape: "task.esc()", Lose: "task.lose()"},
	})

	if evt.ID != 4 || evt.Name != "Giant Bat" || evt.X != 3 || evt.Y != 5 {
		t.Errorf("event header = %+v", evt)
	}
	if len(evt.Pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(evt.Pages))
	}
	page := evt.Pages[0]
	if page.Trigger != TriggerEventTouch {
		t.Errorf("trigger = %d, want event touch", page.Trigger)
	}

	wantCodes := []int{CodeEncounter, CodeBattleWin, CodeScript, CodeBattleEsc, CodeScript, CodeBattleLose, CodeScript, CodeBattleEnd}
	if len(page.List) != len(wantCodes) {
		t.Fatalf("script length = %d, want %d", len(page.List), len(wantCodes))
	}
	for i, code := range wantCodes {
		if page.List[i].Code != code {
			t.Errorf("command %d code = %d, want %d", i, page.List[i].Code, code)
		}
	}
	if page.List[2].Parameters[0] != "task.win()" || page.List[2].Indent != 1 {
		t.Errorf("win branch = %+v", page.List[2])
	}
	if page.List[6].Parameters[0] != "task.lose()" {
		t.Errorf("lose branch = %+v", page.List[6])
	}
}
