package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/tychio/da-rmmv-plugins/internal/dungeon"
	"github.com/tychio/da-rmmv-plugins/internal/hostmap"
	"github.com/tychio/da-rmmv-plugins/internal/party"
	"github.com/tychio/da-rmmv-plugins/internal/quest"
	"github.com/tychio/da-rmmv-plugins/internal/session"
)

// Services are the engines the bridge drives. Nil members make their ops
// fail with CodeUnavailable.
type Services struct {
	Dungeons *dungeon.Generator
	Maps     hostmap.Store
	Quests   *quest.Engine
	Party    *party.Party
	Session  *session.Session
}

type handlerFunc func(args json.RawMessage) (any, error)

type mapArgs struct {
	MapID int `json:"map_id"`
}

type generateArgs struct {
	Count int `json:"count"`
}

type acceptArgs struct {
	Task *quest.Quest `json:"task"`
}

type finishArgs struct {
	Force bool `json:"force"`
}

type slotArgs struct {
	Slot int `json:"slot"`
}

type partyArgs struct {
	Members []party.Member `json:"members"`
}

type enterArgs struct {
	MapID int              `json:"map_id"`
	Map   *hostmap.MapData `json:"map"`
}

type spawnArgs struct {
	Map       *hostmap.MapData  `json:"map"`
	EventID   int               `json:"event_id"`
	X         int               `json:"x"`
	Y         int               `json:"y"`
	Callbacks hostmap.Callbacks `json:"callbacks"`
}

type spawnResult struct {
	Added bool           `json:"added"`
	Event *hostmap.Event `json:"event,omitempty"`
}

// decode unmarshals args into v, rejecting unknown fields. Missing args
// leave v at its zero value.
func decode(args json.RawMessage, v any) error {
	if len(bytes.TrimSpace(args)) == 0 || string(args) == "null" {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(args))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &badRequestError{msg: fmt.Sprintf("invalid args: %v", err)}
	}
	return nil
}

func badRequest(format string, args ...any) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}

func (s *Server) registerHandlers() {
	s.handlers = map[string]handlerFunc{
		"dungeon.generate":   s.dungeonGenerate,
		"dungeon.invalidate": s.dungeonInvalidate,
		"dungeon.load_map":   s.dungeonLoadMap,
		"task.generate":      s.taskGenerate,
		"task.accept":        s.taskAccept,
		"task.next_step":     s.taskNextStep,
		"task.finish":        s.taskFinish,
		"task.abandon":       s.taskAbandon,
		"task.current":       s.taskCurrent,
		"task.grade":         s.taskGrade,
		"task.clear_cache":   s.taskClearCache,
		"task.enter_map":     s.taskEnterMap,
		"task.spawn_enemy":   s.taskSpawnEnemy,
		"party.set":          s.partySet,
		"session.save":       s.sessionSave,
		"session.load":       s.sessionLoad,
	}
}

// Ops lists the supported operation names.
func (s *Server) Ops() []string {
	ops := make([]string, 0, len(s.handlers))
	for op := range s.handlers {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// Dispatch runs one request and builds its response. A handler panic is
// reported as an internal error instead of taking the daemon down.
func (s *Server) Dispatch(req Request) (resp Response) {
	h, ok := s.handlers[req.Op]
	if !ok {
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown op %q", req.Op), Code: CodeUnknownOp}
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Handler panicked", "op", req.Op, "id", req.ID, "panic", r)
			resp = Response{ID: req.ID, Error: fmt.Sprintf("internal error in %s", req.Op), Code: CodeInternal}
		}
	}()
	result, err := h(req.Args)
	if err != nil {
		s.log.Debug("Request failed", "op", req.Op, "id", req.ID, "error", err)
		return fail(req.ID, err)
	}
	return Response{ID: req.ID, OK: true, Result: result}
}

func (s *Server) dungeonGenerate(args json.RawMessage) (any, error) {
	if s.svc.Dungeons == nil {
		return nil, errUnavailable
	}
	var a mapArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if a.MapID < 1 {
		return nil, badRequest("map_id must be positive")
	}
	return s.svc.Dungeons.Generate(a.MapID)
}

func (s *Server) dungeonInvalidate(args json.RawMessage) (any, error) {
	if s.svc.Dungeons == nil {
		return nil, errUnavailable
	}
	var a mapArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	s.svc.Dungeons.Invalidate(a.MapID)
	return true, nil
}

// dungeonLoadMap serves a map the way the host's loader should see it:
// a live dungeon layout when one is cached, the stored map otherwise.
func (s *Server) dungeonLoadMap(args json.RawMessage) (any, error) {
	if s.svc.Maps == nil {
		return nil, errUnavailable
	}
	var a mapArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if a.MapID < 1 {
		return nil, badRequest("map_id must be positive")
	}
	return s.svc.Maps.LoadMap(a.MapID)
}

func (s *Server) taskGenerate(args json.RawMessage) (any, error) {
	if s.svc.Quests == nil {
		return nil, errUnavailable
	}
	var a generateArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if a.Count < 0 || a.Count > 100 {
		return nil, badRequest("count must be between 0 and 100, got %d", a.Count)
	}
	return s.svc.Quests.Generate(a.Count)
}

func (s *Server) taskAccept(args json.RawMessage) (any, error) {
	if s.svc.Quests == nil {
		return nil, errUnavailable
	}
	var a acceptArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if a.Task == nil {
		return nil, badRequest("task is required")
	}
	return s.svc.Quests.Accept(a.Task)
}

func (s *Server) taskNextStep(args json.RawMessage) (any, error) {
	if s.svc.Quests == nil {
		return nil, errUnavailable
	}
	if err := s.svc.Quests.NextStep(); err != nil {
		return nil, err
	}
	return s.svc.Quests.Current(), nil
}

func (s *Server) taskFinish(args json.RawMessage) (any, error) {
	if s.svc.Quests == nil {
		return nil, errUnavailable
	}
	var a finishArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	gold, err := s.svc.Quests.Finish(a.Force)
	if err != nil {
		return nil, err
	}
	return map[string]any{"gold": gold, "grade": s.svc.Quests.Grade()}, nil
}

func (s *Server) taskAbandon(args json.RawMessage) (any, error) {
	if s.svc.Quests == nil {
		return nil, errUnavailable
	}
	return s.svc.Quests.Abandon(), nil
}

func (s *Server) taskCurrent(args json.RawMessage) (any, error) {
	if s.svc.Quests == nil {
		return nil, errUnavailable
	}
	return s.svc.Quests.Current(), nil
}

func (s *Server) taskGrade(args json.RawMessage) (any, error) {
	if s.svc.Quests == nil {
		return nil, errUnavailable
	}
	return s.svc.Quests.Grade(), nil
}

func (s *Server) taskClearCache(args json.RawMessage) (any, error) {
	if s.svc.Quests == nil {
		return nil, errUnavailable
	}
	s.svc.Quests.ClearCache()
	return true, nil
}

// taskEnterMap reports a map transfer. Connections are notified through
// the engine's enter callback.
func (s *Server) taskEnterMap(args json.RawMessage) (any, error) {
	if s.svc.Quests == nil {
		return nil, errUnavailable
	}
	var a enterArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	return s.svc.Quests.EnterMap(a.MapID, a.Map), nil
}

func (s *Server) taskSpawnEnemy(args json.RawMessage) (any, error) {
	if s.svc.Quests == nil {
		return nil, errUnavailable
	}
	var a spawnArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if a.Map == nil {
		return nil, badRequest("map is required")
	}
	evt, err := s.svc.Quests.SpawnEnemy(a.Map, a.EventID, a.X, a.Y, a.Callbacks)
	if err != nil {
		return nil, err
	}
	return spawnResult{Added: evt != nil, Event: evt}, nil
}

func (s *Server) partySet(args json.RawMessage) (any, error) {
	if s.svc.Party == nil {
		return nil, errUnavailable
	}
	var a partyArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	s.svc.Party.SetMembers(a.Members)
	return party.MeanLevel(s.svc.Party), nil
}

func (s *Server) sessionSave(args json.RawMessage) (any, error) {
	if s.svc.Session == nil {
		return nil, errUnavailable
	}
	var a slotArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if a.Slot < 0 {
		return nil, badRequest("slot must not be negative")
	}
	return s.svc.Session.Save(a.Slot)
}

func (s *Server) sessionLoad(args json.RawMessage) (any, error) {
	if s.svc.Session == nil {
		return nil, errUnavailable
	}
	var a slotArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if err := s.svc.Session.Load(a.Slot); err != nil {
		return nil, err
	}
	if s.svc.Quests == nil {
		return true, nil
	}
	return map[string]any{"task": s.svc.Quests.Current(), "grade": s.svc.Quests.Grade()}, nil
}
