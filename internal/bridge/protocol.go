// Package bridge exposes the dungeon and quest engines to the host runtime
// over a WebSocket.
//
// Each text frame carries one JSON request:
//
//	{"id": "7", "op": "task.accept", "args": {"task": {...}}}
//
// and is answered by one response with the same id:
//
//	{"id": "7", "ok": true, "result": true}
//	{"id": "7", "ok": false, "error": "a quest is already active", "code": "quest_active"}
//
// Unsolicited notifications carry an event name instead of an id.
package bridge

import (
	"encoding/json"
	"errors"

	"github.com/tychio/da-rmmv-plugins/internal/dungeon"
	"github.com/tychio/da-rmmv-plugins/internal/hostmap"
	"github.com/tychio/da-rmmv-plugins/internal/maze"
	"github.com/tychio/da-rmmv-plugins/internal/names"
	"github.com/tychio/da-rmmv-plugins/internal/quest"
	"github.com/tychio/da-rmmv-plugins/internal/session"
)

// Request is one call from the host.
type Request struct {
	ID   string          `json:"id"`
	Op   string          `json:"op"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Response answers the request with the same ID.
type Response struct {
	ID     string `json:"id"`
	OK     bool   `json:"ok"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	Code   string `json:"code,omitempty"`
}

// Event is pushed to every connection when something happens host-side
// code should react to.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Error codes sent with failed responses.
const (
	CodeBadRequest    = "bad_request"
	CodeUnknownOp     = "unknown_op"
	CodeUnavailable   = "unavailable"
	CodeInternal      = "internal"
	CodeQuestActive   = "quest_active"
	CodeNoQuest       = "no_active_quest"
	CodeNotDone       = "quest_not_done"
	CodeTransition    = "invalid_transition"
	CodeExhausted     = "generation_exhausted"
	CodeEmptyInput    = "empty_input"
	CodeMapNotFound   = "map_not_found"
	CodeTemplate      = "template_too_small"
	CodeChecksum      = "checksum_mismatch"
	CodeSlotNotFound  = "slot_not_found"
	CodeSaveVersion   = "unsupported_version"
	CodeNotConfigured = "not_configured"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{quest.ErrQuestActive, CodeQuestActive},
	{quest.ErrNoActiveQuest, CodeNoQuest},
	{quest.ErrQuestNotDone, CodeNotDone},
	{quest.ErrInvalidTransition, CodeTransition},
	{quest.ErrGenerationExhausted, CodeExhausted},
	{quest.ErrInvalidCount, CodeBadRequest},
	{quest.ErrNoQuestMaps, CodeEmptyInput},
	{quest.ErrEmptyList, CodeEmptyInput},
	{names.ErrEmptyLibrary, CodeEmptyInput},
	{maze.ErrEmptyMaze, CodeEmptyInput},
	{dungeon.ErrNoWalkableTile, CodeEmptyInput},
	{dungeon.ErrTemplateTooSmall, CodeTemplate},
	{hostmap.ErrMapNotFound, CodeMapNotFound},
	{session.ErrChecksumMismatch, CodeChecksum},
	{session.ErrSlotNotFound, CodeSlotNotFound},
	{session.ErrUnsupportedVersion, CodeSaveVersion},
	{session.ErrNoSlotStore, CodeNotConfigured},
	{errUnavailable, CodeUnavailable},
}

// errorCode classifies err for the host.
func errorCode(err error) string {
	var bad *badRequestError
	if errors.As(err, &bad) {
		return CodeBadRequest
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeInternal
}

type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

var errUnavailable = errors.New("service not configured")

func fail(id string, err error) Response {
	return Response{ID: id, OK: false, Error: err.Error(), Code: errorCode(err)}
}
