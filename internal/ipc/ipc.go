// Package ipc implements the line-delimited JSON event protocol consumed by a
// host process driving entrascan (one event object per line on stdout).
// Three event kinds exist: progress, success, and error. An error event is
// fatal; the caller exits non-zero after emitting it.
package ipc

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/entrascan/entrascan/pkg/types"
)

type Event struct {
	Type    string   `json:"type"`
	Message string   `json:"message,omitempty"`
	Percent *float64 `json:"percent,omitempty"`
	Data    any      `json:"data,omitempty"`
}

// SuccessPayload is the data field of a success event. Table is present for
// modules that produce tabular results.
type SuccessPayload struct {
	Message string                `json:"message"`
	Table   *types.MarkdownTable `json:"table,omitempty"`
}

type Emitter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Stdout returns an emitter on os.Stdout, the channel a host process reads.
func Stdout() *Emitter {
	return NewEmitter(os.Stdout)
}

func (e *Emitter) emit(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	enc := json.NewEncoder(e.w)
	// Encode errors are unrecoverable here; a broken pipe means the host is
	// gone and nothing useful can be reported to it.
	_ = enc.Encode(ev)
}

func (e *Emitter) Progress(message string, percent float64) {
	e.emit(Event{Type: "progress", Message: message, Percent: &percent})
}

func (e *Emitter) Success(data any) {
	e.emit(Event{Type: "success", Data: data})
}

func (e *Emitter) Error(message string) {
	e.emit(Event{Type: "error", Message: message})
}
