package actions

import (
	"time"

	"github.com/google/uuid"
)

// MaxUndoDepth bounds the undo stack; older entries fall off the bottom.
const MaxUndoDepth = 64

// Record is one applied command with the state needed to reverse it. The
// engine captures Revert when applying; commands that cannot be reversed
// (speed, pause) are not recorded.
type Record struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Applied time.Time `json:"applied"`
	Command Command   `json:"-"`
	// Revert undoes the command's effects when invoked.
	Revert func() `json:"-"`
}

// UndoStack is a bounded LIFO of applied commands.
type UndoStack struct {
	records []Record
}

// NewUndoStack returns an empty stack.
func NewUndoStack() *UndoStack {
	return &UndoStack{}
}

// Push records an applied command. The oldest entry is dropped past the
// depth limit.
func (u *UndoStack) Push(cmd Command, revert func()) uuid.UUID {
	rec := Record{
		ID:      uuid.New(),
		Name:    Name(cmd),
		Applied: time.Now(),
		Command: cmd,
		Revert:  revert,
	}
	u.records = append(u.records, rec)
	if len(u.records) > MaxUndoDepth {
		u.records = u.records[len(u.records)-MaxUndoDepth:]
	}
	return rec.ID
}

// Pop reverses and removes the most recent command. Returns false when the
// stack is empty.
func (u *UndoStack) Pop() bool {
	n := len(u.records)
	if n == 0 {
		return false
	}
	rec := u.records[n-1]
	u.records = u.records[:n-1]
	if rec.Revert != nil {
		rec.Revert()
	}
	return true
}

// Depth is the number of undoable commands.
func (u *UndoStack) Depth() int {
	return len(u.records)
}

// History lists the recorded commands, oldest first.
func (u *UndoStack) History() []Record {
	out := make([]Record, len(u.records))
	copy(out, u.records)
	return out
}
