package scene

import "github.com/philipparndt/goresin/pkg/geometry"

// Action is an undoable scene mutation
type Action interface {
	// Execute applies the mutation
	Execute()
	// Undo restores the state from before Execute
	Undo()
}

// SetPositionAction moves a body
type SetPositionAction struct {
	Body     *Body
	To       geometry.Vector3
	previous geometry.Vector3
}

func (a *SetPositionAction) Execute() {
	a.previous = a.Body.Position()
	a.Body.SetPosition(a.To)
}

func (a *SetPositionAction) Undo() {
	a.Body.SetPosition(a.previous)
}

// SetRotationAction rotates a body, angles in degrees
type SetRotationAction struct {
	Body     *Body
	To       geometry.Vector3
	previous geometry.Vector3
}

func (a *SetRotationAction) Execute() {
	a.previous = a.Body.Rotation()
	a.Body.SetRotation(a.To)
}

func (a *SetRotationAction) Undo() {
	a.Body.SetRotation(a.previous)
}

// SetScaleAction scales a body
type SetScaleAction struct {
	Body     *Body
	To       geometry.Vector3
	previous geometry.Vector3
}

func (a *SetScaleAction) Execute() {
	a.previous = a.Body.Scale()
	a.Body.SetScale(a.To)
}

func (a *SetScaleAction) Undo() {
	a.Body.SetScale(a.previous)
}

// History is an undo/redo stack of executed actions. Pushing a new action
// clears the redo side.
type History struct {
	undo []Action
	redo []Action
}

// Push executes the action and records it for undo
func (h *History) Push(a Action) {
	a.Execute()
	h.undo = append(h.undo, a)
	h.redo = nil
}

// Undo reverts the most recent action, if any
func (h *History) Undo() bool {
	if len(h.undo) == 0 {
		return false
	}
	a := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	a.Undo()
	h.redo = append(h.redo, a)
	return true
}

// Redo re-applies the most recently undone action, if any
func (h *History) Redo() bool {
	if len(h.redo) == 0 {
		return false
	}
	a := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	a.Execute()
	h.undo = append(h.undo, a)
	return true
}

// CanUndo reports whether an action is available to undo
func (h *History) CanUndo() bool {
	return len(h.undo) > 0
}

// CanRedo reports whether an undone action is available to redo
func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}
