package bounce

import (
	"errors"
	"fmt"

	"github.com/taigrr/prism/pkg/scene"
)

// ErrHandlerPanic wraps the value recovered from a panicking ray handler.
var ErrHandlerPanic = errors.New("ray handler panicked")

// Phase names the handler that failed.
type Phase int

const (
	PhaseEnter Phase = iota
	PhaseMove
	PhaseExit
)

func (p Phase) String() string {
	switch p {
	case PhaseEnter:
		return "enter"
	case PhaseMove:
		return "move"
	case PhaseExit:
		return "exit"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// HandlerError reports a ray handler that returned an error or panicked.
type HandlerError struct {
	Phase  Phase
	Handle scene.Handle
	Name   string
	Err    error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s handler for %q (%s): %v", e.Phase, e.Name, e.Handle, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// invoke runs h, converting a returned error or a panic into a *HandlerError.
func invoke(phase Phase, h scene.RayHandler, e *scene.RayEvent) (err error) {
	if h == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = newHandlerError(phase, e.Object, fmt.Errorf("%w: %v", ErrHandlerPanic, r))
		}
	}()
	if herr := h(e); herr != nil {
		return newHandlerError(phase, e.Object, herr)
	}
	return nil
}

func newHandlerError(phase Phase, n *scene.Node, err error) *HandlerError {
	return &HandlerError{Phase: phase, Handle: n.Handle(), Name: n.Name, Err: err}
}
