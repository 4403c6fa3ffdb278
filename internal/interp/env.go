package interp

import "fmt"

// environment is a stack of lexical frames mapping names to values.
// The base frame is never popped.
type environment struct {
	frames []map[string]Value
}

func newEnvironment() *environment {
	return &environment{frames: []map[string]Value{{}}}
}

func (e *environment) push() {
	e.frames = append(e.frames, map[string]Value{})
}

func (e *environment) pop() {
	if len(e.frames) > 1 {
		e.frames = e.frames[:len(e.frames)-1]
	}
}

// declare binds name in the innermost frame, replacing any existing
// binding in that frame.
func (e *environment) declare(name string, v Value) {
	e.frames[len(e.frames)-1][name] = v
}

// set assigns to the nearest enclosing binding of name.
func (e *environment) set(name string, v Value) error {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if _, ok := e.frames[i][name]; ok {
			e.frames[i][name] = v
			return nil
		}
	}
	return fmt.Errorf("Variable '%s' not found", name)
}

// get resolves name against the innermost frame first.
func (e *environment) get(name string) (Value, error) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if v, ok := e.frames[i][name]; ok {
			return v, nil
		}
	}
	return Void, fmt.Errorf("Variable '%s' not found", name)
}
