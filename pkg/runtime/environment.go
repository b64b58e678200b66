package runtime

import "sort"

type frame map[string]Expression

// Environment is a stack of scope frames. The bottom frame is global.
type Environment struct {
	frames []frame
}

// NewEnvironment returns an environment with no frames. Push one before Insert.
func NewEnvironment() *Environment {
	return &Environment{}
}

// Push appends an empty frame.
func (e *Environment) Push() {
	e.frames = append(e.frames, make(frame))
}

// Pop removes the top frame. Popping an empty stack does nothing.
func (e *Environment) Pop() {
	if len(e.frames) == 0 {
		return
	}
	e.frames[len(e.frames)-1] = nil
	e.frames = e.frames[:len(e.frames)-1]
}

// Depth reports the number of active frames.
func (e *Environment) Depth() int {
	return len(e.frames)
}

// Insert binds name in the top frame only, overwriting an existing binding there.
func (e *Environment) Insert(name string, value Expression) {
	if len(e.frames) == 0 {
		panic("runtime: insert into environment with no frames")
	}
	e.frames[len(e.frames)-1][name] = value
}

// Lookup searches frames innermost first.
func (e *Environment) Lookup(name string) (Expression, bool) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if v, ok := e.frames[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Names returns the top frame's bindings in sorted order.
func (e *Environment) Names() []string {
	if len(e.frames) == 0 {
		return nil
	}
	top := e.frames[len(e.frames)-1]
	keys := make([]string, 0, len(top))
	for k := range top {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
