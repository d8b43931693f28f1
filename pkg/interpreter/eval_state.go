package interpreter

import (
	"cilisp/interpreter-go/pkg/ast"
	"cilisp/interpreter-go/pkg/runtime"
)

// activation holds the argument bindings of one custom operator call. Lookups that walk
// off the root of def.Body continue in scope.
type activation struct {
	id    int
	def   *ast.FunctionDefinition
	scope *ast.Scope
}

type bindingKey struct {
	binding *ast.Binding
	frame   int
}

type evalState struct {
	depth      int
	callStack  []*ast.OperatorCall
	frames     []*activation
	nextFrame  int
	inProgress map[bindingKey]int
	skipped    int // lookups that passed over an in-progress binding
	cache      *bindingCache
}

func newEvalState(memoize bool) *evalState {
	state := &evalState{inProgress: make(map[bindingKey]int)}
	if memoize {
		state.cache = newBindingCache()
	}
	return state
}

func (s *evalState) pushCallFrame(call *ast.OperatorCall) {
	s.callStack = append(s.callStack, call)
}

func (s *evalState) popCallFrame() {
	if len(s.callStack) > 0 {
		s.callStack = s.callStack[:len(s.callStack)-1]
	}
}

func (s *evalState) snapshotCallStack() []*ast.OperatorCall {
	if s == nil || len(s.callStack) == 0 {
		return nil
	}
	out := make([]*ast.OperatorCall, len(s.callStack))
	copy(out, s.callStack)
	return out
}

func (s *evalState) pushActivation(def *ast.FunctionDefinition, scope *ast.Scope) {
	s.nextFrame++
	s.frames = append(s.frames, &activation{id: s.nextFrame, def: def, scope: scope})
}

func (s *evalState) popActivation() {
	if len(s.frames) > 0 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

func (s *evalState) currentActivation() *activation {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// frameID identifies the active custom call; 0 is the top level.
func (s *evalState) frameID() int {
	if frame := s.currentActivation(); frame != nil {
		return frame.id
	}
	return 0
}

func (s *evalState) excluding(frame int) func(*ast.Binding) bool {
	return func(b *ast.Binding) bool {
		if s.inProgress[bindingKey{binding: b, frame: frame}] > 0 {
			s.skipped++
			return true
		}
		return false
	}
}

func (s *evalState) enterBinding(key bindingKey) {
	s.inProgress[key]++
}

func (s *evalState) leaveBinding(key bindingKey) {
	if s.inProgress[key] <= 1 {
		delete(s.inProgress, key)
		return
	}
	s.inProgress[key]--
}

// bindingCache memoises bound-expression results by binding identity and activation,
// so a binding evaluated under different arguments is never confused. Only values whose
// evaluation never skipped an in-progress binding are stored.
type bindingCache struct {
	values map[bindingKey]runtime.Result
}

func newBindingCache() *bindingCache {
	return &bindingCache{values: make(map[bindingKey]runtime.Result)}
}

func (c *bindingCache) get(key bindingKey) (runtime.Result, bool) {
	if c == nil {
		return runtime.Result{}, false
	}
	val, ok := c.values[key]
	return val, ok
}

func (c *bindingCache) put(key bindingKey, val runtime.Result) {
	if c == nil {
		return
	}
	c.values[key] = val
}
