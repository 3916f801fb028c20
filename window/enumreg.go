package window

import "sync"

// enumState は列挙1回分の状態です。
type enumState struct {
	visit   func(Handle) bool
	stopped bool
}

// enumRegistry は列挙中の enumState を番号で引けるようにします。
// EnumWindows の lParam にはポインタではなくこの番号を渡します。
type enumRegistry struct {
	mu     sync.Mutex
	next   uintptr
	states map[uintptr]*enumState
}

var enums = &enumRegistry{}

// add は st を登録し、0 以外の番号を返します。
func (r *enumRegistry) add(st *enumState) uintptr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.states == nil {
		r.states = make(map[uintptr]*enumState)
	}
	r.next++
	if r.next == 0 {
		r.next = 1
	}
	r.states[r.next] = st
	return r.next
}

func (r *enumRegistry) get(id uintptr) *enumState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[id]
}

func (r *enumRegistry) remove(id uintptr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, id)
}

// step はコールバック1回分の処理です。続行なら true を返します。
// 登録されていない番号では列挙を止めます。
func (r *enumRegistry) step(id uintptr, h Handle) bool {
	st := r.get(id)
	if st == nil {
		return false
	}
	if !st.visit(h) {
		st.stopped = true
		return false
	}
	return true
}
