package session

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// PointerEvent is a pointer position in screen coordinates.
type PointerEvent struct {
	X, Y  float64
	Shift bool
}

// Vec returns the position as a vector.
func (e PointerEvent) Vec() r2.Vec { return r2.Vec{X: e.X, Y: e.Y} }

// EventSource delivers pointer movement and release to listeners acquired
// for the duration of a gesture. Each registration returns its release
// function; calling it more than once is harmless.
type EventSource interface {
	OnPointerMove(fn func(PointerEvent)) (release func())
	OnPointerUp(fn func(PointerEvent)) (release func())
}

// Dispatcher is an in-memory EventSource for headless hosts and tests.
// Listeners run in registration order.
type Dispatcher struct {
	next int
	move map[int]func(PointerEvent)
	up   map[int]func(PointerEvent)
}

// NewDispatcher returns a Dispatcher with no listeners.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		move: make(map[int]func(PointerEvent)),
		up:   make(map[int]func(PointerEvent)),
	}
}

func (d *Dispatcher) OnPointerMove(fn func(PointerEvent)) func() {
	return d.add(d.move, fn)
}

func (d *Dispatcher) OnPointerUp(fn func(PointerEvent)) func() {
	return d.add(d.up, fn)
}

func (d *Dispatcher) add(set map[int]func(PointerEvent), fn func(PointerEvent)) func() {
	id := d.next
	d.next++
	set[id] = fn
	return func() { delete(set, id) }
}

// Move delivers a pointer move.
func (d *Dispatcher) Move(x, y float64) { d.fire(d.move, PointerEvent{X: x, Y: y}) }

// Up delivers a pointer release.
func (d *Dispatcher) Up(x, y float64) { d.fire(d.up, PointerEvent{X: x, Y: y}) }

// fire snapshots the listener set so handlers may release themselves.
func (d *Dispatcher) fire(set map[int]func(PointerEvent), e PointerEvent) {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if fn, ok := set[id]; ok {
			fn(e)
		}
	}
}

// Listeners returns the number of registered listeners.
func (d *Dispatcher) Listeners() int { return len(d.move) + len(d.up) }
