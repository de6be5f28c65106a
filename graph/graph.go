// Package graph drives the tech tree: it owns the nodes and their ropes,
// runs the layout once, and moves nodes through the unlock state machine.
package graph

import (
	"sync"
)

// Ledger is the spendable currency balance. TrySpend must be atomic: it
// either deducts the full amount and returns true, or changes nothing.
type Ledger interface {
	Balance() float64
	TrySpend(amount float64) bool
}

// EffectApplier receives node effects when they unlock
type EffectApplier interface {
	ApplyFlatCpcBonus(amount float64)
	ApplyCpcMultiplier(factor float64)
	ApplyFlatCpsBonus(amount float64)
}

// Notifier receives the "graph changed" signal
type Notifier interface {
	GraphChanged()
}

// NotifierFunc adapts a plain function to Notifier
type NotifierFunc func()

// GraphChanged calls f
func (f NotifierFunc) GraphChanged() { f() }

type nopNotifier struct{}

func (nopNotifier) GraphChanged() {}

type nopEffects struct{}

func (nopEffects) ApplyFlatCpcBonus(float64)  {}
func (nopEffects) ApplyCpcMultiplier(float64) {}
func (nopEffects) ApplyFlatCpsBonus(float64)  {}

// Bus fans the "graph changed" signal out to any number of listeners
type Bus struct {
	listeners []func()
	mu        sync.Mutex
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a listener
func (b *Bus) Subscribe(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// GraphChanged calls every listener in subscription order
func (b *Bus) GraphChanged() {
	b.mu.Lock()
	listeners := make([]func(), len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
