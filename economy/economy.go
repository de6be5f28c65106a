// Package economy holds the in-process currency ledger and the click/income
// stats that node effects modify.
package economy

import (
	"math"
	"sync"
)

// Wallet is a currency ledger. All mutations go through Earn and TrySpend.
type Wallet struct {
	balance float64
	earned  float64
	spent   float64
	mu      sync.Mutex
}

// NewWallet creates a wallet with a starting balance
func NewWallet(initial float64) *Wallet {
	if !validAmount(initial) {
		initial = 0
	}
	return &Wallet{balance: initial}
}

// Balance returns the spendable balance
func (w *Wallet) Balance() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

// TrySpend deducts amount if the balance covers it. Otherwise, or for a
// negative or non-finite amount, nothing changes and it returns false.
func (w *Wallet) TrySpend(amount float64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !validAmount(amount) || amount > w.balance {
		return false
	}
	w.balance -= amount
	w.spent += amount
	return true
}

// Earn credits amount to the balance. Invalid amounts are ignored.
func (w *Wallet) Earn(amount float64) {
	if !validAmount(amount) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balance += amount
	w.earned += amount
}

// Totals returns the lifetime earned and spent amounts
func (w *Wallet) Totals() (earned, spent float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.earned, w.spent
}

func validAmount(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Stats is the click and passive income state that node effects modify
type Stats struct {
	BaseClick  float64
	FlatClick  float64
	Multiplier float64
	PerSec     float64
	mu         sync.Mutex
}

// NewStats creates stats with the given base click value
func NewStats(baseClick float64) *Stats {
	return &Stats{BaseClick: baseClick, Multiplier: 1}
}

// ApplyFlatCpcBonus adds a flat bonus to every click
func (s *Stats) ApplyFlatCpcBonus(amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FlatClick += amount
}

// ApplyCpcMultiplier multiplies the click value
func (s *Stats) ApplyCpcMultiplier(factor float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Multiplier *= factor
}

// ApplyFlatCpsBonus adds passive income per second
func (s *Stats) ApplyFlatCpsBonus(amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.PerSec += amount
}

// ClickValue returns the currency earned by one click
func (s *Stats) ClickValue() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (s.BaseClick + s.FlatClick) * s.Multiplier
}

// PerSecond returns the passive income rate
func (s *Stats) PerSecond() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.PerSec
}

// Click credits one click to the wallet and returns the amount earned
func Click(w *Wallet, s *Stats) float64 {
	v := s.ClickValue()
	w.Earn(v)
	return v
}

// Accrue credits passive income for dt seconds and returns the amount
func Accrue(w *Wallet, s *Stats, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	v := s.PerSecond() * dt
	w.Earn(v)
	return v
}
