package economy

import (
	"math"
	"testing"
)

func TestWalletTrySpend(t *testing.T) {
	w := NewWallet(10)

	if !w.TrySpend(10) {
		t.Fatal("spending the full balance should succeed")
	}
	if w.Balance() != 0 {
		t.Errorf("expected balance 0, got %v", w.Balance())
	}

	tests := []struct {
		name   string
		amount float64
	}{
		{"over balance", 3.5},
		{"negative", -5},
		{"nan", math.NaN()},
		{"infinite", math.Inf(1)},
	}
	w.Earn(3)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w.TrySpend(tt.amount) {
				t.Errorf("TrySpend(%v) should fail", tt.amount)
			}
			if w.Balance() != 3 {
				t.Errorf("balance changed to %v", w.Balance())
			}
		})
	}

	earned, spent := w.Totals()
	if earned != 3 || spent != 10 {
		t.Errorf("expected totals 3/10, got %v/%v", earned, spent)
	}
}

func TestWalletIgnoresInvalidAmounts(t *testing.T) {
	w := NewWallet(-4)
	if w.Balance() != 0 {
		t.Errorf("negative start should clamp to 0, got %v", w.Balance())
	}

	w.Earn(-1)
	w.Earn(math.NaN())
	if w.Balance() != 0 {
		t.Errorf("invalid earnings changed balance to %v", w.Balance())
	}
}

func TestStatsEffects(t *testing.T) {
	s := NewStats(1)
	w := NewWallet(0)

	if got := Click(w, s); got != 1 {
		t.Errorf("expected base click 1, got %v", got)
	}

	s.ApplyFlatCpcBonus(2)
	s.ApplyCpcMultiplier(2)
	s.ApplyCpcMultiplier(1.5)
	if got := s.ClickValue(); got != 9 {
		t.Errorf("expected (1+2)*3 = 9, got %v", got)
	}

	s.ApplyFlatCpsBonus(4)
	if got := Accrue(w, s, 0.5); got != 2 {
		t.Errorf("expected 2 accrued, got %v", got)
	}
	if got := Accrue(w, s, 0); got != 0 {
		t.Errorf("zero dt should accrue nothing, got %v", got)
	}
	if got := Accrue(w, s, -1); got != 0 {
		t.Errorf("negative dt should accrue nothing, got %v", got)
	}

	if w.Balance() != 3 {
		t.Errorf("expected balance 3, got %v", w.Balance())
	}
}
