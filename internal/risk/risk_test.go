package risk

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"auto-trader/internal/types"
)

func testConfig() Config {
	return Config{
		MaxPositionSize:        500,
		MaxTotalExposure:       2000,
		MaxDrawdown:            20,
		StopLossPercent:        5,
		TakeProfitPercent:      10,
		MaxDailyTrades:         10,
		MaxConcurrentPositions: 3,
	}
}

func longPosition(id string, entry, size float64) types.Position {
	return types.Position{
		ID:         id,
		Market:     "BTC-USD",
		Side:       types.SideLong,
		EntryPrice: entry,
		EntryTime:  time.Now().UnixMilli(),
		Size:       size,
	}
}

func TestCanOpenPositionSizeLimit(t *testing.T) {
	m := NewManager(testConfig(), 10000)
	dec := m.CanOpenPosition(501)
	if dec.Allowed {
		t.Fatal("Expected rejection above max position size")
	}
	if !strings.Contains(dec.Reason, "position size") {
		t.Errorf("Expected size reason, got %q", dec.Reason)
	}
	if dec = m.CanOpenPosition(500); !dec.Allowed {
		t.Errorf("Expected size at the limit to pass, got %q", dec.Reason)
	}
}

func TestCanOpenPositionExposureLimit(t *testing.T) {
	m := NewManager(testConfig(), 10000)
	m.AddPosition(longPosition("p1", 100, 500))
	m.AddPosition(longPosition("p2", 100, 500))
	m.AddPosition(longPosition("p3", 100, 500))

	// 1500 held, a further 500 reaches the 2000 cap exactly but the
	// concurrency limit of 3 is already saturated
	dec := m.CanOpenPosition(500)
	if dec.Allowed {
		t.Fatal("Expected rejection at concurrency limit")
	}
	if !strings.Contains(dec.Reason, "open positions") {
		t.Errorf("Expected concurrency reason, got %q", dec.Reason)
	}
}

func TestExposureCheckedBeforeConcurrency(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTotalExposure = 800
	m := NewManager(cfg, 10000)
	m.AddPosition(longPosition("p1", 100, 500))

	dec := m.CanOpenPosition(400)
	if dec.Allowed {
		t.Fatal("Expected rejection above max total exposure")
	}
	if !strings.Contains(dec.Reason, "exposure") {
		t.Errorf("Expected exposure reason, got %q", dec.Reason)
	}
}

func TestSingleConcurrentPosition(t *testing.T) {
	cfg := testConfig()
	cfg.MaxConcurrentPositions = 1
	m := NewManager(cfg, 10000)

	if dec := m.CanOpenPosition(100); !dec.Allowed {
		t.Fatalf("Expected first position admitted, got %q", dec.Reason)
	}
	m.AddPosition(longPosition("p1", 100, 100))

	// Any further size, however small, is rejected while one is open
	if dec := m.CanOpenPosition(1); dec.Allowed {
		t.Fatal("Expected rejection while a position is open")
	}

	if _, err := m.RemovePosition("p1", 100); err != nil {
		t.Fatal(err)
	}
	if dec := m.CanOpenPosition(100); !dec.Allowed {
		t.Errorf("Expected admission after close, got %q", dec.Reason)
	}
}

func TestDailyTradeLimitAndReset(t *testing.T) {
	cfg := testConfig()
	cfg.MaxDailyTrades = 2
	cfg.MaxConcurrentPositions = 10
	m := NewManager(cfg, 10000)

	day := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return day }

	m.CanOpenPosition(100) // primes lastTradeDate
	m.AddPosition(longPosition("p1", 100, 100))
	m.AddPosition(longPosition("p2", 100, 100))

	if dec := m.CanOpenPosition(100); dec.Allowed {
		t.Fatal("Expected rejection at daily trade limit")
	}

	m.now = func() time.Time { return day.AddDate(0, 0, 1) }
	if dec := m.CanOpenPosition(100); !dec.Allowed {
		t.Errorf("Expected counter reset on the next day, got %q", dec.Reason)
	}
}

func TestDrawdownLimit(t *testing.T) {
	cfg := testConfig()
	m := NewManager(cfg, 10000)

	// Lose 25% of the balance through one bad close
	m.AddPosition(longPosition("p1", 100, 25)) // pnl = priceDiff * size
	if _, err := m.RemovePosition("p1", 0); err != nil {
		t.Fatal(err)
	}
	if dd := m.Drawdown(); math.Abs(dd-25) > 1e-9 {
		t.Fatalf("Expected drawdown 25%%, got %f", dd)
	}
	if dec := m.CanOpenPosition(100); dec.Allowed {
		t.Fatal("Expected rejection above max drawdown")
	}
}

func TestDrawdownFromPeakNotInitial(t *testing.T) {
	m := NewManager(testConfig(), 10000)

	// Win first: balance 12000, peak 12000
	m.AddPosition(longPosition("w", 100, 20))
	if _, err := m.RemovePosition("w", 200); err != nil {
		t.Fatal(err)
	}
	if m.CurrentBalance() != 12000 {
		t.Fatalf("Expected balance 12000, got %f", m.CurrentBalance())
	}

	// Give back 1800: still above initial, but 15% off the peak
	m.AddPosition(longPosition("l", 100, 18))
	if _, err := m.RemovePosition("l", 0); err != nil {
		t.Fatal(err)
	}
	if dd := m.Drawdown(); math.Abs(dd-15) > 1e-9 {
		t.Errorf("Expected drawdown measured from peak to be 15%%, got %f", dd)
	}
}

func TestRemovePositionPnl(t *testing.T) {
	m := NewManager(testConfig(), 10000)

	m.AddPosition(longPosition("long", 100, 10))
	res, err := m.RemovePosition("long", 110)
	if err != nil {
		t.Fatal(err)
	}
	if res.Pnl != 100 {
		t.Errorf("Expected long pnl 100, got %f", res.Pnl)
	}
	if res.PnlPercent != 10 {
		t.Errorf("Expected pnl percent 10, got %f", res.PnlPercent)
	}

	short := longPosition("short", 100, 10)
	short.Side = types.SideShort
	m.AddPosition(short)
	res, err = m.RemovePosition("short", 110)
	if err != nil {
		t.Fatal(err)
	}
	if res.Pnl != -100 {
		t.Errorf("Expected short pnl -100, got %f", res.Pnl)
	}
	if m.CurrentBalance() != 10000 {
		t.Errorf("Expected the two trades to cancel, balance %f", m.CurrentBalance())
	}
}

func TestRemoveUnknownPosition(t *testing.T) {
	m := NewManager(testConfig(), 10000)
	_, err := m.RemovePosition("ghost", 100)
	if !errors.Is(err, ErrPositionNotFound) {
		t.Fatalf("Expected ErrPositionNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("Expected the id in the error, got %v", err)
	}
}

func TestCheckExitStopLossFirst(t *testing.T) {
	m := NewManager(testConfig(), 10000)
	m.AddPosition(longPosition("p", 100, 10))

	if chk := m.CheckExit("p", 96); chk.ShouldExit {
		t.Errorf("Expected no exit at -4%%, got %s", chk.Reason)
	}
	if chk := m.CheckExit("p", 95); !chk.ShouldExit || chk.Reason != types.ExitStopLoss {
		t.Errorf("Expected STOP_LOSS at -5%%, got %+v", chk)
	}
	if chk := m.CheckExit("p", 110); !chk.ShouldExit || chk.Reason != types.ExitTakeProfit {
		t.Errorf("Expected TAKE_PROFIT at +10%%, got %+v", chk)
	}
}

func TestCheckExitShortSide(t *testing.T) {
	m := NewManager(testConfig(), 10000)
	p := longPosition("s", 100, 10)
	p.Side = types.SideShort
	m.AddPosition(p)

	if chk := m.CheckExit("s", 105); !chk.ShouldExit || chk.Reason != types.ExitStopLoss {
		t.Errorf("Expected short STOP_LOSS on a rise, got %+v", chk)
	}
	if chk := m.CheckExit("s", 90); !chk.ShouldExit || chk.Reason != types.ExitTakeProfit {
		t.Errorf("Expected short TAKE_PROFIT on a fall, got %+v", chk)
	}
	if chk := m.CheckExit("missing", 90); chk.ShouldExit {
		t.Error("Expected no exit for unknown id")
	}
}

func TestExposureInvariantUnderRandomFlow(t *testing.T) {
	cfg := testConfig()
	cfg.MaxDailyTrades = 1 << 30
	m := NewManager(cfg, 1e9) // balance large enough to never trip drawdown
	rng := rand.New(rand.NewSource(42))

	open := []string{}
	realized := 0.0
	for i := 0; i < 500; i++ {
		if rng.Intn(2) == 0 && len(open) > 0 {
			id := open[rng.Intn(len(open))]
			res, err := m.RemovePosition(id, 100+rng.Float64()*10-5)
			if err != nil {
				t.Fatal(err)
			}
			realized += res.Pnl
			for j, v := range open {
				if v == id {
					open = append(open[:j], open[j+1:]...)
					break
				}
			}
			continue
		}
		size := rng.Float64() * 600
		dec := m.CanOpenPosition(size)
		if dec.Allowed {
			id := fmt.Sprintf("p%d", i)
			m.AddPosition(longPosition(id, 100, size))
			open = append(open, id)
		}
		if exp := m.TotalExposure(); exp > cfg.MaxTotalExposure {
			t.Fatalf("Exposure %f exceeded limit after %d steps", exp, i)
		}
		if len(open) > cfg.MaxConcurrentPositions {
			t.Fatalf("Open positions %d exceeded limit", len(open))
		}
	}

	// Balance round-trip: every realized pnl and nothing else
	if got := m.CurrentBalance() - 1e9; math.Abs(got-realized) > 1e-6 {
		t.Errorf("Expected balance drift %f to equal realized pnl %f", got, realized)
	}
}

func TestPositionsOrderedByEntryTime(t *testing.T) {
	m := NewManager(testConfig(), 10000)
	a := longPosition("a", 100, 10)
	a.EntryTime = 300
	b := longPosition("b", 100, 10)
	b.EntryTime = 100
	c := longPosition("c", 100, 10)
	c.EntryTime = 100
	m.AddPosition(a)
	m.AddPosition(c)
	m.AddPosition(b)

	got := m.Positions()
	want := []string{"b", "c", "a"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("Expected order %v, got %v %v %v", want, got[0].ID, got[1].ID, got[2].ID)
		}
	}
}

func TestStatusSnapshot(t *testing.T) {
	m := NewManager(testConfig(), 10000)
	m.AddPosition(longPosition("p", 100, 300))
	st := m.Status()
	if st.OpenPositions != 1 || st.TotalExposure != 300 {
		t.Errorf("Unexpected snapshot %+v", st)
	}
	if st.AvailableExposure != 1700 {
		t.Errorf("Expected available exposure 1700, got %f", st.AvailableExposure)
	}
	if st.TotalPnl != 0 {
		t.Errorf("Expected zero pnl, got %f", st.TotalPnl)
	}
}

func TestKellyPosition(t *testing.T) {
	m := NewManager(testConfig(), 10000)

	if got := m.KellyPosition(0.6, 0, 50); got != 0 {
		t.Errorf("Expected zero size with degenerate avg win, got %f", got)
	}
	if got := m.KellyPosition(0.6, 50, 0); got != 0 {
		t.Errorf("Expected zero size with degenerate avg loss, got %f", got)
	}
	if got := m.KellyPosition(0.1, 50, 100); got != 0 {
		t.Errorf("Expected negative Kelly floored at zero, got %f", got)
	}
	// Strong edge: capped at max position size
	if got := m.KellyPosition(0.9, 200, 50); got != 500 {
		t.Errorf("Expected cap at 500, got %f", got)
	}
	// Moderate edge stays within (0, cap)
	got := m.KellyPosition(0.55, 100, 100)
	// kelly = 0.55 - 0.45 = 0.10, half = 0.05, size = 500 -> at cap
	if got != 500 {
		t.Errorf("Expected 500, got %f", got)
	}
	got = m.KellyPosition(0.51, 100, 100)
	// kelly = 0.02, half = 0.01, size = 100
	if math.Abs(got-100) > 1e-9 {
		t.Errorf("Expected 100, got %f", got)
	}
}
