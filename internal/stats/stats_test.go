package stats

import (
	"errors"
	"math/big"
	"testing"

	"github.com/alnah/go-itmd/internal/assemble"
	"github.com/alnah/go-itmd/internal/money"
)

func ev(base assemble.BaseType, kind assemble.TimeKind, prices ...string) *assemble.EventNode {
	e := &assemble.EventNode{
		BaseType: base,
		Time:     assemble.Time{Kind: kind},
		Prices:   map[string][]money.PriceNode{},
		Warnings: []string{},
	}
	for _, p := range prices {
		e.Prices["cost"] = append(e.Prices["cost"], money.NormalizePriceLine(p, ""))
	}
	return e
}

func rat(s string) *big.Rat {
	r, _ := new(big.Rat).SetString(s)
	return r
}

// ---------------------------------------------------------------------------
// TestCompute - Counts and totals
// ---------------------------------------------------------------------------

func TestCompute_CountsAndTotals(t *testing.T) {
	t.Parallel()

	stay := ev(assemble.BaseStay, assemble.TimeNone, "EUR 120.50")
	nodes := []assemble.Node{
		&assemble.HeadingNode{Index: 0, DateISO: "2024-03-10", Stays: []*assemble.EventNode{stay}},
		ev(assemble.BaseTransportation, assemble.TimePoint, "EUR 80 - EUR 10.25"),
		ev(assemble.BaseActivity, assemble.TimeRange, "¥1,200"),
		&assemble.HeadingNode{Index: 1, DateISO: "2024-03-11"},
	}

	s := Compute(nodes, nil)

	if s.Days != 2 || s.Events != 3 || s.Timed != 2 {
		t.Errorf("days/events/timed = %d/%d/%d", s.Days, s.Events, s.Timed)
	}
	want := []Total{
		{Currency: "EUR", Amount: "190.25", Scale: 2},
		{Currency: "JPY", Amount: "1200", Scale: 0},
	}
	if len(s.Totals) != len(want) {
		t.Fatalf("totals = %+v", s.Totals)
	}
	for i := range want {
		if s.Totals[i] != want[i] {
			t.Errorf("totals[%d] = %+v, want %+v", i, s.Totals[i], want[i])
		}
	}

	tr := s.ByBaseType[assemble.BaseTransportation]
	if tr == nil || tr.Events != 1 || len(tr.Totals) != 1 || tr.Totals[0].Amount != "69.75" {
		t.Errorf("transportation = %+v", tr)
	}
	if s.Converted != nil {
		t.Error("no conversion requested")
	}
}

func TestCompute_IgnoresNumbersWithoutCurrency(t *testing.T) {
	t.Parallel()

	flagged := ev(assemble.BaseActivity, assemble.TimeNone)
	flagged.Warnings = []string{assemble.WarnUnknownEventType}

	s := Compute([]assemble.Node{ev(assemble.BaseActivity, assemble.TimeNone, "around 40"), flagged}, nil)
	if len(s.Totals) != 0 {
		t.Errorf("totals = %+v, want none", s.Totals)
	}
	if s.WithIssues != 1 {
		t.Errorf("withWarnings = %d, want 1", s.WithIssues)
	}
}

func TestCompute_FailedMathAddsNothing(t *testing.T) {
	t.Parallel()

	s := Compute([]assemble.Node{
		ev(assemble.BaseActivity, assemble.TimeNone, "USD {1/0}"),
		ev(assemble.BaseActivity, assemble.TimeNone, "EUR {(2+3)/2}"),
	}, nil)
	if len(s.Totals) != 1 || s.Totals[0].Currency != "EUR" || s.Totals[0].Amount != "2.5" {
		t.Errorf("totals = %+v, want only EUR 2.5", s.Totals)
	}
	if s.WithIssues != 1 {
		t.Errorf("withWarnings = %d, want 1", s.WithIssues)
	}
}

// ---------------------------------------------------------------------------
// TestCompute - Conversion
// ---------------------------------------------------------------------------

func TestCompute_Conversion(t *testing.T) {
	t.Parallel()

	nodes := []assemble.Node{
		ev(assemble.BaseActivity, assemble.TimeNone, "EUR 10"),
		ev(assemble.BaseActivity, assemble.TimeNone, "USD 20"),
		ev(assemble.BaseActivity, assemble.TimeNone, "£5"),
	}
	conv := &Conversion{Target: "eur", Rates: Rates{"USD": rat("0.9")}}

	s := Compute(nodes, conv)

	if s.Converted == nil || s.Converted.Currency != "EUR" || s.Converted.Amount != "28" {
		t.Errorf("converted = %+v, want EUR 28", s.Converted)
	}
	if len(s.Warnings) != 1 || s.Warnings[0] != (Warning{Code: WarnMissingRate, Currency: "GBP"}) {
		t.Errorf("warnings = %+v", s.Warnings)
	}
}

func TestCompute_InvalidTargetSkipsConversion(t *testing.T) {
	t.Parallel()

	s := Compute([]assemble.Node{ev(assemble.BaseActivity, assemble.TimeNone, "EUR 10")}, &Conversion{Target: "EURO"})
	if s.Converted != nil {
		t.Errorf("converted = %+v, want nil", s.Converted)
	}
}

// ---------------------------------------------------------------------------
// TestParseRates - Flag syntax
// ---------------------------------------------------------------------------

func TestParseRates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pairs   []string
		wantErr bool
	}{
		{"valid", []string{"usd=0.92", "JPY=0.0061"}, false},
		{"missing equals", []string{"USD"}, true},
		{"unknown currency", []string{"XYZ1=1"}, true},
		{"not a number", []string{"USD=abc"}, true},
		{"zero", []string{"USD=0"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rates, err := ParseRates(tt.pairs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRates() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidRate) {
					t.Errorf("error = %v, want ErrInvalidRate", err)
				}
				return
			}
			if rates["USD"].Cmp(rat("0.92")) != 0 {
				t.Errorf("USD = %v", rates["USD"])
			}
		})
	}
}
