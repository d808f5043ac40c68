package risk

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func defaultPercents() Percents {
	return Percents{
		StopLoss:        decimal.RequireFromString("2.0"),
		TakeProfit:      decimal.RequireFromString("3.0"),
		TrailingStop:    decimal.RequireFromString("1.5"),
		TrailingEnabled: true,
	}
}

func TestCalculateLevels(t *testing.T) {
	tests := []struct {
		name         string
		side         string
		price        *decimal.Decimal
		stopLoss     *decimal.Decimal
		takeProfit   *decimal.Decimal
		percents     Percents
		wantSL       string
		wantSLSource string
		wantTP       string
		wantTPSource string
		wantTrailing string
	}{
		{
			name:         "buy computes below and above price",
			side:         "BUY",
			price:        dec("100"),
			percents:     defaultPercents(),
			wantSL:       "98",
			wantSLSource: SourceComputed,
			wantTP:       "103",
			wantTPSource: SourceComputed,
			wantTrailing: "1.5",
		},
		{
			name:         "sell mirrors the levels",
			side:         "sell",
			price:        dec("200"),
			percents:     defaultPercents(),
			wantSL:       "204",
			wantSLSource: SourceComputed,
			wantTP:       "194",
			wantTPSource: SourceComputed,
			wantTrailing: "3",
		},
		{
			name:         "signal levels win",
			side:         "BUY",
			price:        dec("100"),
			stopLoss:     dec("90"),
			takeProfit:   dec("120"),
			percents:     defaultPercents(),
			wantSL:       "90",
			wantSLSource: SourceSignal,
			wantTP:       "120",
			wantTPSource: SourceSignal,
			wantTrailing: "1.5",
		},
		{
			name:         "no price keeps signal levels only",
			side:         "BUY",
			stopLoss:     dec("95"),
			percents:     defaultPercents(),
			wantSL:       "95",
			wantSLSource: SourceSignal,
		},
		{
			name:  "trailing disabled and zero percents",
			side:  "BUY",
			price: dec("100"),
			percents: Percents{
				StopLoss:     decimal.Zero,
				TakeProfit:   decimal.RequireFromString("5"),
				TrailingStop: decimal.RequireFromString("1"),
			},
			wantTP:       "105",
			wantTPSource: SourceComputed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateLevels(tt.side, tt.price, tt.stopLoss, tt.takeProfit, tt.percents)

			checkLevel(t, "stop loss", got.StopLoss, tt.wantSL)
			checkLevel(t, "take profit", got.TakeProfit, tt.wantTP)
			checkLevel(t, "trailing", got.TrailingDistance, tt.wantTrailing)

			if got.StopLossSource != tt.wantSLSource {
				t.Fatalf("stop loss source = %q, want %q", got.StopLossSource, tt.wantSLSource)
			}
			if got.TakeProfitSource != tt.wantTPSource {
				t.Fatalf("take profit source = %q, want %q", got.TakeProfitSource, tt.wantTPSource)
			}
		})
	}
}

func TestCalculateLevels_Empty(t *testing.T) {
	got := CalculateLevels("BUY", nil, nil, nil, defaultPercents())
	if !got.Empty() {
		t.Fatalf("expected no levels, got %+v", got)
	}

	got = CalculateLevels("BUY", dec("0"), nil, nil, defaultPercents())
	if !got.Empty() {
		t.Fatalf("expected no levels for zero price, got %+v", got)
	}
}

func checkLevel(t *testing.T, name string, got *decimal.Decimal, want string) {
	t.Helper()
	if want == "" {
		if got != nil {
			t.Fatalf("%s = %s, want none", name, got)
		}
		return
	}
	if got == nil {
		t.Fatalf("%s missing, want %s", name, want)
	}
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s = %s, want %s", name, got, want)
	}
}
