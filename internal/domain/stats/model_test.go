package stats

import "testing"

func TestFromRaw_SplitsKnownAndExtra(t *testing.T) {
	t.Parallel()

	line := FromRaw(map[string]any{
		"pts":          27.4,
		"min":          "34:12",
		"fg_pct":       0.512,
		"pct_uast_fgm": 0.31,
		"nested":       map[string]any{"x": 1},
		"  TURNOVER  ": 3.0,
	})

	if v, ok := line.Get(Points); !ok || v.String() != "27.4" {
		t.Fatalf("unexpected pts: %+v ok=%v", v, ok)
	}
	if v, ok := line.Get(Minutes); !ok || !v.IsText || v.String() != "34:12" {
		t.Fatalf("unexpected min: %+v", v)
	}
	if _, ok := line.Get(Turnovers); !ok {
		t.Fatalf("expected turnover to be parsed as known key")
	}
	if _, ok := line.Extra["pct_uast_fgm"]; !ok {
		t.Fatalf("expected extension field, got %+v", line.Extra)
	}
	if _, ok := line.Extra["nested"]; ok {
		t.Fatalf("non scalar values must be dropped")
	}
	if names := line.ExtraNames(); len(names) != 1 || names[0] != "pct_uast_fgm" {
		t.Fatalf("unexpected extra names: %v", names)
	}
}

func TestValue_String(t *testing.T) {
	t.Parallel()

	cases := map[Value]string{
		Number(25):     "25",
		Number(0.4789): "0.4789",
		Number(-3.5):   "-3.5",
		Text("DNP"):    "DNP",
	}
	for v, want := range cases {
		if got := v.String(); got != want {
			t.Fatalf("String()=%q want %q", got, want)
		}
	}
}

func TestQueryNormalize(t *testing.T) {
	t.Parallel()

	q := PlayerQuery{TeamID: 1}.Normalize()
	if q.SeasonType != SeasonTypeRegular || q.Category != CategoryGeneral {
		t.Fatalf("unexpected defaults: %+v", q)
	}
	tq := TeamQuery{TeamID: 1, SeasonType: SeasonTypePlayoffs}.Normalize()
	if tq.SeasonType != SeasonTypePlayoffs || tq.Category != CategoryGeneral {
		t.Fatalf("unexpected defaults: %+v", tq)
	}
}
