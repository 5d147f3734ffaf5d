package model

import "testing"

func TestValueKeyIsTypeSensitive(t *testing.T) {
	groups := map[Value]int{
		TextValue("001"): 1,
		NumberValue(1):   2,
	}
	if len(groups) != 2 {
		t.Fatalf("len=%d, want 2", len(groups))
	}
	if groups[TextValue("001")] != 1 || groups[NumberValue(1)] != 2 {
		t.Fatalf("unexpected lookup result: %v", groups)
	}
	if TextValue("1") == NumberValue(1) {
		t.Fatalf("text and number must not compare equal")
	}
}

func TestValueFloat(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want float64
		ok   bool
	}{
		{"number", NumberValue(12.5), 12.5, true},
		{"numeric text", TextValue(" 8 "), 8, true},
		{"non numeric text", TextValue("abc"), 0, false},
		{"nan text", TextValue("NaN"), 0, false},
		{"empty", EmptyValue(), 0, false},
		{"bool", BoolValue(true), 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.v.Float()
			if ok != tc.ok || got != tc.want {
				t.Fatalf("Float()=(%v,%v), want (%v,%v)", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestValueString(t *testing.T) {
	if got := NumberValue(3000).String(); got != "3000" {
		t.Fatalf("number String()=%q", got)
	}
	if got := NumberValue(0.25).String(); got != "0.25" {
		t.Fatalf("fraction String()=%q", got)
	}
	if got := BoolValue(false).String(); got != "FALSE" {
		t.Fatalf("bool String()=%q", got)
	}
	if got := EmptyValue().Interface(); got != nil {
		t.Fatalf("empty Interface()=%v, want nil", got)
	}
}

func TestRowSetExtendsAndCloneIsIndependent(t *testing.T) {
	row := Row{Number: 2, Cells: []Cell{{Value: TextValue("E1")}}}
	row.Set(3, Cell{Value: NumberValue(5), Style: 7})
	if len(row.Cells) != 4 {
		t.Fatalf("len(Cells)=%d, want 4", len(row.Cells))
	}
	if !row.Value(2).IsEmpty() || !row.Value(10).IsEmpty() {
		t.Fatalf("gap and out-of-range cells must be empty")
	}

	clone := row.Clone()
	clone.Set(0, Cell{Value: TextValue("E2")})
	if row.Value(0) != TextValue("E1") {
		t.Fatalf("Clone shares cells with original")
	}
	if clone.Cell(3).Style != 7 {
		t.Fatalf("Clone lost style, got %d", clone.Cell(3).Style)
	}
}

func TestErrorMessagesCarryContext(t *testing.T) {
	err := &DataError{Sheet: "工时", Row: 4, Column: "实际出勤", Message: "project hours is not numeric"}
	want := `data error: sheet "工时": row 4: column "实际出勤": project hours is not numeric`
	if got := err.Error(); got != want {
		t.Fatalf("Error()=%q, want %q", got, want)
	}

	cfgErr := &ConfigurationError{Field: "input.path", Message: "required field is missing"}
	if got := cfgErr.Error(); got != `configuration error: field "input.path": required field is missing` {
		t.Fatalf("Error()=%q", got)
	}
}

func TestParseZeroHoursPolicy(t *testing.T) {
	for in, want := range map[string]ZeroHoursPolicy{
		"":            ZeroHoursPassThrough,
		"passthrough": ZeroHoursPassThrough,
		"reject":      ZeroHoursReject,
	} {
		got, err := ParseZeroHoursPolicy(in)
		if err != nil || got != want {
			t.Fatalf("ParseZeroHoursPolicy(%q)=(%q,%v), want %q", in, got, err, want)
		}
	}
	if _, err := ParseZeroHoursPolicy("skip"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
