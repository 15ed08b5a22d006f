package model

import (
	"errors"
	"testing"
)

func TestAnswerSheetSet(t *testing.T) {
	qs := validSet()

	tests := []struct {
		name    string
		idx     int
		value   string
		wantErr bool
	}{
		{name: "valid answer", idx: 0, value: "4"},
		{name: "negative index", idx: -1, value: "4", wantErr: true},
		{name: "index out of range", idx: 2, value: "4", wantErr: true},
		{name: "option not offered", idx: 0, value: "5", wantErr: true},
		{name: "option from another question", idx: 0, value: "Paris", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sheet := AnswerSheet{}
			err := sheet.Set(qs, tc.idx, tc.value)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidAnswer) {
					t.Fatalf("Set() error = %v, want ErrInvalidAnswer", err)
				}
				if len(sheet) != 0 {
					t.Error("Set() recorded an invalid answer")
				}
				return
			}
			if err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if sheet[tc.idx] != tc.value {
				t.Errorf("sheet[%d] = %q, want %q", tc.idx, sheet[tc.idx], tc.value)
			}
		})
	}
}

func TestAnswerSheetIsComplete(t *testing.T) {
	qs := validSet()
	sheet := AnswerSheet{}

	if sheet.IsComplete(qs) {
		t.Error("empty sheet reported complete")
	}
	if err := sheet.Set(qs, 0, "4"); err != nil {
		t.Fatal(err)
	}
	if sheet.IsComplete(qs) {
		t.Error("half-filled sheet reported complete")
	}
	if err := sheet.Set(qs, 1, "Rome"); err != nil {
		t.Fatal(err)
	}
	if !sheet.IsComplete(qs) {
		t.Error("full sheet reported incomplete")
	}
}

func TestAnswerSheetWireRoundTrip(t *testing.T) {
	qs := validSet()
	sheet := AnswerSheet{0: "4", 1: "Paris"}

	wire := sheet.Wire()
	if wire["0"] != "4" || wire["1"] != "Paris" {
		t.Fatalf("Wire() = %v", wire)
	}

	back := SheetFromWire(qs, wire)
	if len(back) != 2 || back[0] != "4" || back[1] != "Paris" {
		t.Errorf("SheetFromWire() = %v", back)
	}
}

func TestSheetFromWireDropsInvalidEntries(t *testing.T) {
	qs := validSet()
	wire := map[string]string{
		"0":   "4",
		"1":   "Berlin", // not an option anymore
		"9":   "4",      // out of range
		"abc": "4",      // not an index
	}

	sheet := SheetFromWire(qs, wire)
	if len(sheet) != 1 || sheet[0] != "4" {
		t.Errorf("SheetFromWire() = %v, want only index 0", sheet)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := AnswerSheet{0: "4"}
	cp := orig.Clone()
	cp[1] = "Paris"

	if len(orig) != 1 {
		t.Error("Clone() shares storage with the original")
	}
}
