package framing

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"
)

func seq(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func TestHeredoc_ExactRecords(t *testing.T) {
	var buf bytes.Buffer
	err := Heredoc(&buf, "data0", slices.Values(seq(6)), Layout{Fields: 2, Records: Exactly(3)})
	if err != nil {
		t.Fatalf("Heredoc() error: %v", err)
	}
	want := "$data0 << EOD\n" +
		"1 2\n" +
		"3 4\n" +
		"5 6\n" +
		"\n" +
		"EOD\n"
	if buf.String() != want {
		t.Errorf("got:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestHeredoc_CountMismatch(t *testing.T) {
	const fields, records = 3, 4

	tests := []struct {
		name    string
		n       int
		wantErr error
	}{
		{"one short", fields*records - 1, ErrInsufficientData},
		{"one extra", fields*records + 1, ErrExcessData},
		{"a whole record extra", fields*records + fields, ErrExcessData},
		{"empty record", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Heredoc(&buf, "d", slices.Values(seq(tt.n)), Layout{Fields: fields, Records: Exactly(records)})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got error %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil && buf.Len() != 0 {
				t.Errorf("failed heredoc wrote %d bytes, want none", buf.Len())
			}
		})
	}
}

func TestHeredoc_UnboundedRecords(t *testing.T) {
	got, err := AppendHeredoc(nil, "line", slices.Values([]float64{0.5, 1.25, -2}), Columns(1))
	if err != nil {
		t.Fatalf("AppendHeredoc() error: %v", err)
	}
	want := "$line << EOD\n0.5\n1.25\n-2\n\nEOD\n"
	if string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHeredoc_PartialTrailingRecordIsExcess(t *testing.T) {
	_, err := AppendHeredoc(nil, "xy", slices.Values(seq(5)), Columns(2))
	if !errors.Is(err, ErrExcessData) {
		t.Fatalf("got %v, want ErrExcessData", err)
	}
	_, err = AppendHeredoc(nil, "xy", slices.Values(seq(1)), Columns(2))
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("got %v, want ErrInsufficientData", err)
	}
}

func TestHeredoc_GridBlocks(t *testing.T) {
	// 2x2 grid of (x, y, z): one block per x.
	values := []float64{
		0, 0, 10,
		0, 1, 11,
		1, 0, 20,
		1, 1, 21,
	}
	got, err := AppendHeredoc(nil, "grid", slices.Values(values), GridLayout(3, 2))
	if err != nil {
		t.Fatalf("AppendHeredoc() error: %v", err)
	}
	want := "$grid << EOD\n" +
		"0 0 10\n0 1 11\n\n" +
		"1 0 20\n1 1 21\n\n" +
		"EOD\n"
	if string(got) != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestHeredoc_Frames(t *testing.T) {
	layout := Layout{Fields: 1, Records: Exactly(2), Blocks: Exactly(1)}
	got, err := AppendHeredoc(nil, "anim", slices.Values(seq(4)), layout)
	if err != nil {
		t.Fatalf("AppendHeredoc() error: %v", err)
	}
	// Frames are separated by two blank lines in total.
	want := "$anim << EOD\n1\n2\n\n\n3\n4\n\nEOD\n"
	if string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHeredoc_AllBounded(t *testing.T) {
	layout := Layout{Fields: 1, Records: Exactly(2), Blocks: Exactly(2), Frames: Exactly(1)}
	if total, ok := layout.Total(); !ok || total != 4 {
		t.Fatalf("Total() = %d, %v", total, ok)
	}

	if _, err := AppendHeredoc(nil, "d", slices.Values(seq(4)), layout); err != nil {
		t.Fatalf("exact input: %v", err)
	}
	if _, err := AppendHeredoc(nil, "d", slices.Values(seq(5)), layout); !errors.Is(err, ErrExcessData) {
		t.Errorf("surplus: got %v, want ErrExcessData", err)
	}
	if _, err := AppendHeredoc(nil, "d", slices.Values(seq(3)), layout); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("deficit: got %v, want ErrInsufficientData", err)
	}
	// Exhausted at the start of a bounded block.
	if _, err := AppendHeredoc(nil, "d", slices.Values(seq(2)), Layout{Fields: 1, Blocks: Exactly(2)}); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("empty bounded block: got %v, want ErrInsufficientData", err)
	}
}

func TestHeredoc_StopsPullingAfterSurplus(t *testing.T) {
	pulled := 0
	infinite := func(yield func(float64) bool) {
		for {
			pulled++
			if !yield(1) {
				return
			}
		}
	}
	layout := Layout{Fields: 1, Records: Exactly(3), Blocks: Exactly(1), Frames: Exactly(1)}
	_, err := AppendHeredoc(nil, "d", infinite, layout)
	if !errors.Is(err, ErrExcessData) {
		t.Fatalf("got %v, want ErrExcessData", err)
	}
	if pulled != 4 {
		t.Errorf("pulled %d values, want 4", pulled)
	}
}

func TestHeredoc_EmptyInput(t *testing.T) {
	got, err := AppendHeredoc(nil, "empty", slices.Values([]float64(nil)), Columns(2))
	if err != nil {
		t.Fatalf("AppendHeredoc() error: %v", err)
	}
	if string(got) != "$empty << EOD\nEOD\n" {
		t.Errorf("got %q", got)
	}
}

func TestHeredoc_EmptyInputWithFixedShape(t *testing.T) {
	layouts := map[string]Layout{
		"records": {Fields: 2, Records: Exactly(3)},
		"blocks":  {Fields: 1, Blocks: Exactly(2)},
		"frames":  {Fields: 1, Frames: Exactly(1)},
		"grid":    GridLayout(3, 4),
	}
	for name, layout := range layouts {
		t.Run(name, func(t *testing.T) {
			dst := []byte("keep")
			got, err := AppendHeredoc(dst, "d", slices.Values([]float64(nil)), layout)
			if !errors.Is(err, ErrInsufficientData) {
				t.Fatalf("error = %v, want ErrInsufficientData", err)
			}
			if string(got) != "keep" {
				t.Errorf("dst modified: %q", got)
			}
		})
	}
}

func TestHeredoc_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		dsName string
		layout Layout
	}{
		{"empty name", "", Columns(1)},
		{"leading digit", "1data", Columns(1)},
		{"space in name", "my data", Columns(1)},
		{"zero fields", "d", Layout{}},
		{"zero records", "d", Layout{Fields: 1, Records: Exactly(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := AppendHeredoc(nil, tt.dsName, slices.Values(seq(2)), tt.layout); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestHeredoc_ErrorMentionsName(t *testing.T) {
	_, err := AppendHeredoc(nil, "data7", slices.Values(seq(1)), Layout{Fields: 2, Records: Exactly(1)})
	if err == nil || !strings.Contains(err.Error(), "$data7") {
		t.Errorf("error %v should mention $data7", err)
	}
}
