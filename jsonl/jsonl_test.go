package jsonl

import (
	"bytes"
	"strings"
	"testing"
)

func TestObject(t *testing.T) {
	t.Run("empty object", func(t *testing.T) {
		var w Object
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := "{}"; string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("ordered fields", func(t *testing.T) {
		var w Object
		w.Append("on", "2024-01-02").Append("SPY", 472.65).Append("AAPL", 185.64)
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := `{"on":"2024-01-02","SPY":472.65,"AAPL":185.64}`; string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("optional skips zero values", func(t *testing.T) {
		var w Object
		w.Append("a", 1).Optional("b", "").Optional("c", 0).Optional("d", "x")
		got, _ := w.MarshalJSON()
		if want := `{"a":1,"d":"x"}`; string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("marshal error is sticky", func(t *testing.T) {
		var w Object
		w.Append("f", func() {}).Append("a", 1)
		if _, err := w.MarshalJSON(); err == nil {
			t.Errorf("MarshalJSON() error = nil, want an error")
		}
	})
}

func TestScan(t *testing.T) {
	in := "{\"a\":1}\n\n   \n{\"b\":2}\n"
	lines, err := Scan("mem", strings.NewReader(in))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("Scan() returned %d lines, want 2", len(lines))
	}
	if got, want := lines[1].String(), "mem:4"; got != want {
		t.Errorf("lines[1] = %q, want %q", got, want)
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	var o Object
	o.Append("k", "v")
	if err := Write(&buf, &o); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := Write(&buf, map[string]int{"n": 1}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got, want := buf.String(), "{\"k\":\"v\"}\n{\"n\":1}\n"; got != want {
		t.Errorf("Write() = %q, want %q", got, want)
	}
}
