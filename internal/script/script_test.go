package script

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecode(t *testing.T) {
	input := "Alice\tこんにちは\tHello\n" +
		"\t地の文\t#\n" +
		"Bob\tやあ\tHi there\n"

	lines, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	if lines[0].Character != "Alice" || lines[0].Translation != "Hello" {
		t.Errorf("unexpected first line: %+v", lines[0])
	}
	if lines[1].Character != "" {
		t.Errorf("narration line should have empty character, got %q", lines[1].Character)
	}
	if lines[1].Translation != "" {
		t.Errorf("sentinel should decode to empty translation, got %q", lines[1].Translation)
	}
}

func TestDecodeBadFieldCount(t *testing.T) {
	for _, input := range []string{
		"only two\tfields\n",
		"one\ttwo\tthree\tfour\n",
		"nofields\n",
	} {
		_, err := Decode(strings.NewReader(input))
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Errorf("Decode(%q): expected *FormatError, got %v", input, err)
			continue
		}
		if fe.Line != 1 {
			t.Errorf("Decode(%q): expected error at line 1, got %d", input, fe.Line)
		}
	}
}

func TestSentinelRoundTrip(t *testing.T) {
	orig := []Line{
		{Character: "Alice", Original: "こんにちは", Translation: ""},
		{Character: "", Original: "地の文", Translation: "Narration."},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, orig); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(buf.String(), "\t#\n") {
		t.Errorf("encoded output should carry the sentinel: %q", buf.String())
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !Equal(orig, got) {
		t.Errorf("round trip mismatch:\n  want %+v\n  got  %+v", orig, got)
	}
	if got[0].Translation != "" {
		t.Errorf("empty translation should round-trip to \"\", got %q", got[0].Translation)
	}
}

func TestEncodeReservedSentinel(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, []Line{{Original: "text", Translation: "#"}})
	if !errors.Is(err, ErrReservedSentinel) {
		t.Errorf("expected ErrReservedSentinel, got %v", err)
	}
}

func TestEncodeRejectsEmbeddedSeparators(t *testing.T) {
	for _, l := range []Line{
		{Character: "A\tB", Original: "x", Translation: "y"},
		{Character: "A", Original: "x\ny", Translation: "z"},
		{Character: "A", Original: "x", Translation: "y\tz"},
	} {
		var buf bytes.Buffer
		if err := Encode(&buf, []Line{l}); err == nil {
			t.Errorf("Encode(%+v): expected error for embedded separator", l)
		}
	}
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene01.tsv")

	lines := []Line{
		{Character: "Alice", Original: "こんにちは", Translation: "Hello"},
		{Character: "", Original: "……", Translation: ""},
	}

	if err := Save(path, lines); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// No temp file may survive a successful save.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind after Save")
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !Equal(lines, got) {
		t.Errorf("Load mismatch:\n  want %+v\n  got  %+v", lines, got)
	}
}

func TestSaveInvalidLeavesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene01.tsv")

	good := []Line{{Original: "x", Translation: "y"}}
	if err := Save(path, good); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	bad := []Line{{Original: "x", Translation: "#"}}
	if err := Save(path, bad); err == nil {
		t.Fatal("expected Save of reserved sentinel to fail")
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !Equal(good, got) {
		t.Errorf("failed Save must not touch the existing file")
	}
}

func TestEqual(t *testing.T) {
	a := []Line{{Original: "x"}}
	b := []Line{{Original: "x"}}
	c := []Line{{Original: "y"}}

	if !Equal(a, b) {
		t.Error("identical slices should be equal")
	}
	if Equal(a, c) {
		t.Error("different slices should not be equal")
	}
	if Equal(a, nil) {
		t.Error("different lengths should not be equal")
	}
}
