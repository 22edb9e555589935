package lined

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestHistoryAddSuppressesAdjacentDuplicates(t *testing.T) {
	ed, _ := newTestEditor("", 80)
	if !ed.HistoryAdd("a") {
		t.Fatal("first add refused")
	}
	if ed.HistoryAdd("a") {
		t.Error("adjacent duplicate accepted")
	}
	if !ed.HistoryAdd("b") || !ed.HistoryAdd("a") {
		t.Error("non-adjacent entries refused")
	}
	want := []string{"a", "b", "a"}
	if !reflect.DeepEqual(ed.history, want) {
		t.Errorf("history = %v, want %v", ed.history, want)
	}
}

func TestHistoryAddDisabled(t *testing.T) {
	ed, _ := newTestEditor("", 80)
	ed.historyMaxLen = 0
	if ed.HistoryAdd("a") || len(ed.history) != 0 {
		t.Error("history disabled by max length 0 still grew")
	}
}

func TestHistoryBoundDropsOldest(t *testing.T) {
	ed, _ := newTestEditor("", 80)
	ed.SetHistoryMaxLen(3)
	for _, e := range []string{"1", "2", "3", "4", "5"} {
		ed.HistoryAdd(e)
	}
	want := []string{"3", "4", "5"}
	if !reflect.DeepEqual(ed.history, want) {
		t.Errorf("history = %v, want %v", ed.history, want)
	}
}

func TestSetHistoryMaxLenKeepsNewest(t *testing.T) {
	ed, _ := newTestEditor("", 80)
	for _, e := range []string{"1", "2", "3", "4"} {
		ed.HistoryAdd(e)
	}
	if !ed.SetHistoryMaxLen(2) {
		t.Fatal("resize refused")
	}
	want := []string{"3", "4"}
	if !reflect.DeepEqual(ed.history, want) {
		t.Errorf("history = %v, want %v", ed.history, want)
	}
	if ed.SetHistoryMaxLen(0) {
		t.Error("zero length must be refused")
	}
}

func TestHistorySaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	ed, _ := newTestEditor("", 80)
	entries := []string{"first", "second command", "third"}
	for _, e := range entries {
		ed.HistoryAdd(e)
	}
	if err := ed.HistorySave(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	ed.HistoryFree()
	if len(ed.history) != 0 {
		t.Fatal("free left entries behind")
	}
	if err := ed.HistoryLoad(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(ed.history, entries) {
		t.Errorf("history = %v, want %v", ed.history, entries)
	}
}

func TestHistoryLoadMissingFile(t *testing.T) {
	ed, _ := newTestEditor("", 80)
	if err := ed.HistoryLoad(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("loading a missing file should fail")
	}
}

func TestHistoryLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	ed, _ := newTestEditor("", 80)
	if err := ed.HistoryLoad(path); err != nil {
		t.Errorf("load: %v", err)
	}
	if len(ed.history) != 0 {
		t.Errorf("history = %v, want empty", ed.history)
	}
}

func TestHistoryLoadStripsCarriageReturns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	if err := os.WriteFile(path, []byte("a\r\nb\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ed, _ := newTestEditor("", 80)
	if err := ed.HistoryLoad(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"a", "b"}
	if !reflect.DeepEqual(ed.history, want) {
		t.Errorf("history = %v, want %v", ed.history, want)
	}
}

func TestHistoryLoadAppliesBound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	if err := os.WriteFile(path, []byte("1\n2\n3\n4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ed, _ := newTestEditor("", 80)
	ed.SetHistoryMaxLen(2)
	if err := ed.HistoryLoad(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"3", "4"}
	if !reflect.DeepEqual(ed.history, want) {
		t.Errorf("history = %v, want %v", ed.history, want)
	}
}
