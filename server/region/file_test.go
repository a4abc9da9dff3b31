package region

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestFileWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.0.0.bin")
	rf, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rf.Close()

	payload := bytes.Repeat([]byte("chunk-bytes"), 50)
	if err := rf.Write(3, 5, payload); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, ok, err := rf.Read(3, 5)
	if err != nil || !ok {
		t.Fatalf("Read: got ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("Read returned %d bytes, want %d matching bytes", len(got), len(payload))
	}
}

func TestFileHasReflectsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.0.0.bin")
	rf, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rf.Close()

	if rf.Has(1, 1) {
		t.Fatal("a fresh region file should have no entries")
	}
	if err := rf.Write(1, 1, []byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !rf.Has(1, 1) {
		t.Fatal("Has should report true after a Write")
	}
}

func TestFileReadMissingSlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.0.0.bin")
	rf, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rf.Close()

	_, ok, err := rf.Read(7, 7)
	if err != nil {
		t.Fatalf("Read of an empty slot should not error, got %v", err)
	}
	if ok {
		t.Fatal("Read of an empty slot should report ok=false")
	}
}

func TestFileOverwriteShrinkingPayloadReusesAllocation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.0.0.bin")
	rf, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rf.Close()

	big := bytes.Repeat([]byte("y"), 10000)
	if err := rf.Write(2, 2, big); err != nil {
		t.Fatalf("Write big: %v", err)
	}

	small := []byte("tiny")
	if err := rf.Write(2, 2, small); err != nil {
		t.Fatalf("Write small: %v", err)
	}

	got, ok, err := rf.Read(2, 2)
	if err != nil || !ok {
		t.Fatalf("Read after overwrite: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, small) {
		t.Fatalf("Read after overwrite = %q, want %q", got, small)
	}
}

func TestFilePersistsDirectoryAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.0.0.bin")

	rf, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	payload := []byte("persisted")
	if err := rf.Write(4, 9, payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := rf.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, ok, err := reopened.Read(4, 9)
	if err != nil || !ok {
		t.Fatalf("Read after reopen: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("Read after reopen = %q, want %q", got, payload)
	}
}
