package storage

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLocalStoreSaveAndOpen(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	written, err := store.Save("docs", "report.xlsx", strings.NewReader("payload"), false)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if written != int64(len("payload")) {
		t.Fatalf("written = %d, want %d", written, len("payload"))
	}

	f, err := store.Open("docs", "report.xlsx")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("content = %q, want payload", data)
	}
}

func TestLocalStoreSaveRejectsExisting(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.Save("docs", "report.xlsx", strings.NewReader("first"), false); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := store.Save("docs", "report.xlsx", strings.NewReader("second"), false); !errors.Is(err, ErrFileExists) {
		t.Fatalf("second save = %v, want ErrFileExists", err)
	}

	// Override replaces the file.
	if _, err := store.Save("docs", "report.xlsx", strings.NewReader("second"), true); err != nil {
		t.Fatalf("override save: %v", err)
	}
}

func TestLocalStoreSaveRemovesEmptyFile(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.Save("docs", "empty.bin", strings.NewReader(""), false); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("save empty = %v, want ErrEmptyFile", err)
	}

	if _, err := store.Open("docs", "empty.bin"); err == nil {
		t.Fatal("partial empty file must be removed")
	}

	// The name is free again after the failed save.
	if _, err := store.Save("docs", "empty.bin", strings.NewReader("retry"), false); err != nil {
		t.Fatalf("retry save: %v", err)
	}
}

func TestLocalStoreRename(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.Save("docs", "old.docx", strings.NewReader("body"), false); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Rename("docs", "old.docx", "new.docx"); err != nil {
		t.Fatalf("rename: %v", err)
	}

	if _, err := store.Open("docs", "old.docx"); err == nil {
		t.Fatal("old name must be gone after rename")
	}
	if _, err := store.Open("docs", "new.docx"); err != nil {
		t.Fatalf("open new name: %v", err)
	}
}

func TestLocalStoreBasenameBlocksTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	for input, want := range map[string]string{
		"../../etc/passwd": "passwd",
		"nested/dir/a.txt": "a.txt",
		"..":               "artifact",
		"  ":               "artifact",
		"plain.pdf":        "plain.pdf",
	} {
		if got := store.Basename(input); got != want {
			t.Errorf("Basename(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestLocalStoreRemoveMissingIsNoop(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := store.Remove("docs", "nope.pdf"); err != nil {
		t.Fatalf("remove missing = %v, want nil", err)
	}
}
