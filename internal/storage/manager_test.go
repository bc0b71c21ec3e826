// manager_test.go - Tests for storage layer
package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cobol-converter/backend/internal/models"
)

func createTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func TestNewLocalStore(t *testing.T) {
	t.Run("creates upload directory", func(t *testing.T) {
		uploadDir := filepath.Join(t.TempDir(), "uploads")

		if _, err := NewLocalStore(uploadDir, 0); err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}

		if _, err := os.Stat(uploadDir); os.IsNotExist(err) {
			t.Error("Expected upload directory to be created")
		}
	})
}

func TestLocalStore_Save(t *testing.T) {
	t.Run("saves file from reader", func(t *testing.T) {
		store := createTestStore(t)
		content := "       01 WS-COUNT PIC 9(3)."

		info, err := store.Save("payroll.cbl", strings.NewReader(content))
		if err != nil {
			t.Fatalf("Failed to save file: %v", err)
		}

		if info.ID == "" {
			t.Error("Expected ID to be set")
		}
		if info.Name != "payroll.cbl" {
			t.Errorf("Expected name 'payroll.cbl', got %v", info.Name)
		}
		if info.Size != int64(len(content)) {
			t.Errorf("Expected size %d, got %d", len(content), info.Size)
		}
		if info.Status != models.FileStatusUploaded {
			t.Errorf("Expected status 'uploaded', got %v", info.Status)
		}

		data, err := os.ReadFile(filepath.Join(store.uploadDir, info.ID))
		if err != nil {
			t.Fatalf("Failed to read saved file: %v", err)
		}
		if string(data) != content {
			t.Errorf("Expected content '%s', got '%s'", content, string(data))
		}
	})

	t.Run("sanitizes display name", func(t *testing.T) {
		store := createTestStore(t)

		tests := map[string]string{
			`C:\jobs\batch\report.cbl`:       "report.cbl",
			"../../etc/passwd":               "passwd",
			"<script>alert(1)</script>x.cbl": "x.cbl",
			"<b>":                            "upload.cbl",
		}
		for in, want := range tests {
			info, err := store.Save(in, strings.NewReader("x"))
			if err != nil {
				t.Fatalf("Failed to save %q: %v", in, err)
			}
			if info.Name != want {
				t.Errorf("Save(%q): expected name %q, got %q", in, want, info.Name)
			}
		}
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		store, err := NewLocalStore(t.TempDir(), 4)
		if err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}

		_, err = store.Save("big.cbl", strings.NewReader("12345"))
		if !errors.Is(err, ErrTooLarge) {
			t.Fatalf("Expected ErrTooLarge, got %v", err)
		}

		entries, _ := os.ReadDir(store.uploadDir)
		if len(entries) != 0 {
			t.Errorf("Expected no files left behind, found %d", len(entries))
		}

		if _, err := store.Save("ok.cbl", strings.NewReader("1234")); err != nil {
			t.Errorf("Expected file at the limit to be accepted: %v", err)
		}
	})
}

func TestLocalStore_Get(t *testing.T) {
	t.Run("gets existing file", func(t *testing.T) {
		store := createTestStore(t)
		info, err := store.Save("test.cbl", strings.NewReader("content"))
		if err != nil {
			t.Fatalf("Failed to save file: %v", err)
		}

		retrieved, err := store.Get(info.ID)
		if err != nil {
			t.Fatalf("Failed to get file: %v", err)
		}
		if retrieved.ID != info.ID || retrieved.Name != info.Name {
			t.Errorf("Expected %+v, got %+v", info, retrieved)
		}
	})

	t.Run("returns error for non-existent file", func(t *testing.T) {
		store := createTestStore(t)

		if _, err := store.Get("non-existent-id"); err == nil {
			t.Error("Expected error for non-existent file")
		}
	})
}

func TestLocalStore_List(t *testing.T) {
	store := createTestStore(t)
	for i := 0; i < 5; i++ {
		if _, err := store.Save("file.cbl", strings.NewReader("x")); err != nil {
			t.Fatalf("Failed to save file: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	all, err := store.List(0)
	if err != nil {
		t.Fatalf("Failed to list files: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("Expected 5 files, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].UploadedAt.After(all[i-1].UploadedAt) {
			t.Error("Expected files sorted newest first")
		}
	}

	limited, _ := store.List(2)
	if len(limited) != 2 {
		t.Errorf("Expected 2 files, got %d", len(limited))
	}
}

func TestLocalStore_ReadFileAndDelete(t *testing.T) {
	store := createTestStore(t)
	info, err := store.Save("prog.cbl", strings.NewReader("PROCEDURE DIVISION."))
	if err != nil {
		t.Fatalf("Failed to save file: %v", err)
	}

	data, err := store.ReadFile(info.ID)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(data) != "PROCEDURE DIVISION." {
		t.Errorf("Unexpected content %q", data)
	}

	if err := store.Delete(info.ID); err != nil {
		t.Fatalf("Failed to delete file: %v", err)
	}
	if _, err := store.ReadFile(info.ID); err == nil {
		t.Error("Expected error reading deleted file")
	}
	if err := store.Delete(info.ID); err == nil {
		t.Error("Expected error deleting missing file")
	}
}

func TestLocalStore_SetStatus(t *testing.T) {
	store := createTestStore(t)
	info, _ := store.Save("prog.cbl", strings.NewReader("x"))

	if err := store.SetStatus(info.ID, models.FileStatusConverted); err != nil {
		t.Fatalf("Failed to set status: %v", err)
	}
	got, _ := store.Get(info.ID)
	if got.Status != models.FileStatusConverted {
		t.Errorf("Expected status converted, got %v", got.Status)
	}
	if info.Status != models.FileStatusUploaded {
		t.Error("Expected earlier snapshot to be unaffected")
	}

	if err := store.SetStatus("missing", models.FileStatusError); err == nil {
		t.Error("Expected error for missing file")
	}
}
