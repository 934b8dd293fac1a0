package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zeebo/blake3"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("metrics.yaml", []byte("a: 1"), 0)
	if id1 != 0 {
		t.Errorf("Expected first FileID to be 0, got %d", id1)
	}

	// Добавляем тот же файл с новым содержимым
	id2 := fs.Add("metrics.yaml", []byte("a: 2"), 0)
	if id2 != 1 {
		t.Errorf("Expected second FileID to be 1, got %d", id2)
	}

	latestID, exists := fs.GetLatest("metrics.yaml")
	if !exists {
		t.Fatal("Expected file to exist after second Add")
	}
	if latestID != id2 {
		t.Errorf("Expected latest ID to be %d, got %d", id2, latestID)
	}

	// Старый файл все еще доступен
	if got := string(fs.Get(id1).Content); got != "a: 1" {
		t.Errorf("Expected first file content to be 'a: 1', got %q", got)
	}
	if fs.Len() != 2 {
		t.Errorf("Expected 2 files, got %d", fs.Len())
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()

	id := fs.AddVirtual("a.yaml", []byte("a\nb\n"))
	file := fs.Get(id)

	expected := []uint32{1, 3} // позиции символов \n
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("Expected LineIdx length %d, got %d", len(expected), len(file.LineIdx))
	}
	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Errorf("Expected LineIdx[%d] = %d, got %d", i, val, file.LineIdx[i])
		}
	}
	if file.Flags&FileVirtual == 0 {
		t.Error("Expected FileVirtual flag to be set")
	}
}

func TestPosition(t *testing.T) {
	fs := NewFileSet()
	file := fs.Get(fs.AddVirtual("p.yaml", []byte("ab\ncd\n\nx")))

	cases := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{Line: 1, Col: 1}},
		{2, LineCol{Line: 1, Col: 3}}, // сам \n принадлежит первой строке
		{3, LineCol{Line: 2, Col: 1}},
		{4, LineCol{Line: 2, Col: 2}},
		{6, LineCol{Line: 3, Col: 1}},
		{7, LineCol{Line: 4, Col: 1}},
	}
	for _, tc := range cases {
		if got := file.Position(tc.off); got != tc.want {
			t.Errorf("Position(%d) = %+v, want %+v", tc.off, got, tc.want)
		}
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	file := fs.Get(fs.AddVirtual("l.yaml", []byte("first\nsecond\nthird")))

	for n, want := range map[uint32]string{0: "", 1: "first", 2: "second", 3: "third", 4: ""} {
		if got := file.GetLine(n); got != want {
			t.Errorf("GetLine(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestLoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metrics.yaml")
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("cafe\u0301: 1\r\n")...)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	file := fs.Get(id)

	want := "caf\u00e9: 1\n"
	if string(file.Content) != want {
		t.Errorf("content = %q, want %q", file.Content, want)
	}
	for _, flag := range []FileFlags{FileHadBOM, FileNormalizedCRLF, FileNormalizedNFC} {
		if file.Flags&flag == 0 {
			t.Errorf("expected flag %b to be set, flags=%b", flag, file.Flags)
		}
	}
	if file.Hash != Hash(blake3.Sum256([]byte(want))) {
		t.Error("hash must be computed over normalized content")
	}
}

func TestLoadMissingFile(t *testing.T) {
	fs := NewFileSet()
	if _, err := fs.Load(filepath.Join(t.TempDir(), "nope.yaml")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	id := fs.AddMissing("nope.yaml")
	if fs.Get(id).Flags&FileMissing == 0 {
		t.Error("Expected FileMissing flag")
	}
}

func TestPathsSorted(t *testing.T) {
	fs := NewFileSet()
	fs.Add("b.yaml", nil, 0)
	fs.Add("./a.yaml", nil, 0)
	fs.Add("b.yaml", nil, 0)

	got := fs.Paths()
	if len(got) != 2 || got[0] != "a.yaml" || got[1] != "b.yaml" {
		t.Fatalf("unexpected paths %v", got)
	}
}

func TestFormatPath(t *testing.T) {
	fs := NewFileSet()
	file := fs.Get(fs.AddVirtual("<input 1>", nil))
	if got := file.FormatPath("absolute", ""); got != "<input 1>" {
		t.Errorf("virtual files keep their label, got %q", got)
	}
	disk := fs.Get(fs.Add("/tmp/very/long/directory/name/for/testing/metrics.yaml", nil, 0))
	if got := disk.FormatPath("auto", ""); got != "metrics.yaml" {
		t.Errorf("auto mode shortens long absolute paths, got %q", got)
	}
	if got := disk.FormatPath("basename", ""); got != "metrics.yaml" {
		t.Errorf("basename = %q", got)
	}
}
