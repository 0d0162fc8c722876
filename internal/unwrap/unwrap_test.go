package unwrap

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

const payload = "%PDF-1.4\nnot much of a pdf, but the signature is what matters\n"

func compress(t *testing.T, codec Codec) []byte {
	t.Helper()
	var buf bytes.Buffer
	var w io.WriteCloser
	var err error

	switch codec {
	case Gzip:
		w = gzip.NewWriter(&buf)
	case Zstd:
		w, err = zstd.NewWriter(&buf)
	case XZ:
		w, err = xz.NewWriter(&buf)
	default:
		t.Fatalf("no writer for %q", codec)
	}
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(payload)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestOpen_Codecs(t *testing.T) {
	tests := []struct {
		codec Codec
		name  string
		inner string
	}{
		{Gzip, "report.pdf.gz", "report.pdf"},
		{Zstd, "report.pdf.zst", "report.pdf"},
		{XZ, "report.pdf.xz", "report.pdf"},
	}

	for _, tt := range tests {
		dir := t.TempDir()
		src := filepath.Join(dir, tt.name)
		if err := os.WriteFile(src, compress(t, tt.codec), 0644); err != nil {
			t.Fatal(err)
		}

		tmp := t.TempDir()
		u, err := Open(src, tmp)
		if err != nil {
			t.Fatalf("%s: %v", tt.codec, err)
		}
		if u.Codec != tt.codec {
			t.Errorf("%s: codec = %q", tt.codec, u.Codec)
		}
		if filepath.Base(u.Path) != tt.inner {
			t.Errorf("%s: inner name = %q, want %q", tt.codec, filepath.Base(u.Path), tt.inner)
		}
		data, err := os.ReadFile(u.Path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != payload {
			t.Errorf("%s: payload mismatch: %q", tt.codec, data)
		}

		u.Cleanup()
		entries, _ := os.ReadDir(tmp)
		if len(entries) != 0 {
			t.Errorf("%s: temp dir not cleaned: %v", tt.codec, entries)
		}
	}
}

func TestOpen_PlainPassesThrough(t *testing.T) {
	src := filepath.Join(t.TempDir(), "plain.pdf")
	if err := os.WriteFile(src, []byte(payload), 0644); err != nil {
		t.Fatal(err)
	}

	u, err := Open(src, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer u.Cleanup()

	if u.Path != src || u.Codec != None {
		t.Fatalf("expected passthrough, got %+v", u)
	}
}

func TestOpen_CorruptStreamCleansUp(t *testing.T) {
	src := filepath.Join(t.TempDir(), "broken.pdf.gz")
	if err := os.WriteFile(src, []byte{0x1f, 0x8b, 0x00, 0x01, 0x02}, 0644); err != nil {
		t.Fatal(err)
	}

	tmp := t.TempDir()
	if _, err := Open(src, tmp); err == nil {
		t.Fatal("expected error for corrupt gzip")
	}
	entries, _ := os.ReadDir(tmp)
	if len(entries) != 0 {
		t.Fatalf("temp dir leaked: %v", entries)
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		header []byte
		want   Codec
	}{
		{[]byte{0x28, 0xb5, 0x2f, 0xfd}, Zstd},
		{[]byte{0x1f, 0x8b}, Gzip},
		{[]byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}, XZ},
		{[]byte("BZh91AY"), Bzip2},
		{[]byte("%PDF-1"), None},
		{[]byte("BZ"), None},
		{nil, None},
	}
	for _, tt := range tests {
		if got := detect(tt.header); got != tt.want {
			t.Errorf("detect(%x) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
