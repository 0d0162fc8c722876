// Package unwrap strips a single compression layer (gzip, zstd, xz, bzip2)
// off an input so the inner document can be sniffed and extracted.
package unwrap

import (
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
	"github.com/teamcutter/imgrip/internal/domain"
	"github.com/ulikunitz/xz"
)

type Codec string

const (
	None  Codec = ""
	Gzip  Codec = "gzip"
	Zstd  Codec = "zstd"
	XZ    Codec = "xz"
	Bzip2 Codec = "bzip2"
)

// Detect reports the compression codec of path from its magic bytes.
func Detect(path string) (Codec, error) {
	f, err := os.Open(path)
	if err != nil {
		return None, err
	}
	defer f.Close()

	header := make([]byte, 6)
	n, _ := io.ReadFull(f, header)
	return detect(header[:n]), nil
}

// https://gist.github.com/leommoore/f9e57ba2aa4bf197ebc5
func detect(header []byte) Codec {
	n := len(header)
	switch {
	case n >= 4 && header[0] == 0x28 && header[1] == 0xb5 && header[2] == 0x2f && header[3] == 0xfd:
		return Zstd
	case n >= 2 && header[0] == 0x1f && header[1] == 0x8b:
		return Gzip
	case n >= 6 && header[0] == 0xfd && header[1] == 0x37 && header[2] == 0x7a && header[3] == 0x58 && header[4] == 0x5a && header[5] == 0x00:
		return XZ
	case n >= 3 && header[0] == 'B' && header[1] == 'Z' && header[2] == 'h':
		return Bzip2
	default:
		return None
	}
}

// Unwrapped is a decompressed copy of a wrapped input. Cleanup removes it
// and must always be called.
type Unwrapped struct {
	Path    string
	Codec   Codec
	Cleanup func()
}

// Open returns src unchanged when it is not compressed. Otherwise the inner
// stream is written to a fresh directory under tempDir, named after src
// with the compression extension dropped.
func Open(src, tempDir string) (*Unwrapped, error) {
	codec, err := Detect(src)
	if err != nil {
		return nil, err
	}
	if codec == None {
		return &Unwrapped{Path: src, Cleanup: func() {}}, nil
	}

	dir, err := os.MkdirTemp(tempDir, "imgrip-unwrap-*")
	if err != nil {
		return nil, fmt.Errorf("unwrap: failed to create temp dir: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("failed to remove unwrap dir")
		}
	}

	dst := filepath.Join(dir, innerName(src))
	if err := decompress(src, dst, codec); err != nil {
		cleanup()
		return nil, fmt.Errorf("unwrap %s: %w", codec, err)
	}

	log.Debug().Str("file", src).Str("codec", string(codec)).Str("inner", dst).Msg("unwrapped input")
	return &Unwrapped{Path: dst, Codec: codec, Cleanup: cleanup}, nil
}

func innerName(src string) string {
	name := filepath.Base(src)
	ext := filepath.Ext(name)
	switch ext {
	case ".gz", ".zst", ".xz", ".bz2", ".tgz":
		name = name[:len(name)-len(ext)]
	}
	if name == "" {
		name = "document"
	}
	return name
}

func decompress(src, dst string, codec Codec) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	reader, closeFn, err := newReader(in, codec)
	if err != nil {
		return err
	}
	defer closeFn()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, reader); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func newReader(r io.Reader, codec Codec) (io.Reader, func(), error) {
	switch codec {
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	case Gzip:
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return gzr, func() { gzr.Close() }, nil
	case XZ:
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return xzr, func() {}, nil
	case Bzip2:
		return bzip2.NewReader(r), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("%w: codec %q", domain.ErrUnsupported, codec)
	}
}
