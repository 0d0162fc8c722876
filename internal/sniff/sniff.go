// Package sniff classifies documents by content signature, never by file
// name.
package sniff

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/teamcutter/imgrip/internal/domain"
	"github.com/teamcutter/imgrip/internal/runner"
)

// PrefixSize is enough to tell every supported signature apart.
const PrefixSize = 32

var (
	magicPDF  = []byte("%PDF")
	magicDjVu = []byte("AT&T")
	magicOLE2 = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	magicZIP  = []byte("PK\x03\x04")
)

type Sniffer struct {
	runner  runner.Runner
	fileCmd string
}

// New returns a Sniffer. When r is non-nil and fileCmd is set, the MIME
// verdict of fileCmd is preferred over the byte prefix.
func New(r runner.Runner, fileCmd string) *Sniffer {
	return &Sniffer{runner: r, fileCmd: fileCmd}
}

func (s *Sniffer) Classify(ctx context.Context, path string) domain.Family {
	if s.runner != nil && s.fileCmd != "" {
		if family, ok := s.classifyMIME(ctx, path); ok {
			return family
		}
	}
	return ClassifyPrefix(path)
}

func (s *Sniffer) classifyMIME(ctx context.Context, path string) (domain.Family, bool) {
	out, _, err := s.runner.Run(ctx, s.fileCmd, "--brief", "--mime-type", path)
	if err != nil {
		log.Debug().Err(err).Str("file", path).Msg("mime sniffing unavailable, using byte prefix")
		return domain.FamilyUnknown, false
	}
	mime := string(bytes.TrimSpace(out))
	family, ok := FamilyForMIME(mime, path)
	log.Debug().Str("file", path).Str("mime", mime).Str("family", string(family)).Bool("mapped", ok).Msg("mime sniffed")
	return family, ok
}

// ClassifyPrefix sniffs the leading bytes of path. ZIP files are handed to
// InspectZip.
func ClassifyPrefix(path string) domain.Family {
	prefix, err := readPrefix(path)
	if err != nil {
		log.Debug().Err(err).Str("file", path).Msg("read prefix")
		return domain.FamilyUnknown
	}

	switch {
	case bytes.HasPrefix(prefix, magicPDF):
		return domain.FamilyPDF
	case bytes.HasPrefix(prefix, magicDjVu):
		return domain.FamilyDjVu
	case bytes.HasPrefix(prefix, magicOLE2):
		return domain.FamilyDocLegacy
	case bytes.HasPrefix(prefix, magicZIP):
		return InspectZip(path)
	default:
		return domain.FamilyUnknown
	}
}

func readPrefix(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, PrefixSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}
