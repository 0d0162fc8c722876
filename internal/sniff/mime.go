package sniff

import (
	"strings"

	"github.com/teamcutter/imgrip/internal/domain"
)

var legacyMIMEs = map[string]bool{
	"application/msword":            true,
	"application/vnd.ms-excel":      true,
	"application/vnd.ms-powerpoint": true,
	"application/x-ole-storage":     true,
	"application/cdfv2":             true,
}

// FamilyForMIME maps a MIME type onto the same families the byte sniffer
// produces. Generic ZIP MIMEs are resolved by inspecting path. ok is false
// when the MIME says nothing useful and the caller should fall back.
func FamilyForMIME(mime, path string) (domain.Family, bool) {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}

	switch {
	case mime == "application/pdf":
		return domain.FamilyPDF, true
	case strings.Contains(mime, "djvu"):
		return domain.FamilyDjVu, true
	case strings.HasSuffix(mime, "wordprocessingml.document"):
		return domain.FamilyDocx, true
	case mime == "application/epub+zip":
		return domain.FamilyEPUB, true
	case mime == "application/zip":
		return InspectZip(path), true
	case strings.Contains(mime, "openxmlformats"), strings.Contains(mime, "opendocument"):
		return domain.FamilyZipGeneric, true
	case legacyMIMEs[mime]:
		return domain.FamilyDocLegacy, true
	default:
		return domain.FamilyUnknown, false
	}
}
