package sniff

import (
	"archive/zip"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/teamcutter/imgrip/internal/domain"
)

// mimetype entries are a few dozen bytes; anything beyond this is ignored.
const maxMimetypeEntry = 1 << 10

// InspectZip tells EPUB, DOCX and plain ZIP containers apart. The EPUB
// mimetype marker wins over a word/ folder. A corrupt archive is unknown.
func InspectZip(path string) domain.Family {
	r, err := zip.OpenReader(path)
	if err != nil {
		log.Debug().Err(err).Str("file", path).Msg("zip signature but unreadable structure")
		return domain.FamilyUnknown
	}
	defer r.Close()

	return inspectEntries(r.File)
}

func inspectEntries(files []*zip.File) domain.Family {
	for _, f := range files {
		if f.Name == "mimetype" && isEPUBMarker(f) {
			return domain.FamilyEPUB
		}
	}
	for _, f := range files {
		if strings.HasPrefix(f.Name, "word/") {
			return domain.FamilyDocx
		}
	}
	return domain.FamilyZipGeneric
}

func isEPUBMarker(f *zip.File) bool {
	rc, err := f.Open()
	if err != nil {
		return false
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxMimetypeEntry))
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), "epub")
}
