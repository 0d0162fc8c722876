package sniff

import (
	"os"

	"github.com/richardlehane/mscfb"
)

// Conversion targets for OLE2 compound documents.
const (
	TargetDocx = "docx"
	TargetXlsx = "xlsx"
	TargetPptx = "pptx"
)

// LegacyTarget reads the OLE2 stream directory of path and returns the
// Office Open XML format it should be converted to. Unreadable or
// unrecognised compound files default to docx.
func LegacyTarget(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return TargetDocx
	}
	defer f.Close()

	doc, err := mscfb.New(f)
	if err != nil {
		return TargetDocx
	}

	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		switch entry.Name {
		case "WordDocument":
			return TargetDocx
		case "Workbook", "Book":
			return TargetXlsx
		case "PowerPoint Document":
			return TargetPptx
		}
	}
	return TargetDocx
}
