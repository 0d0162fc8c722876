package extractor

import (
	"fmt"
	"image/png"
	"os"

	"golang.org/x/image/tiff"
)

// ConvertTIFFToPNG re-encodes a rendered page. dst is removed if encoding
// fails part way.
func ConvertTIFFToPNG(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	img, err := tiff.Decode(in)
	if err != nil {
		return fmt.Errorf("tiff decode: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("png encode: %w", err)
	}
	return out.Close()
}
