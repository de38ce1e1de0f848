// pkg/pkginfo/detect.go - AppImage file-type detection.

package pkginfo

import (
	"bytes"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// AppImage type 2 carries the bytes "AI\x02" at offset 8 of the ELF
// header padding. Type 1 images only advertise themselves with an
// "AppImage" marker somewhere in the leading part of the file.
var appimageMagic = []byte{'A', 'I', 0x02}

// signatureScanLimit bounds how much of a file is scanned for the
// legacy marker, so huge files are not read end to end.
const signatureScanLimit = 100 * 1024

// IsAppImage checks whether a file is a recognizable AppImage: either
// the canonical filename suffix, or an application binary carrying an
// AppImage signature.
func IsAppImage(path string) bool {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return false
	}

	if strings.HasSuffix(strings.ToLower(path), ".appimage") {
		return true
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil || !strings.HasPrefix(mtype.String(), "application/") {
		return false
	}

	return hasAppImageSignature(path)
}

func hasAppImageSignature(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, 11)
	if n, _ := f.ReadAt(head, 0); n == len(head) {
		if bytes.Equal(head[8:11], appimageMagic) {
			return true
		}
	}

	// Legacy images: scan the leading chunk for a textual marker.
	buf := make([]byte, signatureScanLimit)
	n, _ := f.Read(buf)
	buf = buf[:n]
	return bytes.Contains(buf, []byte("AppImage")) || bytes.Contains(buf, []byte("appimage"))
}
