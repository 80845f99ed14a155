package slug

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)
	extChars    = regexp.MustCompile(`[^a-z0-9]`)
)

// FileName turns an uploaded file name into a storage-safe key segment.
// Letters outside ASCII are dropped, runs of other characters become a
// single dash, and the extension is kept in lower case.
// Example: "My CV (final).PDF" -> "my-cv-final.pdf"
func FileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	stem = strings.Trim(unsafeChars.ReplaceAllString(stem, "-"), "-")
	if stem == "" {
		stem = "file"
	}
	ext = extChars.ReplaceAllString(strings.TrimPrefix(ext, "."), "")
	if ext == "" {
		return stem
	}
	return stem + "." + ext
}

// ObjectKey builds the storage key of an attachment.
// Format: drafts/{draftID}/{fileID}-{file-name}
func ObjectKey(draftID, fileID, name string) string {
	return "drafts/" + draftID + "/" + fileID + "-" + FileName(name)
}
