package memory

import (
	"archive/zip"
	"fmt"
	"io"
)

// ExportName is the file inside an export archive.
const ExportName = "memory_log.txt"

// Export writes list as a ZIP archive holding a single plain-text log.
func Export(w io.Writer, list []Memory) error {
	zw := zip.NewWriter(w)
	f, err := zw.Create(ExportName)
	if err != nil {
		return fmt.Errorf("create %s: %w", ExportName, err)
	}
	for _, m := range list {
		if _, err := fmt.Fprintf(f, "[%s] %s\n---\n", m.Date, PlainText(m.Text)); err != nil {
			return fmt.Errorf("write memory %s: %w", m.ID, err)
		}
	}
	return zw.Close()
}

// ExportFilename is the download name for a character's export.
func ExportFilename(key string) string {
	return key + "_memories.zip"
}
