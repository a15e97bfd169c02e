// Package zip bundles cached image files into a single downloadable
// archive.
package zip

import (
	"archive/zip"
	"bytes"
)

// File is one archive entry.
type File struct {
	Name string
	Data []byte
}

// Archive writes the files into an in-memory zip. Entries that cannot be
// created are skipped; the archive is always returned, possibly partial.
func Archive(files []File) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, f := range files {
		w, err := zw.Create(f.Name)
		if err != nil {
			continue
		}
		if _, err := w.Write(f.Data); err != nil {
			continue
		}
	}
	_ = zw.Close()
	return buf.Bytes()
}
