package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

func TestArchiveRoundTrip(t *testing.T) {
	data := Archive([]File{
		{Name: "a.jpg", Data: []byte("first")},
		{Name: "b.jpg", Data: []byte("second")},
	})

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("output is not a zip: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("archive holds %d entries, want 2", len(zr.File))
	}

	want := map[string]string{"a.jpg": "first", "b.jpg": "second"}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		if string(content) != want[f.Name] {
			t.Fatalf("%s content = %q, want %q", f.Name, content, want[f.Name])
		}
	}
}

func TestArchiveEmpty(t *testing.T) {
	data := Archive(nil)
	if _, err := zip.NewReader(bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("empty archive is not a valid zip: %v", err)
	}
}
