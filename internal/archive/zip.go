package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

func readZip(data []byte) ([]Entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil && !(errors.Is(err, zip.ErrInsecurePath) && zr != nil) {
		return nil, err
	}

	entries := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		info := f.FileInfo()
		mode := info.Mode()

		if info.IsDir() || isDirName(f.Name) {
			entries = append(entries, Entry{
				Name:    f.Name,
				Dir:     true,
				Mode:    mode,
				ModTime: f.Modified,
			})
			continue
		}
		if !mode.IsRegular() {
			skip(f.Name, mode)
			continue
		}

		payload, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		entries = append(entries, Entry{
			Name:    f.Name,
			Mode:    mode,
			ModTime: f.Modified,
			Data:    payload,
		})
	}
	return entries, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// isDirName reports whether a raw entry name carries a trailing separator.
// Archives written on Windows sometimes use a backslash.
func isDirName(name string) bool {
	return strings.HasSuffix(name, "/") || strings.HasSuffix(name, `\`)
}
