package archive

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
)

func readTarGzip(r io.Reader) ([]Entry, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	return readTar(gz)
}

func readTar(r io.Reader) ([]Entry, error) {
	tr := tar.NewReader(r)

	var entries []Entry
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag == tar.TypeXGlobalHeader {
			continue
		}

		mode := hdr.FileInfo().Mode()
		switch {
		case mode.IsDir() || isDirName(hdr.Name):
			entries = append(entries, Entry{
				Name:    hdr.Name,
				Dir:     true,
				Mode:    mode,
				ModTime: hdr.ModTime,
			})
		case mode.IsRegular():
			payload, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", hdr.Name, err)
			}
			entries = append(entries, Entry{
				Name:    hdr.Name,
				Mode:    mode,
				ModTime: hdr.ModTime,
				Data:    payload,
			})
		default:
			skip(hdr.Name, mode)
		}
	}
}
