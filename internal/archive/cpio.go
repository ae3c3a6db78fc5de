package archive

import (
	"errors"
	"fmt"
	"io"

	"github.com/cavaliergopher/cpio"
)

func readCPIO(r io.Reader) ([]Entry, error) {
	cr := cpio.NewReader(r)

	var entries []Entry
	for {
		hdr, err := cr.Next()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}

		mode := hdr.FileInfo().Mode()
		switch {
		case mode.IsDir():
			entries = append(entries, Entry{
				Name:    hdr.Name,
				Dir:     true,
				Mode:    mode,
				ModTime: hdr.ModTime,
			})
		case mode.IsRegular():
			payload, err := io.ReadAll(cr)
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
