// Package archive reads the entry index of an archive file into memory.
//
// Supported formats:
//   - ZIP
//   - TAR (plain and gzip compressed)
//   - CPIO (SVR4 "newc"/"crc" and portable "odc")
//
// The format is detected from the leading bytes, not from the file name.
// Payloads are decompressed eagerly; archives are opened read-only and
// never written back.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"zipsh/internal/logging"
)

// Format identifies an archive container format.
type Format string

const (
	FormatZip     Format = "zip"
	FormatTar     Format = "tar"
	FormatTarGzip Format = "tar.gz"
	FormatCPIO    Format = "cpio"
)

// ErrUnknownFormat is returned when no reader recognizes the data.
var ErrUnknownFormat = errors.New("unknown archive format")

var logger = logging.GetLogger().WithPrefix("archive")

// Entry is one member of an archive, named exactly as stored.
type Entry struct {
	Name    string
	Dir     bool
	Mode    fs.FileMode
	ModTime time.Time
	// Data is the decompressed payload; nil for directories.
	Data []byte
}

// Archive is the in-memory index of an archive in its stored entry order.
type Archive struct {
	Path    string
	Format  Format
	Entries []Entry
}

// Open reads the archive file at path.
func Open(path string) (*Archive, error) {
	logger.Debug("Opening archive %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Read(path, data)
}

// Read parses archive data held in memory. name is only used for reporting.
func Read(name string, data []byte) (*Archive, error) {
	format, err := Detect(data)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	switch format {
	case FormatZip:
		entries, err = readZip(data)
	case FormatTar:
		entries, err = readTar(bytes.NewReader(data))
	case FormatTarGzip:
		entries, err = readTarGzip(bytes.NewReader(data))
	case FormatCPIO:
		entries, err = readCPIO(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", format, err)
	}

	logger.Info("Read %d entries from %s archive %s", len(entries), format, name)
	return &Archive{
		Path:    name,
		Format:  format,
		Entries: entries,
	}, nil
}

var (
	magicZip      = []byte("PK\x03\x04")
	magicZipEmpty = []byte("PK\x05\x06")
	magicGzip     = []byte{0x1f, 0x8b}
	magicTar      = []byte("ustar")
	magicCPIO     = [][]byte{[]byte("070701"), []byte("070702"), []byte("070707")}
)

// tarMagicOffset is where the ustar/gnu magic lives inside the first header.
const tarMagicOffset = 257

// Detect returns the format of the archive data.
func Detect(data []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(data, magicZip), bytes.HasPrefix(data, magicZipEmpty):
		return FormatZip, nil
	case bytes.HasPrefix(data, magicGzip):
		return FormatTarGzip, nil
	case len(data) >= tarMagicOffset+len(magicTar) &&
		bytes.Equal(data[tarMagicOffset:tarMagicOffset+len(magicTar)], magicTar):
		return FormatTar, nil
	}
	for _, magic := range magicCPIO {
		if bytes.HasPrefix(data, magic) {
			return FormatCPIO, nil
		}
	}
	return "", ErrUnknownFormat
}

// skip reports entry types the virtual filesystem does not model.
func skip(name string, mode fs.FileMode) {
	logger.Debug("Skipping %s entry %q", mode.Type(), name)
}
