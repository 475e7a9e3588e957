// Package archive reads and writes furniture packages as zip files.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	xenc "golang.org/x/text/encoding"

	"github.com/Faultbox/furniture-core/pkg/codec"
	"github.com/Faultbox/furniture-core/pkg/encoding"
)

// maxEntrySize bounds the uncompressed size of a single entry.
var maxEntrySize = 64 << 20

// ErrEntryTooLarge is returned by Read for oversized entries.
var ErrEntryTooLarge = errors.New("archive entry too large")

// Archive represents an opened package.
type Archive struct {
	fileList map[string]*zip.File
}

// Open reads a zip archive from memory. Entry names not flagged as UTF-8 are
// decoded with charset (code page 437 when nil).
func Open(data []byte, charset xenc.Encoding) (*Archive, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("reading zip: %w", err)
	}
	if charset == nil {
		charset, _ = encoding.Lookup(encoding.DefaultCharset)
	}

	a := &Archive{fileList: make(map[string]*zip.File, len(r.File))}
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := f.Name
		if f.NonUTF8 {
			name = encoding.ToUTF8([]byte(name), charset)
		}
		name = encoding.NormalizePath(name)
		if _, dup := a.fileList[name]; !dup {
			a.fileList[name] = f
		}
	}
	return a, nil
}

// OpenFile reads the archive at path.
func OpenFile(path string, charset xenc.Encoding) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	return Open(data, charset)
}

// List returns all file paths in the archive, sorted.
func (a *Archive) List() []string {
	result := make([]string, 0, len(a.fileList))
	for path := range a.fileList {
		result = append(result, path)
	}
	sort.Strings(result)
	return result
}

// Contains checks if a file exists.
func (a *Archive) Contains(path string) bool {
	_, ok := a.fileList[encoding.NormalizePath(path)]
	return ok
}

// Size returns the uncompressed size of a file.
func (a *Archive) Size(path string) (uint64, bool) {
	f, ok := a.fileList[encoding.NormalizePath(path)]
	if !ok {
		return 0, false
	}
	return f.UncompressedSize64, true
}

// Read reads a file from the archive.
func (a *Archive) Read(path string) ([]byte, error) {
	f, ok := a.fileList[encoding.NormalizePath(path)]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	if f.UncompressedSize64 > uint64(maxEntrySize) {
		return nil, fmt.Errorf("%s: %w", path, ErrEntryTooLarge)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, int64(maxEntrySize)+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(data) > maxEntrySize {
		return nil, fmt.Errorf("%s: %w", path, ErrEntryTooLarge)
	}
	return data, nil
}

// Writer builds a zip archive in memory.
type Writer struct {
	buf   bytes.Buffer
	zw    *zip.Writer
	names map[string]bool
}

// NewWriter creates a writer compressing at the given flate level.
func NewWriter(level int) *Writer {
	w := &Writer{names: make(map[string]bool)}
	w.zw = zip.NewWriter(&w.buf)
	w.zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})
	return w
}

// Write adds a file. Names are stored slash-separated and must be unique.
func (w *Writer) Write(name string, data []byte) error {
	name = encoding.NormalizePath(name)
	if name == "" {
		return errors.New("empty entry name")
	}
	if w.names[name] {
		return fmt.Errorf("duplicate entry %s", name)
	}
	fw, err := w.zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	w.names[name] = true
	return nil
}

// Bytes finishes the archive and returns its content. The writer cannot be
// used afterwards.
func (w *Writer) Bytes() ([]byte, error) {
	if err := w.zw.Close(); err != nil {
		return nil, fmt.Errorf("closing zip: %w", err)
	}
	return w.buf.Bytes(), nil
}

// Service opens and creates archives for the codec.
type Service struct {
	Charset xenc.Encoding // Legacy entry name charset
	Level   int           // Flate level
}

// NewService returns a service using charset for legacy names. Out of range
// levels use the flate default.
func NewService(charset string, level int) (Service, error) {
	enc, err := encoding.Lookup(charset)
	if err != nil {
		return Service{}, err
	}
	if level < flate.HuffmanOnly || level > flate.BestCompression {
		level = flate.DefaultCompression
	}
	return Service{Charset: enc, Level: level}, nil
}

// Open implements codec.Archives.
func (s Service) Open(data []byte) (codec.ArchiveReader, error) {
	return Open(data, s.Charset)
}

// Create implements codec.Archives.
func (s Service) Create() codec.ArchiveWriter {
	return NewWriter(s.Level)
}
