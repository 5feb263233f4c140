// Package container exposes the named streams of an OLE compound file.
package container

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/richardlehane/mscfb"
)

// ErrStreamNotFound is returned by OpenStream for a name the container does not hold.
var ErrStreamNotFound = errors.New("stream not found")

// Entry describes one storage or stream for diagnostics.
type Entry struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	Storage bool   `json:"storage"`
}

// Kind returns "Storage" or "Stream".
func (e Entry) Kind() string {
	if e.Storage {
		return "Storage"
	}
	return "Stream"
}

// Container is what document decoders need from a compound file.
type Container interface {
	OpenStream(name string) (io.ReadSeeker, error)
	Walk() []Entry
}

// File is a compound file whose streams have been read into memory.
// Streams are keyed by their slash-joined path; root streams by bare name.
type File struct {
	streams map[string][]byte
	entries []Entry
}

// Open reads the compound file at path.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return New(f)
}

// New reads every stream of the compound file behind ra.
func New(ra io.ReaderAt) (*File, error) {
	doc, err := mscfb.New(ra)
	if err != nil {
		return nil, fmt.Errorf("read compound file: %w", err)
	}

	cf := &File{streams: make(map[string][]byte)}
	for {
		entry, err := doc.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("walk compound file: %w", err)
		}
		path := strings.Join(append(append([]string{}, entry.Path...), entry.Name), "/")
		e := Entry{Path: path, Name: entry.Name, Size: entry.Size, Storage: entry.FileInfo().IsDir()}
		cf.entries = append(cf.entries, e)
		if e.Storage {
			continue
		}
		data := make([]byte, entry.Size)
		if _, err := io.ReadFull(entry, data); err != nil {
			return nil, fmt.Errorf("read stream %s: %w", path, err)
		}
		cf.streams[path] = data
	}
	return cf, nil
}

// OpenStream returns an independent seekable reader over the named stream.
func (f *File) OpenStream(name string) (io.ReadSeeker, error) {
	data, ok := f.streams[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrStreamNotFound, name)
	}
	return bytes.NewReader(data), nil
}

// Walk lists every storage and stream in directory order.
func (f *File) Walk() []Entry {
	return append([]Entry(nil), f.entries...)
}

// Memory is an in-memory container of root-level streams.
type Memory map[string][]byte

// OpenStream returns a reader over the named stream.
func (m Memory) OpenStream(name string) (io.ReadSeeker, error) {
	data, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrStreamNotFound, name)
	}
	return bytes.NewReader(data), nil
}

// Walk lists the streams sorted by name.
func (m Memory) Walk() []Entry {
	out := make([]Entry, 0, len(m))
	for name, data := range m {
		out = append(out, Entry{Path: name, Name: name, Size: int64(len(data))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
