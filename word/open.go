package word

import (
	"fmt"

	"github.com/c360studio/semdoc/container"
)

// OpenFile reads the compound file at path and assembles it.
func OpenFile(path string, opts Options) (*Document, error) {
	cf, err := container.Open(path)
	if err != nil {
		return nil, err
	}
	doc, err := Assemble(cf, opts)
	if err != nil {
		return nil, fmt.Errorf("assemble %s: %w", path, err)
	}
	return doc, nil
}

// Walk lists the storages and streams behind the document, when its
// streams come from a container that can enumerate them.
func (d *Document) Walk() []container.Entry {
	if c, ok := d.streams.(container.Container); ok {
		return c.Walk()
	}
	return nil
}
