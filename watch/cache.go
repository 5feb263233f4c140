package watch

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/c360studio/semdoc/container"
	"github.com/c360studio/semdoc/diff"
	"github.com/c360studio/semdoc/word"
)

// Decoder turns the bytes of a file into a comparable document.
type Decoder func(data []byte) (diff.Source, error)

// DecodeWord decodes Word binary documents held in a compound file.
func DecodeWord(opts word.Options) Decoder {
	return func(data []byte) (diff.Source, error) {
		cf, err := container.New(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		doc, err := word.Assemble(cf, opts)
		if err != nil {
			return nil, err
		}
		return doc, nil
	}
}

// ContentHash returns the hex SHA-256 of data.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Cache keeps decoded documents keyed by content hash, so a file saved
// without changes and a reference shared by many comparisons decode once.
// Decoded documents are read-only and may be shared between goroutines.
type Cache struct {
	docs   *lru.Cache[string, diff.Source]
	decode Decoder

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates a cache holding at most size documents.
func NewCache(size int, decode Decoder) (*Cache, error) {
	if size <= 0 {
		size = DefaultConfig().CacheSize
	}
	docs, err := lru.New[string, diff.Source](size)
	if err != nil {
		return nil, fmt.Errorf("create document cache: %w", err)
	}
	return &Cache{docs: docs, decode: decode}, nil
}

// Load reads and decodes the file at path, returning the document and its content hash.
func (c *Cache) Load(path string) (diff.Source, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	doc, hash, err := c.Decode(data)
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", path, err)
	}
	return doc, hash, nil
}

// Decode returns the cached document for data, decoding it on a miss.
// Failed decodes are not cached.
func (c *Cache) Decode(data []byte) (diff.Source, string, error) {
	hash := ContentHash(data)
	if doc, ok := c.docs.Get(hash); ok {
		c.hits.Add(1)
		return doc, hash, nil
	}
	c.misses.Add(1)
	doc, err := c.decode(data)
	if err != nil {
		return nil, hash, err
	}
	c.docs.Add(hash, doc)
	return doc, hash, nil
}

// Len returns the number of cached documents.
func (c *Cache) Len() int { return c.docs.Len() }

// Stats returns the hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) { return c.hits.Load(), c.misses.Load() }
