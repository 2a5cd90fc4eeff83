package util

import (
	"hash"
	"hash/crc32"
	"io"
)

// Cloud Storage publishes CRC32C checksums (Castagnoli polynomial).
const GCS_POLY = crc32.Castagnoli

var castagnoli = crc32.MakeTable(GCS_POLY)

// CRCwriter forwards writes to w and accumulates their CRC32C.
type CRCwriter struct {
	h hash.Hash32
	w io.Writer
}

func NewCRCwriter(w io.Writer) *CRCwriter {
	return &CRCwriter{
		h: crc32.New(castagnoli),
		w: w,
	}
}

// Write hashes only the bytes w accepted.
func (c *CRCwriter) Write(p []byte) (n int, err error) {
	n, err = c.w.Write(p)
	c.h.Write(p[:n])
	return
}

func (c *CRCwriter) Sum() uint32 {
	return c.h.Sum32()
}
