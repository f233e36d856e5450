package state

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// BlobMagic prefixes a binary state blob. It is followed by the payload
// length and the UTF-8 document text with a trailing NUL.
const BlobMagic uint32 = 0x21324356

const blobHeaderSize = 8

// Wrap packs a document into a binary blob.
func Wrap(doc []byte) []byte {
	out := make([]byte, blobHeaderSize, blobHeaderSize+len(doc)+1)
	binary.LittleEndian.PutUint32(out[0:4], BlobMagic)
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(doc)))
	out = append(out, doc...)
	return append(out, 0)
}

// Unwrap extracts the document from a blob. A blob without the magic header
// is taken to be bare document text.
func Unwrap(blob []byte) ([]byte, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidBlob)
	}

	if len(blob) >= blobHeaderSize && binary.LittleEndian.Uint32(blob[0:4]) == BlobMagic {
		n := int(binary.LittleEndian.Uint32(blob[4:8]))
		avail := len(blob) - blobHeaderSize
		if n > avail {
			n = avail
		}
		doc := blob[blobHeaderSize : blobHeaderSize+n]
		if i := bytes.IndexByte(doc, 0); i >= 0 {
			doc = doc[:i]
		}
		if len(doc) == 0 {
			return nil, fmt.Errorf("%w: empty payload", ErrInvalidBlob)
		}
		return doc, nil
	}

	doc := blob
	if i := bytes.IndexByte(doc, 0); i >= 0 {
		doc = doc[:i]
	}
	return doc, nil
}
