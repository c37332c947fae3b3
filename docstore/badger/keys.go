package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/retrievit/core"
)

// Key prefixes for different data types
const (
	collectionPrefix = "col"
	documentPrefix   = "doc"
	indexPrefix      = "idx"
)

// makeCollectionKey generates the marker key for a collection.
func makeCollectionKey(collection string) []byte {
	return []byte(fmt.Sprintf("%s:%s", collectionPrefix, collection))
}

// makeDocumentKey generates a key for a document by store ID.
// The ID is written BigEndian so iteration order is ascending StoreID,
// which is the store's documented natural document order.
func makeDocumentKey(collection string, id core.ID) []byte {
	prefix := makeDocumentPrefix(collection)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeDocumentPrefix generates the key prefix shared by all documents of a
// collection.
func makeDocumentPrefix(collection string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", documentPrefix, collection))
}

// makeIndexKey generates the key holding an index definition.
func makeIndexKey(collection, index string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", indexPrefix, collection, index))
}
