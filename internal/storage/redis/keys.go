package redis

import (
	"fmt"
	"strings"
)

// Key prefix for all registration data
const keyPrefix = "registro"

// Key generation functions

// recordKey returns the Redis key holding a record's JSON fields
func recordKey(collection, id string) string {
	return fmt.Sprintf("%s:rec:%s:%s", keyPrefix, collection, id)
}

// collectionIndexKey returns the ZSET of record ids in creation order
func collectionIndexKey(collection string) string {
	return fmt.Sprintf("%s:idx:%s", keyPrefix, collection)
}

// fieldIndexKey returns the SET of record ids whose field folds to value
func fieldIndexKey(collection, field, value string) string {
	return fmt.Sprintf("%s:idx:%s:%s:%s", keyPrefix, collection, field, strings.ToLower(value))
}

// sequenceKey returns the counter used to mint record handles
func sequenceKey() string {
	return fmt.Sprintf("%s:seq", keyPrefix)
}
