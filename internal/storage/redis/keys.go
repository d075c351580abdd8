package redis

import (
	"fmt"
)

// Key prefix for all typerace data
const keyPrefix = "typerace"

// corpusKey returns the Redis key for the SET of corpus paragraphs
func corpusKey() string {
	return fmt.Sprintf("%s:corpus", keyPrefix)
}

// poolKey returns the Redis key for the LIST of prefetched paragraphs
func poolKey() string {
	return fmt.Sprintf("%s:pool", keyPrefix)
}
