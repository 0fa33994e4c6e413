package redis

import "github.com/redis/rueidis"

// NewStoreForTest creates a Store over a mocked rueidis client.
func NewStoreForTest(c rueidis.Client, prefix string) *Store {
	return &Store{client: c, prefix: prefix}
}
