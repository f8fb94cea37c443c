package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs sort lexicographically by creation
// time, which makes them safe DynamoDB partition keys and keeps listing
// feeds roughly chronological without extra bookkeeping.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
