// Package command parses a decoded RESP array frame into a typed Command.
package command

import (
	"time"

	"github.com/akashmaji946/redikv/internal/keyspace"
)

// Kind identifies which verb a Command carries.
type Kind int

const (
	KindCommand Kind = iota
	KindCommandDocs
	KindConfigGet
	KindGet
	KindSet
	KindDel
	KindTTL
	KindPTTL
	KindExpire
	KindKeys
	KindPing
)

// Command is the parsed, typed form of one request frame. Only the fields
// relevant to Kind are populated; the zero value of the rest is harmless.
type Command struct {
	Kind Kind

	Key  string
	Keys []string // DEL

	// SET
	Value     []byte
	Behaviour keyspace.SetBehaviour
	ReturnOld bool
	HasExpiry bool
	Expiry    time.Duration
	KeepTTL   bool

	// EXPIRE
	Seconds         int64
	ExpireBehaviour keyspace.ExpireBehaviour

	// KEYS / CONFIG GET
	Glob string

	// PING
	Echo string
}
