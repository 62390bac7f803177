// Package executor applies a parsed Command to a Keyspace and produces the
// reply Value.
package executor

import (
	"time"

	"github.com/akashmaji946/redikv/internal/command"
	"github.com/akashmaji946/redikv/internal/keyspace"
	"github.com/akashmaji946/redikv/internal/resp"
)

// Execute is the total (Command, Keyspace) -> Value function. It is
// effectful only through ks and never blocks on I/O.
func Execute(cmd command.Command, ks *keyspace.Keyspace) resp.Value {
	switch cmd.Kind {
	case command.KindGet:
		v, ok := ks.Get(cmd.Key)
		if !ok {
			return resp.NewNullString()
		}
		return resp.NewBulkString(v)

	case command.KindSet:
		res := ks.Set(cmd.Key, cmd.Value, keyspace.SetOptions{
			Behaviour: cmd.Behaviour,
			HasExpiry: cmd.HasExpiry,
			Expiry:    cmd.Expiry,
			KeepTTL:   cmd.KeepTTL,
		})
		if cmd.ReturnOld {
			if !res.HadPrior {
				return resp.NewNullString()
			}
			return resp.NewBulkString(res.PriorValue)
		}
		if !res.Applied {
			return resp.NewNullString()
		}
		return resp.NewSimpleString("OK")

	case command.KindDel:
		n := ks.Delete(cmd.Keys)
		return resp.NewInteger(int64(n))

	case command.KindTTL:
		return resp.NewInteger(ks.TTLSeconds(cmd.Key))

	case command.KindPTTL:
		return resp.NewInteger(ks.TTLMillis(cmd.Key))

	case command.KindExpire:
		applied := ks.SetExpire(cmd.Key, time.Duration(cmd.Seconds)*time.Second, cmd.ExpireBehaviour)
		if applied {
			return resp.NewInteger(1)
		}
		return resp.NewInteger(0)

	case command.KindKeys:
		keys := ks.Keys(cmd.Glob)
		items := make([]resp.Value, len(keys))
		for i, k := range keys {
			items[i] = resp.NewBulkString([]byte(k))
		}
		return resp.NewArray(items)

	case command.KindCommand, command.KindCommandDocs, command.KindConfigGet:
		return resp.NewArray(nil)

	case command.KindPing:
		if cmd.Echo != "" {
			return resp.NewBulkString([]byte(cmd.Echo))
		}
		return resp.NewSimpleString("PONG")

	default:
		// Reaching here would be a parser/executor mismatch — an internal
		// invariant violation, not a client-facing error.
		panic("executor: unhandled command kind")
	}
}
