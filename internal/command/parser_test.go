package command

import (
	"testing"
	"time"

	"github.com/akashmaji946/redikv/internal/keyspace"
	"github.com/akashmaji946/redikv/internal/resp"
)

func arr(items ...resp.Value) resp.Value { return resp.NewArray(items) }
func bulk(s string) resp.Value           { return resp.NewBulkString([]byte(s)) }

func TestParseGet(t *testing.T) {
	cmd, err := Parse(arr(bulk("GET"), bulk("foo")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Kind != KindGet || cmd.Key != "foo" {
		t.Fatalf("got %+v", cmd)
	}
}

func TestParseSetWithFlags(t *testing.T) {
	cmd, err := Parse(arr(bulk("SET"), bulk("foo"), bulk("bar"), bulk("NX"), bulk("EX"), bulk("10")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Kind != KindSet || cmd.Key != "foo" || string(cmd.Value) != "bar" {
		t.Fatalf("got %+v", cmd)
	}
	if cmd.Behaviour != keyspace.OnlyIfNotExists {
		t.Fatalf("expected NX behaviour, got %v", cmd.Behaviour)
	}
	if !cmd.HasExpiry || cmd.Expiry != 10*time.Second {
		t.Fatalf("expected 10s expiry, got %+v", cmd)
	}
}

func TestParseSetKeepTTL(t *testing.T) {
	cmd, err := Parse(arr(bulk("SET"), bulk("foo"), bulk("bar"), bulk("KEEPTTL")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cmd.KeepTTL {
		t.Fatal("expected KeepTTL to be set")
	}
}

func TestParseSetPastEXAT(t *testing.T) {
	past := strconvI(time.Now().Add(-time.Hour).Unix())
	cmd, err := Parse(arr(bulk("SET"), bulk("foo"), bulk("bar"), bulk("EXAT"), bulk(past)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.HasExpiry {
		t.Fatal("expected a past EXAT to leave HasExpiry false")
	}
}

func TestParseExpireFlags(t *testing.T) {
	cmd, err := Parse(arr(bulk("EXPIRE"), bulk("foo"), bulk("100"), bulk("GT")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Kind != KindExpire || cmd.Seconds != 100 || cmd.ExpireBehaviour != keyspace.OnlyIfGreater {
		t.Fatalf("got %+v", cmd)
	}
}

func TestParseCommandSubcommandJoin(t *testing.T) {
	cmd, err := Parse(arr(bulk("COMMAND"), bulk("DOCS")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Kind != KindCommandDocs {
		t.Fatalf("got %+v", cmd)
	}
}

func TestParseConfigGetRequiresSubcommand(t *testing.T) {
	_, err := Parse(arr(bulk("CONFIG"), bulk("SET"), bulk("maxmemory"), bulk("0")))
	if err == nil {
		t.Fatal("expected an error for CONFIG SET")
	}
}

func TestParseUnknownVerb(t *testing.T) {
	_, err := Parse(arr(bulk("FROBNICATE")))
	if err != ErrUnknownVerb {
		t.Fatalf("got %v, want ErrUnknownVerb", err)
	}
}

func TestParseDelRequiresAtLeastOneKey(t *testing.T) {
	_, err := Parse(arr(bulk("DEL")))
	if err != ErrExpectedAny {
		t.Fatalf("got %v, want ErrExpectedAny", err)
	}
}

func strconvI(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	if n == 0 {
		i--
		buf[i] = '0'
	}
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
