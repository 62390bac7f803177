package command

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/akashmaji946/redikv/internal/keyspace"
	"github.com/akashmaji946/redikv/internal/resp"
)

// Parse errors are recoverable at the connection level: the caller sends
// one error reply and keeps serving the connection.
var (
	ErrUnknownVerb     = errors.New("command: unknown verb")
	ErrExpectedString  = errors.New("command: expected a string argument")
	ErrExpectedInteger = errors.New("command: expected an integer argument")
	ErrExpectedAny     = errors.New("command: expected at least one argument")
)

// Parse converts a decoded Array frame into a Command. v must be a
// non-null Array of BulkString/SimpleString elements.
func Parse(v resp.Value) (Command, error) {
	if v.Type != resp.Array || v.Null || len(v.Items) == 0 {
		return Command{}, ErrExpectedAny
	}

	p := &parser{items: v.Items}
	verb, ok := p.popString()
	if !ok {
		return Command{}, ErrExpectedString
	}
	verb = strings.ToUpper(verb)

	switch verb {
	case "COMMAND":
		return parseCommandFamily(p)
	case "CONFIG":
		return parseConfigFamily(p)
	case "GET":
		return parseGet(p)
	case "SET":
		return parseSet(p)
	case "DEL":
		return parseDel(p)
	case "TTL":
		return parseTTLLike(p, KindTTL)
	case "PTTL":
		return parseTTLLike(p, KindPTTL)
	case "EXPIRE":
		return parseExpire(p)
	case "KEYS":
		return parseKeys(p)
	case "PING":
		return parsePing(p)
	default:
		return Command{}, ErrUnknownVerb
	}
}

type parser struct {
	items []resp.Value
	pos   int
}

func (p *parser) remaining() int { return len(p.items) - p.pos }

func (p *parser) peek() (resp.Value, bool) {
	if p.pos >= len(p.items) {
		return resp.Value{}, false
	}
	return p.items[p.pos], true
}

func (p *parser) popString() (string, bool) {
	v, ok := p.peek()
	if !ok {
		return "", false
	}
	switch v.Type {
	case resp.BulkString, resp.SimpleString:
		if v.Null {
			return "", false
		}
		p.pos++
		return string(v.Str), true
	default:
		return "", false
	}
}

func (p *parser) popInt() (int64, bool) {
	s, ok := p.popString()
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseCommandFamily(p *parser) (Command, error) {
	sub, ok := p.popString()
	if !ok {
		return Command{Kind: KindCommand}, nil
	}
	if strings.ToUpper(sub) == "DOCS" {
		return Command{Kind: KindCommandDocs}, nil
	}
	// Unrecognized subcommand: still answer the stubbed empty-array shape
	// rather than erroring.
	return Command{Kind: KindCommand}, nil
}

func parseConfigFamily(p *parser) (Command, error) {
	sub, ok := p.popString()
	if !ok {
		return Command{}, ErrExpectedString
	}
	if strings.ToUpper(sub) != "GET" {
		return Command{}, ErrUnknownVerb
	}
	if p.remaining() == 0 {
		return Command{}, ErrExpectedAny
	}
	glob, _ := p.popString()
	return Command{Kind: KindConfigGet, Glob: glob}, nil
}

func parseGet(p *parser) (Command, error) {
	key, ok := p.popString()
	if !ok {
		return Command{}, ErrExpectedString
	}
	return Command{Kind: KindGet, Key: key}, nil
}

func parseDel(p *parser) (Command, error) {
	if p.remaining() == 0 {
		return Command{}, ErrExpectedAny
	}
	var keys []string
	for {
		k, ok := p.popString()
		if !ok {
			break
		}
		keys = append(keys, k)
	}
	return Command{Kind: KindDel, Keys: keys}, nil
}

func parseTTLLike(p *parser, kind Kind) (Command, error) {
	key, ok := p.popString()
	if !ok {
		return Command{}, ErrExpectedString
	}
	return Command{Kind: kind, Key: key}, nil
}

func parseKeys(p *parser) (Command, error) {
	glob, ok := p.popString()
	if !ok {
		return Command{}, ErrExpectedString
	}
	return Command{Kind: KindKeys, Glob: glob}, nil
}

func parsePing(p *parser) (Command, error) {
	echo, _ := p.popString()
	return Command{Kind: KindPing, Echo: echo}, nil
}

func parseSet(p *parser) (Command, error) {
	key, ok := p.popString()
	if !ok {
		return Command{}, ErrExpectedString
	}
	valStr, ok := p.popString()
	if !ok {
		return Command{}, ErrExpectedString
	}

	cmd := Command{Kind: KindSet, Key: key, Value: []byte(valStr), Behaviour: keyspace.Force}

	// EX/PX/EXAT/PXAT/KEEPTTL are mutually exclusive; a second one is a
	// parse error.
	ttlFlagSeen := false
	requireFreshTTLFlag := func() bool {
		if ttlFlagSeen {
			return false
		}
		ttlFlagSeen = true
		return true
	}

	for {
		flag, ok := p.popString()
		if !ok {
			break
		}
		switch strings.ToUpper(flag) {
		case "NX":
			cmd.Behaviour = keyspace.OnlyIfNotExists
		case "XX":
			cmd.Behaviour = keyspace.OnlyIfExists
		case "GET":
			cmd.ReturnOld = true
		case "KEEPTTL":
			if !requireFreshTTLFlag() {
				return Command{}, ErrExpectedAny
			}
			cmd.KeepTTL = true
		case "EX":
			n, ok := p.popInt()
			if !ok {
				return Command{}, ErrExpectedInteger
			}
			if !requireFreshTTLFlag() {
				return Command{}, ErrExpectedAny
			}
			cmd.HasExpiry = true
			cmd.Expiry = time.Duration(n) * time.Second
		case "PX":
			n, ok := p.popInt()
			if !ok {
				return Command{}, ErrExpectedInteger
			}
			if !requireFreshTTLFlag() {
				return Command{}, ErrExpectedAny
			}
			cmd.HasExpiry = true
			cmd.Expiry = time.Duration(n) * time.Millisecond
		case "EXAT":
			n, ok := p.popInt()
			if !ok {
				return Command{}, ErrExpectedInteger
			}
			if !requireFreshTTLFlag() {
				return Command{}, ErrExpectedAny
			}
			setAbsoluteExpiry(&cmd, time.Unix(n, 0))
		case "PXAT":
			n, ok := p.popInt()
			if !ok {
				return Command{}, ErrExpectedInteger
			}
			if !requireFreshTTLFlag() {
				return Command{}, ErrExpectedAny
			}
			setAbsoluteExpiry(&cmd, time.UnixMilli(n))
		default:
			return Command{}, ErrExpectedAny
		}
	}
	return cmd, nil
}

// setAbsoluteExpiry converts an EXAT/PXAT wall-clock deadline to a duration
// from now. A deadline already in the past yields HasExpiry=false (no new
// TTL installed) rather than treating it as immediate expiry.
func setAbsoluteExpiry(cmd *Command, deadline time.Time) {
	d := time.Until(deadline)
	if d <= 0 {
		cmd.HasExpiry = false
		return
	}
	cmd.HasExpiry = true
	cmd.Expiry = d
}

func parseExpire(p *parser) (Command, error) {
	key, ok := p.popString()
	if !ok {
		return Command{}, ErrExpectedString
	}
	seconds, ok := p.popInt()
	if !ok {
		return Command{}, ErrExpectedInteger
	}

	cmd := Command{Kind: KindExpire, Key: key, Seconds: seconds, ExpireBehaviour: keyspace.ExpireForce}

	for {
		flag, ok := p.popString()
		if !ok {
			break
		}
		switch strings.ToUpper(flag) {
		case "NX":
			cmd.ExpireBehaviour = keyspace.OnlyIfNoExpiry
		case "XX":
			cmd.ExpireBehaviour = keyspace.OnlyIfExpiry
		case "GT":
			cmd.ExpireBehaviour = keyspace.OnlyIfGreater
		case "LT":
			cmd.ExpireBehaviour = keyspace.OnlyIfLess
		default:
			return Command{}, ErrExpectedAny
		}
	}
	return cmd, nil
}
