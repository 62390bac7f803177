package resp

// Encode appends the wire representation of v to dst and returns the
// extended slice. Length prefixes are written digit-by-digit directly into
// dst; no intermediate string formatting is used.
func (v Value) Encode(dst []byte) []byte {
	switch v.Type {
	case SimpleString:
		dst = append(dst, '+')
		dst = append(dst, v.Str...)
		return append(dst, '\r', '\n')
	case Error:
		dst = append(dst, '-')
		dst = append(dst, v.Str...)
		return append(dst, '\r', '\n')
	case Integer:
		dst = append(dst, ':')
		dst = appendInt(dst, v.Int)
		return append(dst, '\r', '\n')
	case BulkString:
		if v.Null {
			return append(dst, '$', '-', '1', '\r', '\n')
		}
		dst = append(dst, '$')
		dst = appendInt(dst, int64(len(v.Str)))
		dst = append(dst, '\r', '\n')
		dst = append(dst, v.Str...)
		return append(dst, '\r', '\n')
	case Array:
		if v.Null {
			return append(dst, '*', '-', '1', '\r', '\n')
		}
		dst = append(dst, '*')
		dst = appendInt(dst, int64(len(v.Items)))
		dst = append(dst, '\r', '\n')
		for _, item := range v.Items {
			dst = item.Encode(dst)
		}
		return dst
	default:
		return dst
	}
}

// appendInt writes the base-10 representation of n to dst without going
// through strconv or fmt, and without allocating an intermediate string.
func appendInt(dst []byte, n int64) []byte {
	if n == 0 {
		return append(dst, '0')
	}
	neg := n < 0
	if neg {
		n = -n
	}

	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return append(dst, buf[i:]...)
}
