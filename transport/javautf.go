package transport

import (
	"fmt"
	"unicode/utf16"
)

// The wire format is the historical "modified UTF-8" used by Java's
// DataOutputStream.writeUTF: U+0000 takes two bytes and characters outside
// the BMP are encoded as a CESU-8 surrogate pair (3 bytes per surrogate).
// Keeping it byte-compatible lets the original presentation layer talk to
// this relay unchanged.

const surrSelf = 0x10000

// appendModifiedUTF8 appends the encoded form of s to dst.
func appendModifiedUTF8(dst []byte, s string) []byte {
	for _, r := range s {
		switch {
		case r >= 0x01 && r <= 0x7F:
			dst = append(dst, byte(r))
		case r <= 0x7FF:
			// includes U+0000, which Java refuses to encode as a bare zero byte
			dst = append(dst, 0xC0|byte(r>>6), 0x80|byte(r&0x3F))
		case r <= 0xFFFF:
			dst = appendThreeByte(dst, r)
		default:
			hi, lo := utf16.EncodeRune(r)
			dst = appendThreeByte(dst, hi)
			dst = appendThreeByte(dst, lo)
		}
	}
	return dst
}

func appendThreeByte(dst []byte, r rune) []byte {
	return append(dst, 0xE0|byte(r>>12), 0x80|byte((r>>6)&0x3F), 0x80|byte(r&0x3F))
}

// decodeModifiedUTF8 converts an encoded payload back into a string,
// recombining CESU-8 surrogate pairs into single runes.
func decodeModifiedUTF8(b []byte) (string, error) {
	out := make([]rune, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c < 0x80:
			out = append(out, rune(c))
			i++
		case c&0xE0 == 0xC0:
			if i+1 >= len(b) || b[i+1]&0xC0 != 0x80 {
				return "", fmt.Errorf("truncated 2-byte sequence at offset %d", i)
			}
			out = append(out, rune(c&0x1F)<<6|rune(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0:
			if i+2 >= len(b) || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 {
				return "", fmt.Errorf("truncated 3-byte sequence at offset %d", i)
			}
			r := rune(c&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)
			i += 3
			if utf16.IsSurrogate(r) && r < 0xDC00 {
				lo, n, err := decodeLowSurrogate(b[i:])
				if err != nil {
					return "", err
				}
				r = utf16.DecodeRune(r, lo)
				i += n
			}
			out = append(out, r)
		default:
			return "", fmt.Errorf("malformed byte 0x%02x at offset %d", c, i)
		}
	}
	return string(out), nil
}

func decodeLowSurrogate(b []byte) (rune, int, error) {
	if len(b) < 3 || b[0]&0xF0 != 0xE0 || b[1]&0xC0 != 0x80 || b[2]&0xC0 != 0x80 {
		return 0, 0, fmt.Errorf("high surrogate not followed by low surrogate")
	}
	r := rune(b[0]&0x0F)<<12 | rune(b[1]&0x3F)<<6 | rune(b[2]&0x3F)
	if r < 0xDC00 || r > 0xDFFF {
		return 0, 0, fmt.Errorf("high surrogate not followed by low surrogate")
	}
	return r, 3, nil
}
