package serial

import (
	"fmt"

	"github.com/scheerer/screen-ambilight/internal/lights"
)

// AppendMessage appends the wire form of c, three zero-padded decimal fields
// for red, green and blue, e.g. 007255010.
func AppendMessage(dst []byte, c lights.Color) []byte {
	for _, v := range [3]uint8{c.Red, c.Green, c.Blue} {
		dst = append(dst, '0'+v/100, '0'+v/10%10, '0'+v%10)
	}
	return dst
}

func Encode(c lights.Color) string {
	var buf [MessageSize]byte
	return string(AppendMessage(buf[:0], c))
}

// Decode parses a message the way the receiving firmware does.
func Decode(msg []byte) (lights.Color, error) {
	if len(msg) != MessageSize {
		return lights.Color{}, fmt.Errorf("message %q: want %d bytes, got %d", msg, MessageSize, len(msg))
	}

	var ch [3]uint8
	for i := range ch {
		v := 0
		for _, b := range msg[i*3 : i*3+3] {
			if b < '0' || b > '9' {
				return lights.Color{}, fmt.Errorf("message %q: invalid digit %q", msg, b)
			}
			v = v*10 + int(b-'0')
		}
		if v > 255 {
			return lights.Color{}, fmt.Errorf("message %q: channel %d out of range: %d", msg, i, v)
		}
		ch[i] = uint8(v)
	}
	return lights.Color{Red: ch[0], Green: ch[1], Blue: ch[2]}, nil
}
