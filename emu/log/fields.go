package log

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"time"
)

type fieldKind uint8

const (
	kindString fieldKind = iota
	kindBool
	kindInt
	kindUint
	kindHex8
	kindFloat
	kindDuration
	kindError
	kindStringer
	kindBlob
)

// ZField is a typed key/value pair recorded by an EntryZ. Scalars share
// num, everything else goes in ref.
type ZField struct {
	Key string

	kind fieldKind
	num  uint64
	str  string
	ref  any
}

// Value formats the field value the way it appears in the log output.
func (f *ZField) Value() string {
	switch f.kind {
	case kindString:
		return f.str
	case kindBool:
		return strconv.FormatBool(f.num != 0)
	case kindInt:
		return strconv.FormatInt(int64(f.num), 10)
	case kindUint:
		return strconv.FormatUint(f.num, 10)
	case kindHex8:
		return fmt.Sprintf("%02x", f.num)
	case kindFloat:
		return strconv.FormatFloat(math.Float64frombits(f.num), 'f', -1, 64)
	case kindDuration:
		return time.Duration(f.num).String()
	case kindError:
		if f.ref == nil {
			return "<nil>"
		}
		return f.ref.(error).Error()
	case kindStringer:
		return f.ref.(fmt.Stringer).String()
	case kindBlob:
		return hex.EncodeToString(f.ref.([]byte))
	}
	return ""
}
