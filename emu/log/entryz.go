package log

import (
	"fmt"
	"math"
	"sync"
	"time"

	"gopkg.in/Sirupsen/logrus.v0"
)

const maxZFields = 16

// EntryZ is a log entry built field by field. A nil *EntryZ is valid and
// discards everything, so callers never check whether a level is enabled.
type EntryZ struct {
	lvl Level
	mod Module
	msg string

	zfbuf [maxZFields]ZField
	zfidx int
}

var entryPool = sync.Pool{
	New: func() any { return new(EntryZ) },
}

func newEntryZ() *EntryZ {
	z := entryPool.Get().(*EntryZ)
	z.zfidx = 0
	return z
}

func (z *EntryZ) add(f ZField) *EntryZ {
	if z == nil {
		return nil
	}
	if z.zfidx < maxZFields {
		z.zfbuf[z.zfidx] = f
		z.zfidx++
	}
	return z
}

func (z *EntryZ) num(k fieldKind, key string, v uint64) *EntryZ {
	return z.add(ZField{Key: key, kind: k, num: v})
}

func (z *EntryZ) String(key, val string) *EntryZ {
	return z.add(ZField{Key: key, kind: kindString, str: val})
}

func (z *EntryZ) Bool(key string, val bool) *EntryZ {
	var b uint64
	if val {
		b = 1
	}
	return z.num(kindBool, key, b)
}

func (z *EntryZ) Int(key string, val int) *EntryZ       { return z.num(kindInt, key, uint64(val)) }
func (z *EntryZ) Int32(key string, val int32) *EntryZ   { return z.num(kindInt, key, uint64(val)) }
func (z *EntryZ) Uint(key string, val uint64) *EntryZ   { return z.num(kindUint, key, val) }
func (z *EntryZ) Uint8(key string, val uint8) *EntryZ   { return z.num(kindUint, key, uint64(val)) }
func (z *EntryZ) Hex8(key string, val uint8) *EntryZ    { return z.num(kindHex8, key, uint64(val)) }
func (z *EntryZ) Float(key string, val float64) *EntryZ { return z.num(kindFloat, key, math.Float64bits(val)) }

func (z *EntryZ) Duration(key string, val time.Duration) *EntryZ {
	return z.num(kindDuration, key, uint64(val))
}

func (z *EntryZ) Error(key string, err error) *EntryZ {
	return z.add(ZField{Key: key, kind: kindError, ref: err})
}

func (z *EntryZ) Stringer(key string, val fmt.Stringer) *EntryZ {
	return z.add(ZField{Key: key, kind: kindStringer, ref: val})
}

// Blob logs val hex-encoded.
func (z *EntryZ) Blob(key string, val []byte) *EntryZ {
	return z.add(ZField{Key: key, kind: kindBlob, ref: val})
}

// End emits the entry. Panic entries panic and fatal entries exit the
// process, regardless of the output being discarded.
func (z *EntryZ) End() {
	if z == nil {
		return
	}
	for _, c := range contexts {
		c.AddLogContext(z)
	}

	fields := make(logrus.Fields, z.zfidx+1)
	fields["_mod"] = modNames[z.mod]
	for i := range z.zfbuf[:z.zfidx] {
		fields[z.zfbuf[i].Key] = z.zfbuf[i].Value()
	}
	lvl, msg := z.lvl, z.msg
	clear(z.zfbuf[:z.zfidx])
	entryPool.Put(z)

	entry := logrus.WithFields(fields)
	switch lvl {
	case PanicLevel:
		entry.Panic(msg)
	case FatalLevel:
		entry.Fatal(msg)
	case ErrorLevel:
		entry.Error(msg)
	case WarnLevel:
		entry.Warn(msg)
	case InfoLevel:
		entry.Info(msg)
	default:
		entry.Debug(msg)
	}
}
