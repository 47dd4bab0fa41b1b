package pagefile

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// Value is an append-only file of fixed-width typed records, as specified
// by the original value<T>. Records are written back to back; Append
// returns the byte offset a later Get must use to read the same value back.
//
// The file is backed by a self-growing mmap rather than plain seek+write
// (see growingFile), which is how the teacher's own append-only value log
// is built.
type Value[T any] struct {
	gf          *growingFile
	writeOffset uint64
	encoder     Encoder[T]
	openErr     error
	closed      bool
}

// ValueOption configures a Value[T] at Open time.
type ValueOption[T any] func(*Value[T])

// WithEncoder overrides the default RawEncoder[T].
func WithEncoder[T any](enc Encoder[T]) ValueOption[T] {
	return func(v *Value[T]) { v.encoder = enc }
}

// Open opens (creating if necessary) the value file at path.
func Open[T any](path string, opts ...ValueOption[T]) (*Value[T], error) {
	v := &Value[T]{encoder: RawEncoder[T]{}}
	for _, opt := range opts {
		opt(v)
	}

	// The logical length is the file's size before growingFile pads a new,
	// empty file out to its initial mapping size.
	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	} else if !os.IsNotExist(err) {
		v.openErr = errors.Wrapf(err, "stat value file %q", path)
		return v, v.openErr
	}

	gf, err := openGrowingFile(path)
	if err != nil {
		v.openErr = errors.Wrapf(err, "open value file %q", path)
		return v, v.openErr
	}
	v.gf = gf
	v.writeOffset = uint64(size)

	return v, nil
}

// IsOpen reports whether the value file is usable.
func (v *Value[T]) IsOpen() bool {
	return v.gf != nil && v.openErr == nil && !v.closed
}

func (v *Value[T]) notOpenErr() error {
	if v.openErr != nil {
		return v.openErr
	}
	return ErrNotOpen
}

// Append encodes val with the default encoder and writes it at the current
// end of file, returning the offset it was written at.
func (v *Value[T]) Append(val T) (uint64, error) {
	return v.AppendWith(val, v.encoder)
}

// AppendWith is Append with an explicit encoder, overriding the default.
func (v *Value[T]) AppendWith(val T, enc Encoder[T]) (uint64, error) {
	if !v.IsOpen() {
		return 0, v.notOpenErr()
	}

	data := enc.Encode(val)
	offset := v.writeOffset
	if err := v.gf.writeAt(int64(offset), data); err != nil {
		return 0, errors.Wrapf(err, "append value at offset %d", offset)
	}
	v.writeOffset += uint64(len(data))
	return offset, nil
}

// Get reads back the value written at offset, using the default encoder.
func (v *Value[T]) Get(offset uint64) (T, error) {
	return v.GetWith(offset, v.encoder)
}

// GetWith is Get with an explicit encoder.
func (v *Value[T]) GetWith(offset uint64, enc Encoder[T]) (T, error) {
	var zero T
	if !v.IsOpen() {
		return zero, v.notOpenErr()
	}

	size := enc.Size()
	if offset+uint64(size) > v.writeOffset {
		return zero, errors.Wrapf(io.ErrUnexpectedEOF, "read value at offset %d", offset)
	}

	buf, err := v.gf.readAt(int64(offset), size)
	if err != nil {
		return zero, errors.Wrapf(err, "read value at offset %d", offset)
	}
	return enc.Decode(buf), nil
}

// Close flushes the logical tail of the file (dropping the geometric
// over-allocation growingFile may have reserved) and releases the mapping.
func (v *Value[T]) Close() error {
	if v.gf == nil {
		return nil
	}
	truncErr := v.gf.truncateTo(int64(v.writeOffset))
	closeErr := v.gf.close()
	v.closed = true
	if truncErr != nil {
		return truncErr
	}
	return closeErr
}
