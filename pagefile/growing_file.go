package pagefile

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

const (
	growingFileInitialSize = 64 << 10 // 64 KiB
	growingFileMaxStep     = 1 << 30  // 1 GiB, matches kvdb/file.MmapFile's oneGB cap
)

// growingFile is a memory-mapped, self-extending file: writes past the
// current mapping grow the file (and re-map it) geometrically, doubling up
// to growingFileMaxStep at a time. Adapted from kvdb/file.MmapFile, which
// backs the teacher's value log the same way.
type growingFile struct {
	fd   *os.File
	data []byte
}

func openGrowingFile(path string) (*growingFile, error) {
	fd, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0666)
	if err != nil {
		return nil, errors.Wrapf(err, "open %q", path)
	}

	info, err := fd.Stat()
	if err != nil {
		fd.Close()
		return nil, errors.Wrapf(err, "stat %q", path)
	}

	size := info.Size()
	if size == 0 {
		size = growingFileInitialSize
		if err := fd.Truncate(size); err != nil {
			fd.Close()
			return nil, errors.Wrapf(err, "truncate %q", path)
		}
	}

	data, err := mmapFile(fd, true, size)
	if err != nil {
		fd.Close()
		return nil, errors.Wrapf(err, "mmap %q", path)
	}

	return &growingFile{fd: fd, data: data}, nil
}

func (g *growingFile) growTo(size int64) error {
	if err := g.fd.Truncate(size); err != nil {
		return errors.Wrapf(err, "truncate %q", g.fd.Name())
	}
	data, err := remapFile(g.data, g.fd, size)
	if err != nil {
		return errors.Wrapf(err, "remap %q", g.fd.Name())
	}
	g.data = data
	return nil
}

// ensure grows the mapping, if needed, so that byte index end-1 is valid.
func (g *growingFile) ensure(end int64) error {
	if end <= int64(len(g.data)) {
		return nil
	}
	growBy := int64(len(g.data))
	if growBy > growingFileMaxStep {
		growBy = growingFileMaxStep
	}
	need := end - int64(len(g.data))
	if growBy < need {
		growBy = need
	}
	return g.growTo(int64(len(g.data)) + growBy)
}

func (g *growingFile) writeAt(offset int64, buf []byte) error {
	end := offset + int64(len(buf))
	if err := g.ensure(end); err != nil {
		return err
	}
	copy(g.data[offset:end], buf)
	return nil
}

func (g *growingFile) readAt(offset int64, n int) ([]byte, error) {
	end := offset + int64(n)
	if offset < 0 || end > int64(len(g.data)) {
		return nil, io.ErrUnexpectedEOF
	}
	return g.data[offset:end], nil
}

func (g *growingFile) sync() error {
	return msyncFile(g.data)
}

// truncateTo shrinks (or grows) the file and its mapping to exactly size
// bytes, dropping the geometric over-allocation so the file's length on
// disk reflects the logical length a reopen should see.
func (g *growingFile) truncateTo(size int64) error {
	if err := g.sync(); err != nil {
		return err
	}
	if size == int64(len(g.data)) {
		return nil
	}
	return g.growTo(size)
}

func (g *growingFile) close() error {
	if err := g.sync(); err != nil {
		return err
	}
	if err := munmapFile(g.data); err != nil {
		return err
	}
	return g.fd.Close()
}
