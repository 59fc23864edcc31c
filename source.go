package csvinfer

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Source is an input that can be read from the start more than once.
// Analysis opens a source twice: once to count rows and once to sample them.
type Source interface {
	// Open returns a decompressed stream positioned at the first byte of the table.
	// The caller closes it before opening the source again.
	Open() (io.ReadCloser, error)
	// FileType returns the tabular format of the source
	FileType() FileType
	// Name identifies the source in results, logs and errors
	Name() string
}

// FileSource reads a file from disk, reopening it for every pass
type FileSource struct {
	path        string
	fileType    FileType
	compression CompressionType
}

// NewFileSource creates a source for path. Format and compression are taken from the
// extension, e.g. "orders.tsv.gz".
func NewFileSource(path string) *FileSource {
	ft, compression := DetectFileType(path)
	return &FileSource{
		path:        path,
		fileType:    ft,
		compression: compression,
	}
}

// Open opens the file and wraps it with the matching decompressor
func (s *FileSource) Open() (io.ReadCloser, error) {
	f, err := os.Open(s.path) //nolint:gosec // User-provided path is necessary for file operations
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	if s.compression == CompressionNone {
		return f, nil
	}

	reader, cleanup, err := newDecompressReader(f, s.compression)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &decompressedReadCloser{Reader: reader, cleanup: cleanup, underlying: f}, nil
}

// FileType returns the format detected from the file name
func (s *FileSource) FileType() FileType {
	return s.fileType
}

// Compression returns the compression detected from the file name
func (s *FileSource) Compression() CompressionType {
	return s.compression
}

// Name returns the base name of the file
func (s *FileSource) Name() string {
	return filepath.Base(s.path)
}

// Path returns the file path
func (s *FileSource) Path() string {
	return s.path
}

// SeekerSource reads an in-memory or otherwise seekable stream, seeking back to the start
// for every pass. The underlying stream is never closed.
type SeekerSource struct {
	rs          io.ReadSeeker
	name        string
	fileType    FileType
	compression CompressionType
}

// NewSeekerSource creates a source over rs
func NewSeekerSource(rs io.ReadSeeker, name string, fileType FileType, compression CompressionType) *SeekerSource {
	return &SeekerSource{
		rs:          rs,
		name:        name,
		fileType:    fileType,
		compression: compression,
	}
}

// Open seeks to the start and wraps the stream with the matching decompressor
func (s *SeekerSource) Open() (io.ReadCloser, error) {
	if _, err := s.rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotResettable, err)
	}

	reader, cleanup, err := newDecompressReader(s.rs, s.compression)
	if err != nil {
		return nil, err
	}
	return &decompressedReadCloser{Reader: reader, cleanup: cleanup}, nil
}

// FileType returns the format given at construction
func (s *SeekerSource) FileType() FileType {
	return s.fileType
}

// Name returns the name given at construction
func (s *SeekerSource) Name() string {
	return s.name
}

// decompressedReadCloser releases the decompressor and then the underlying stream, if owned
type decompressedReadCloser struct {
	io.Reader
	cleanup    func() error
	underlying io.Closer
}

// Close implements io.Closer
func (d *decompressedReadCloser) Close() error {
	var errs []error
	if d.cleanup != nil {
		errs = append(errs, d.cleanup())
	}
	if d.underlying != nil {
		errs = append(errs, d.underlying.Close())
	}
	return errors.Join(errs...)
}

// FSSource reads a file from an fs.FS such as an embed.FS, reopening it for every pass
type FSSource struct {
	fsys        fs.FS
	name        string
	fileType    FileType
	compression CompressionType
}

// NewFSSource creates a source for name inside fsys. Format and compression are taken from
// the extension.
func NewFSSource(fsys fs.FS, name string) *FSSource {
	ft, compression := DetectFileType(name)
	return &FSSource{
		fsys:        fsys,
		name:        name,
		fileType:    ft,
		compression: compression,
	}
}

// Open opens the file and wraps it with the matching decompressor
func (s *FSSource) Open() (io.ReadCloser, error) {
	f, err := s.fsys.Open(s.name)
	if err != nil {
		return nil, fmt.Errorf("failed to open FS file: %w", err)
	}

	reader, cleanup, err := newDecompressReader(f, s.compression)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &decompressedReadCloser{Reader: reader, cleanup: cleanup, underlying: f}, nil
}

// FileType returns the format detected from the file name
func (s *FSSource) FileType() FileType {
	return s.fileType
}

// Name returns the path of the file inside the filesystem
func (s *FSSource) Name() string {
	return s.name
}

// collectFSSources walks fsys and returns a source for every supported file, in lexical order
func collectFSSources(fsys fs.FS) ([]Source, error) {
	if fsys == nil {
		return nil, errors.New("FS cannot be nil")
	}

	var sources []Source
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsSupportedFile(path) {
			sources = append(sources, NewFSSource(fsys, path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk filesystem: %w", err)
	}
	if len(sources) == 0 {
		return nil, errors.New("no supported files found in filesystem")
	}
	return sources, nil
}
