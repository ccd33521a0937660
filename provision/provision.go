// Package provision materializes the engine's bundled data files into a
// writable directory the engine can open.
package provision

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/ephemeris-bridge/errors"
)

// DefaultPattern matches the engine's planetary and lunar data files.
const DefaultPattern = `.*\.se1`

// Provisioner makes data files available and returns their directory.
// Ensure must be idempotent.
type Provisioner interface {
	Ensure(pattern string) (string, error)
}

// Option configures a Dir.
type Option func(*Dir)

// WithLogger sets the logger. Logging is off by default.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dir) {
		if l != nil {
			d.log = l
		}
	}
}

// Dir copies matching files from a read-only source into a destination
// directory. Files already present with the same size are left alone, and
// new files appear atomically via rename.
type Dir struct {
	src  fs.FS
	dest string
	log  *zap.Logger
	mu   sync.Mutex
}

var _ Provisioner = (*Dir)(nil)

// NewDir creates a provisioner copying from src into dest.
func NewDir(src fs.FS, dest string, opts ...Option) *Dir {
	d := &Dir{src: src, dest: dest, log: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Ensure copies every source file whose base name fully matches pattern and
// returns the absolute destination path. An empty pattern means
// DefaultPattern. Subdirectories of the source are preserved.
func (d *Dir) Ensure(pattern string) (string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return "", errors.New(errors.PhaseProvision, errors.KindProvisioning).
			Param("pattern").
			Value(pattern).
			Cause(err).
			Detail("invalid file pattern").
			Build()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	dest, err := filepath.Abs(d.dest)
	if err != nil {
		return "", errors.ProvisioningFailed(fmt.Sprintf("resolve %q", d.dest), err)
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", errors.ProvisioningFailed(fmt.Sprintf("create %q", dest), err)
	}

	var copied, kept int
	err = fs.WalkDir(d.src, ".", func(name string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !entry.Type().IsRegular() || !re.MatchString(path.Base(name)) {
			return nil
		}
		wrote, err := d.copyFile(name, filepath.Join(dest, filepath.FromSlash(name)))
		if err != nil {
			return err
		}
		if wrote {
			copied++
		} else {
			kept++
		}
		return nil
	})
	if err != nil {
		return "", errors.ProvisioningFailed("copy data files", err)
	}

	d.log.Info("data files provisioned",
		zap.String("dest", dest),
		zap.String("pattern", pattern),
		zap.Int("copied", copied),
		zap.Int("kept", kept))
	return dest, nil
}

// copyFile writes name to target unless target already has the same size.
func (d *Dir) copyFile(name, target string) (bool, error) {
	info, err := fs.Stat(d.src, name)
	if err != nil {
		return false, err
	}
	if existing, err := os.Stat(target); err == nil && existing.Mode().IsRegular() && existing.Size() == info.Size() {
		return false, nil
	}

	in, err := d.src.Open(name)
	if err != nil {
		return false, err
	}
	defer in.Close()

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return false, err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return false, fmt.Errorf("copy %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return false, err
	}
	if err := tmp.Close(); err != nil {
		return false, err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return false, err
	}
	d.log.Debug("data file written", zap.String("file", name), zap.Int64("bytes", info.Size()))
	return true, nil
}

// Existing is a provisioner for a directory that already holds the data
// files. Ensure only checks that it exists.
type Existing string

// Ensure returns the directory as an absolute path.
func (e Existing) Ensure(string) (string, error) {
	dir, err := filepath.Abs(string(e))
	if err != nil {
		return "", errors.ProvisioningFailed(fmt.Sprintf("resolve %q", string(e)), err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", errors.ProvisioningFailed(fmt.Sprintf("data directory %q", dir), err)
	}
	if !info.IsDir() {
		return "", errors.ProvisioningFailed(fmt.Sprintf("%q is not a directory", dir), nil)
	}
	return dir, nil
}
