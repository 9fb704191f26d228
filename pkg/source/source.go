package source

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/punktf/pkg/errors"
	"github.com/arthur-debert/punktf/pkg/filesystem"
	"github.com/arthur-debert/punktf/pkg/logging"
	"github.com/arthur-debert/punktf/pkg/types"
)

const (
	// EnvSource names the environment variable consulted when no source is
	// given explicitly.
	EnvSource = "PUNKTF_SOURCE"

	ProfilesDirName = "profiles"
	DotfilesDirName = "dotfiles"
)

// Source is a validated source tree.
type Source struct {
	Root string `json:"root" yaml:"root"`
}

// ProfilesDir returns the absolute path of the profiles directory.
func (s *Source) ProfilesDir() string {
	return filepath.Join(s.Root, ProfilesDirName)
}

// DotfilesDir returns the absolute path of the dotfiles directory.
func (s *Source) DotfilesDir() string {
	return filepath.Join(s.Root, DotfilesDirName)
}

// DotfilePath returns the absolute path of a dotfile's source below the
// dotfiles directory.
func (s *Source) DotfilePath(rel string) string {
	return filepath.Join(s.DotfilesDir(), rel)
}

// Finder discovers the source root. Lookup order: the explicit value, then
// $PUNKTF_SOURCE, then the working directory.
type Finder struct {
	FS     types.FS
	Getenv func(string) string
	Getwd  func() (string, error)
}

// NewFinder returns a finder backed by the OS.
func NewFinder() *Finder {
	return &Finder{
		FS:     filesystem.NewOS(),
		Getenv: os.Getenv,
		Getwd:  os.Getwd,
	}
}

// Find resolves and validates the source root. explicit is typically the
// --source flag and may be empty.
func (f *Finder) Find(explicit string) (*Source, error) {
	logger := logging.GetLogger("source")

	root, from := explicit, "flag"
	if root == "" && f.Getenv != nil {
		root, from = f.Getenv(EnvSource), "environment"
	}
	if root == "" {
		if f.Getwd == nil {
			return nil, errors.New(errors.ErrSourceNotFound, "no source directory given")
		}
		wd, err := f.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrSourceNotFound, "cannot determine working directory")
		}
		root, from = wd, "working directory"
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrSourceNotFound, "invalid source path %q", root)
	}

	logger.Debug().Str("root", abs).Str("from", from).Msg("Source directory selected")
	return Open(f.FS, abs)
}

// Open validates root as a source tree.
func Open(fsys types.FS, root string) (*Source, error) {
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	info, err := fsys.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrSourceNotFound, "source directory %q does not exist", root).
				WithDetail("root", root)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot access source directory %q", root)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrSourceInvalid, "source %q is not a directory", root).
			WithDetail("root", root)
	}

	src := &Source{Root: filepath.Clean(root)}
	for _, dir := range []string{src.ProfilesDir(), src.DotfilesDir()} {
		info, err := fsys.Stat(dir)
		if err != nil || !info.IsDir() {
			return nil, errors.Newf(errors.ErrSourceInvalid, "source %q has no %s directory", root, filepath.Base(dir)).
				WithDetail("root", root).
				WithDetail("missing", dir)
		}
	}
	return src, nil
}
