package profile

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/punktf/pkg/errors"
	"github.com/arthur-debert/punktf/pkg/filesystem"
	"github.com/arthur-debert/punktf/pkg/logging"
	"github.com/arthur-debert/punktf/pkg/types"
	"github.com/rs/zerolog"
)

// Resolver loads profiles from a profiles directory and merges them with
// caller-supplied layers.
type Resolver struct {
	dir    string
	fs     types.FS
	logger zerolog.Logger
}

// NewResolver creates a resolver reading profiles from dir. A nil fsys
// uses the OS filesystem.
func NewResolver(dir string, fsys types.FS) *Resolver {
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	return &Resolver{
		dir:    dir,
		fs:     fsys,
		logger: logging.GetLogger("profile.resolver"),
	}
}

// Resolve merges pre, the named profile with its transitive imports, and
// post into one effective profile. pre layers rank above the profile chain,
// post layers below it.
func (r *Resolver) Resolve(ctx context.Context, pre []Layer, name string, post []Layer) (*Effective, error) {
	done := logging.LogOperationStart(r.logger, "resolve profile")
	defer done()

	b := &Builder{}
	for _, layer := range pre {
		b.Add(layer)
	}

	w := &walk{
		resolver: r,
		builder:  b,
		added:    make(map[string]bool),
		onStack:  make(map[string]bool),
	}
	if err := w.visit(ctx, name); err != nil {
		return nil, err
	}

	for _, layer := range post {
		b.Add(layer)
	}

	eff := b.Finish()
	eff.Name = name
	r.logger.Debug().
		Strs("layers", eff.Layers).
		Str("target", eff.Target).
		Str("targetFrom", eff.TargetFrom).
		Int("dotfiles", len(eff.Dotfiles)).
		Msg("Profile resolved")
	return eff, nil
}

// walk performs the pre-order import traversal for one Resolve call.
type walk struct {
	resolver *Resolver
	builder  *Builder
	stack    []string
	onStack  map[string]bool
	added    map[string]bool
}

func (w *walk) visit(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if w.onStack[name] {
		chain := append(append([]string(nil), w.stack...), name)
		return errors.Newf(errors.ErrProfileCycle, "profile import cycle: %s", strings.Join(chain, " -> ")).
			WithDetail("profile", name).
			WithDetail("chain", chain)
	}
	if w.added[name] {
		// Reached again through another branch; the first position stands.
		w.resolver.logger.Trace().Str("profile", name).Msg("Profile already layered, skipping")
		return nil
	}

	layer, err := w.resolver.Load(name)
	if err != nil {
		if len(w.stack) > 0 {
			if perr, ok := err.(*errors.PunktfError); ok {
				perr.WithDetail("importedBy", w.stack[len(w.stack)-1])
			}
		}
		return err
	}

	w.added[name] = true
	w.onStack[name] = true
	w.stack = append(w.stack, name)
	w.builder.Add(layer)

	for _, imported := range layer.Imports {
		if err := w.visit(ctx, imported); err != nil {
			return err
		}
	}

	w.stack = w.stack[:len(w.stack)-1]
	delete(w.onStack, name)
	return nil
}

// Load reads and decodes a single profile by name, without its imports.
func (r *Resolver) Load(name string) (Layer, error) {
	if err := validateName(name); err != nil {
		return Layer{}, invalid(name, err)
	}

	for _, ext := range Extensions {
		path := filepath.Join(r.dir, name+ext)
		info, err := r.fs.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Layer{}, errors.Wrapf(err, errors.ErrFileAccess, "cannot access profile %q", name).
				WithDetail("path", path)
		}
		if info.IsDir() {
			continue
		}
		return r.LoadFile(name, path)
	}

	return Layer{}, errors.Newf(errors.ErrProfileNotFound, "profile %q not found", name).
		WithDetail("profile", name).
		WithDetail("dir", r.dir)
}

// LoadFile decodes the profile document at path as layer name.
func (r *Resolver) LoadFile(name, path string) (Layer, error) {
	format, ok := FormatForPath(path)
	if !ok {
		return Layer{}, errors.Newf(errors.ErrProfileInvalid, "unsupported profile file %q", path).
			WithDetail("profile", name)
	}

	data, err := r.fs.ReadFile(path)
	if err != nil {
		return Layer{}, errors.Wrapf(err, errors.ErrFileAccess, "cannot read profile %q", name).
			WithDetail("path", path)
	}

	r.logger.Trace().Str("profile", name).Str("path", path).Str("format", string(format)).Msg("Loading profile")
	layer, err := Decode(name, data, format)
	if err != nil {
		if perr, ok := err.(*errors.PunktfError); ok {
			perr.WithDetail("path", path)
		}
		return Layer{}, err
	}
	return layer, nil
}

// List returns the names of all profiles in the profiles directory, sorted.
func (r *Resolver) List() ([]string, error) {
	entries, err := r.fs.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot read profiles directory").
			WithDetail("dir", r.dir)
	}

	seen := make(map[string]bool)
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := FormatForPath(entry.Name()); !ok {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// IsNotFound reports whether err is a missing-profile resolution error.
func IsNotFound(err error) bool { return errors.IsErrorCode(err, errors.ErrProfileNotFound) }

// IsInvalid reports whether err is a malformed-profile resolution error.
func IsInvalid(err error) bool { return errors.IsErrorCode(err, errors.ErrProfileInvalid) }

// IsCycle reports whether err is an import-cycle resolution error.
func IsCycle(err error) bool { return errors.IsErrorCode(err, errors.ErrProfileCycle) }
