package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/punktf/pkg/deployment"
	"github.com/arthur-debert/punktf/pkg/profile"
	"github.com/arthur-debert/punktf/pkg/source"
	"github.com/arthur-debert/punktf/pkg/template"
	"github.com/arthur-debert/punktf/pkg/types"
)

// run holds the state of one Deploy call.
type run struct {
	*Executor
	ctx     context.Context
	src     *source.Source
	profile *profile.Effective
	builder *deployment.Builder
	// written holds the targets this run has deployed, or would have in
	// dry-run, mapped to whether they are directories. They are replaced
	// without consulting the merge strategy.
	written map[string]bool
}

// deploy handles one configured dotfile. It returns a reason and true
// when the whole run must stop.
func (r *run) deploy(d types.Dotfile) (string, bool) {
	if err := r.ctx.Err(); err != nil {
		return err.Error(), true
	}

	sourcePath := r.src.DotfilePath(d.Path)
	target := d.TargetPath(r.profile.Target)

	logger := r.logger.With().Str("dotfile", d.Path).Str("target", target).Logger()
	logger.Debug().Msg("Processing dotfile")

	info, err := r.fs.Stat(sourcePath)
	if err == nil && info.IsDir() {
		return r.deployDir(d, sourcePath, target)
	}
	return r.deployFile(d, sourcePath, target, "")
}

func (r *run) deployDir(d types.Dotfile, sourcePath, target string) (string, bool) {
	if !r.claim(target, d, "") {
		return "", false
	}

	status := deployment.Success()
	if err := r.prepareDir(target); err != nil {
		status = deployment.Failed(err.Error())
	}

	var files []string
	if status.IsSuccess() {
		var err error
		if files, err = r.expand(sourcePath); err != nil {
			status = deployment.Failedf("cannot read directory %s: %v", sourcePath, err)
		}
	}

	r.builder.AddItem(target, d, status)
	if !status.IsSuccess() {
		r.logger.Warn().Str("target", target).Str("reason", status.Reason).Msg("Directory not deployed")
		return "", false
	}
	r.written[filepath.Clean(target)] = true

	for _, rel := range files {
		if err := r.ctx.Err(); err != nil {
			return err.Error(), true
		}
		// Children inherit everything from the directory entry.
		child := d
		child.Path = filepath.Join(d.Path, rel)
		if reason, stop := r.deployFile(child, filepath.Join(sourcePath, rel), filepath.Join(target, rel), target); stop {
			return reason, true
		}
	}
	return "", false
}

// deployFile deploys a single file, recorded as an item, or as a child of
// parent when parent is set.
func (r *run) deployFile(d types.Dotfile, sourcePath, target, parent string) (string, bool) {
	if !r.claim(target, d, parent) {
		return "", false
	}

	status, abort := r.fileAction(d, sourcePath, target)
	r.record(d, target, parent, status)
	if abort {
		return ReasonAborted, true
	}
	return "", false
}

func (r *run) record(d types.Dotfile, target, parent string, status deployment.ItemStatus) {
	if parent == "" {
		r.builder.AddItem(target, d, status)
	} else {
		r.builder.AddChild(target, parent, status)
	}
	if status.IsSuccess() {
		r.written[filepath.Clean(target)] = false
	}

	event := r.logger.Info()
	if status.IsFailed() {
		event = r.logger.Error()
	}
	event.Str("target", target).Str("status", status.String()).Bool("dry_run", r.dryRun).Msg("Dotfile processed")
}

// claim settles competition for target. Any earlier entry for target holds
// it, whatever its status, and d is then recorded as superseded. When d
// outranks that entry, the entry and any files expanded from it move to the
// superseded list and d takes over.
func (r *run) claim(target string, d types.Dotfile, parent string) bool {
	if !r.builder.Contains(target) {
		return true
	}
	owner, _ := r.builder.Item(target)

	if !types.Outranks(d.Priority, owner.Priority) {
		r.logger.Info().Str("target", target).Str("dotfile", d.Path).Msg("Dotfile superseded")
		r.builder.AddSuperseded(deployment.Superseded{
			Target:  target,
			Dotfile: d,
			Parent:  parent,
			Status:  deployment.Failed(ReasonSuperseded),
		})
		return false
	}

	// Children first, their owner lookups go through the parent.
	for _, child := range r.builder.Children(target) {
		r.supersede(child)
	}
	r.supersede(target)
	return true
}

func (r *run) supersede(path string) {
	entry, ok := r.builder.Get(path)
	if !ok {
		return
	}
	owner, _ := r.builder.Item(path)
	r.logger.Info().Str("target", path).Str("dotfile", owner.Path).Msg("Dotfile superseded by later entry")
	r.builder.AddSuperseded(deployment.Superseded{
		Target:  path,
		Dotfile: owner,
		Parent:  entry.Parent,
		Status:  deployment.Failed(ReasonSuperseded),
	})
	r.builder.Remove(path)
}

// fileAction applies the merge strategy and deploys. The bool is true when
// the conflict resolver asked to abort the run.
func (r *run) fileAction(d types.Dotfile, sourcePath, target string) (deployment.ItemStatus, bool) {
	if _, done := r.written[filepath.Clean(target)]; !done && r.exists(target) {
		switch d.MergeOr(r.defaultMerge) {
		case types.MergeKeep:
			return deployment.Skipped(ReasonKept), false
		case types.MergeAsk:
			if r.resolver == nil {
				return deployment.Skipped(ReasonNoResolver), false
			}
			action, err := r.resolver.ResolveConflict(r.ctx, Conflict{Source: sourcePath, Target: target, Dotfile: d})
			if err != nil {
				return deployment.Failedf("conflict resolution failed: %v", err), false
			}
			switch action {
			case types.ActionKeep:
				return deployment.Skipped(ReasonKept), false
			case types.ActionAbortAll:
				return deployment.Skipped(ReasonAborted), true
			}
		}
	}

	if err := r.write(d, sourcePath, target); err != nil {
		return deployment.Failed(err.Error()), false
	}
	return deployment.Success(), false
}

func (r *run) exists(path string) bool {
	_, err := r.fs.Lstat(path)
	return err == nil
}

// write renders or copies the source to target. In dry-run it only checks
// that this would be possible.
func (r *run) write(d types.Dotfile, sourcePath, target string) error {
	info, err := r.fs.Stat(sourcePath)
	if err != nil {
		return fmt.Errorf("cannot read source %s: %w", sourcePath, err)
	}
	data, err := r.fs.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("cannot read source %s: %w", sourcePath, err)
	}

	if d.Template {
		out, err := r.renderer.Render(d.Path, string(data), template.Variables{
			Dotfile: d.Variables,
			Profile: r.profile.Variables,
		})
		if err != nil {
			return err
		}
		data = []byte(out)
	}

	if isDir, planned := r.planned(target); planned && isDir {
		return fmt.Errorf("cannot write %s: is a directory", target)
	}
	if existing, err := r.fs.Stat(target); err == nil && existing.IsDir() {
		return fmt.Errorf("cannot write %s: is a directory", target)
	}
	if err := r.checkCreatable(filepath.Dir(target)); err != nil {
		return err
	}
	if r.dryRun {
		return nil
	}

	if err := r.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", filepath.Dir(target), err)
	}
	if err := r.fs.WriteFile(target, data, info.Mode().Perm()); err != nil {
		return fmt.Errorf("cannot write %s: %w", target, err)
	}
	return nil
}

func (r *run) prepareDir(target string) error {
	if err := r.checkCreatable(target); err != nil {
		return err
	}
	if r.dryRun {
		return nil
	}
	if err := r.fs.MkdirAll(target, 0755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", target, err)
	}
	return nil
}

// planned reports whether a dry run has already deployed path, and whether
// as a directory. Real runs read the filesystem instead.
func (r *run) planned(path string) (isDir bool, ok bool) {
	if !r.dryRun {
		return false, false
	}
	isDir, ok = r.written[filepath.Clean(path)]
	return isDir, ok
}

// checkCreatable verifies that the nearest existing ancestor of dir, or
// dir itself, is a directory. In dry-run the targets deployed so far count
// as existing.
func (r *run) checkCreatable(dir string) error {
	for {
		if isDir, ok := r.planned(dir); ok {
			if !isDir {
				return fmt.Errorf("cannot create directory below %s: not a directory", dir)
			}
			return nil
		}
		info, err := r.fs.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return fmt.Errorf("cannot create directory below %s: not a directory", dir)
			}
			return nil
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access %s: %w", dir, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
}

// expand lists the files below dir as sorted relative paths.
func (r *run) expand(dir string) ([]string, error) {
	var files []string
	var walk func(rel string) error
	walk = func(rel string) error {
		entries, err := r.fs.ReadDir(filepath.Join(dir, rel))
		if err != nil {
			return err
		}
		for _, entry := range entries {
			name := filepath.Join(rel, entry.Name())
			if entry.IsDir() {
				if err := walk(name); err != nil {
					return err
				}
				continue
			}
			files = append(files, name)
		}
		return nil
	}
	if err := walk(""); err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
