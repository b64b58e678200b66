package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sicp/interpreter-go/pkg/parser"
	"sicp/interpreter-go/pkg/runtime"
)

// HomeEnv overrides the dependency cache root.
const HomeEnv = "SICP_HOME"

// DefaultHome returns $SICP_HOME, falling back to ~/.sicp.
func DefaultHome() (string, error) {
	if v := strings.TrimSpace(os.Getenv(HomeEnv)); v != "" {
		return filepath.Abs(v)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("loader: locate home directory: %w", err)
	}
	return filepath.Join(home, ".sicp"), nil
}

// Source is one parsed file. Every form parsed successfully before it is handed out.
type Source struct {
	Path    string
	Package string
	Forms   []runtime.Expression
}

// Program lists sources in evaluation order: dependency preludes, the root
// prelude, then the entry file.
type Program struct {
	Name     string
	Sources  []*Source
	Packages []*LockedPackage
}

// Fetcher materialises a git dependency locally.
type Fetcher interface {
	Fetch(name string, spec *DependencySpec) (string, *LockedPackage, error)
}

// Loader turns manifests and files into programs.
type Loader struct {
	fetcher Fetcher
}

// NewLoader returns a loader caching git dependencies under cacheDir. An empty
// cacheDir disables git dependencies.
func NewLoader(cacheDir string) *Loader {
	l := &Loader{}
	if f := NewGitFetcher(cacheDir); f != nil {
		l.fetcher = f
	}
	return l
}

// NewLoaderWithFetcher returns a loader using a custom fetcher.
func NewLoaderWithFetcher(f Fetcher) *Loader {
	return &Loader{fetcher: f}
}

// LoadFiles parses standalone files in order.
func (l *Loader) LoadFiles(paths ...string) (*Program, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("loader: no files given")
	}
	program := &Program{Name: strings.TrimSuffix(filepath.Base(paths[0]), filepath.Ext(paths[0]))}
	for _, path := range paths {
		src, err := readSource(path, "")
		if err != nil {
			return nil, err
		}
		program.Sources = append(program.Sources, src)
	}
	return program, nil
}

// LoadTarget loads the manifest at manifestPath and builds the named target,
// or the default target when target is empty.
func (l *Loader) LoadTarget(manifestPath, target string) (*Program, error) {
	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	var spec *TargetSpec
	if target == "" {
		if spec, err = manifest.DefaultTarget(); err != nil {
			return nil, err
		}
	} else {
		var ok bool
		if spec, ok = manifest.FindTarget(target); !ok {
			return nil, fmt.Errorf("loader: unknown target %q", target)
		}
	}

	lock, err := loadLockBeside(manifest)
	if err != nil {
		return nil, err
	}
	packages, err := l.resolve(manifest, lock)
	if err != nil {
		return nil, err
	}
	program := &Program{Name: manifest.Name}
	for _, pkg := range packages {
		sources, err := preludeSources(pkg.manifest)
		if err != nil {
			return nil, err
		}
		program.Sources = append(program.Sources, sources...)
		program.Packages = append(program.Packages, pkg.locked)
	}
	sources, err := preludeSources(manifest)
	if err != nil {
		return nil, err
	}
	program.Sources = append(program.Sources, sources...)

	entry, err := readSource(filepath.Join(manifest.Dir(), spec.Main), manifest.Name)
	if err != nil {
		return nil, err
	}
	program.Sources = append(program.Sources, entry)
	return program, nil
}

// loadLockBeside reads package.lock next to the manifest. A missing lockfile is not an error.
func loadLockBeside(m *Manifest) (*Lockfile, error) {
	lock, err := LoadLockfile(filepath.Join(m.Dir(), LockFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return lock, err
}

// Install resolves every dependency of the manifest and writes package.lock beside it.
func (l *Loader) Install(manifestPath string) (*Lockfile, error) {
	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	packages, err := l.resolve(manifest, nil)
	if err != nil {
		return nil, err
	}
	lock := NewLockfile(manifest.Name)
	for _, pkg := range packages {
		lock.Packages = append(lock.Packages, pkg.locked)
	}
	if err := WriteLockfile(lock, filepath.Join(manifest.Dir(), LockFile)); err != nil {
		return nil, err
	}
	return lock, nil
}

type resolvedPackage struct {
	name     string
	manifest *Manifest
	locked   *LockedPackage
}

type resolveState struct {
	visiting map[string]bool
	done     map[string]bool
	order    []*resolvedPackage
	lock     *Lockfile
}

// resolve returns dependencies depth-first so each package follows its own
// dependencies. Git dependencies recorded in lock are checked out at the locked commit.
func (l *Loader) resolve(root *Manifest, lock *Lockfile) ([]*resolvedPackage, error) {
	state := &resolveState{
		visiting: map[string]bool{sanitizeSegment(root.Name): true},
		done:     map[string]bool{},
		lock:     lock,
	}
	if err := l.resolveInto(root, state); err != nil {
		return nil, err
	}
	return state.order, nil
}

func (l *Loader) resolveInto(m *Manifest, state *resolveState) error {
	for _, name := range sortedKeys(m.Dependencies) {
		key := sanitizeSegment(name)
		if state.done[key] {
			continue
		}
		if state.visiting[key] {
			return fmt.Errorf("loader: dependency cycle through %q", name)
		}
		state.visiting[key] = true

		dir, locked, err := l.materialise(m, name, m.Dependencies[name], state.lock)
		if err != nil {
			return err
		}
		depManifest, err := LoadManifest(filepath.Join(dir, ManifestFile))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("loader: dependency %q has no %s", name, ManifestFile)
			}
			return err
		}
		if locked.Version == "" {
			locked.Version = depManifest.Version
		}
		if err := l.resolveInto(depManifest, state); err != nil {
			return err
		}

		delete(state.visiting, key)
		state.done[key] = true
		state.order = append(state.order, &resolvedPackage{name: key, manifest: depManifest, locked: locked})
	}
	return nil
}

func (l *Loader) materialise(owner *Manifest, name string, spec *DependencySpec, lock *Lockfile) (string, *LockedPackage, error) {
	if spec.Path != "" {
		dir := spec.Path
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(owner.Dir(), dir)
		}
		dir = filepath.Clean(dir)
		checksum, err := dirChecksum(dir)
		if err != nil {
			return "", nil, fmt.Errorf("loader: dependency %q: %w", name, err)
		}
		return dir, &LockedPackage{
			Name:     sanitizeSegment(name),
			Source:   "path+" + filepath.ToSlash(dir),
			Checksum: checksum,
		}, nil
	}
	if l.fetcher == nil {
		return "", nil, fmt.Errorf("loader: dependency %q: git dependencies need a cache directory (set %s)", name, HomeEnv)
	}
	entry, pinned := lockedCommit(lock, name, spec)
	if pinned == "" {
		return l.fetcher.Fetch(name, spec)
	}
	dir, locked, err := l.fetcher.Fetch(name, &DependencySpec{Git: spec.Git, Rev: pinned})
	if err != nil {
		return "", nil, err
	}
	locked.Version = entry.Version
	return dir, locked, nil
}

// lockedCommit returns the commit lock recorded for a git dependency, provided
// the entry was resolved from the same URL.
func lockedCommit(lock *Lockfile, name string, spec *DependencySpec) (*LockedPackage, string) {
	entry, ok := lock.Find(name)
	if !ok {
		return nil, ""
	}
	source, ok := strings.CutPrefix(entry.Source, "git+")
	if !ok {
		return nil, ""
	}
	at := strings.LastIndex(source, "@")
	if at < 0 || source[:at] != strings.TrimSpace(spec.Git) {
		return nil, ""
	}
	return entry, source[at+1:]
}

func preludeSources(m *Manifest) ([]*Source, error) {
	out := make([]*Source, 0, len(m.Prelude))
	for _, rel := range m.Prelude {
		src, err := readSource(filepath.Join(m.Dir(), rel), m.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

func readSource(path, pkg string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}
	forms, err := parser.ParseAll(string(data))
	if err != nil {
		return nil, fmt.Errorf("loader: parse %s: %w", path, err)
	}
	return &Source{Path: path, Package: pkg, Forms: forms}, nil
}
