// Package modelstore packs ComfyUI workspaces into a local, tag-addressed
// artifact store. Layout: <root>/models/<name>/<version>/{model.tar,model.yaml}.
package modelstore

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/bentoml/bentoml-comfyui/pkg/constants"
	"github.com/bentoml/bentoml-comfyui/pkg/lock"
	"github.com/regclient/regclient/pkg/archive"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

type Store struct {
	fs       afero.Fs
	root     string
	progress io.Writer // nil disables the progress bar
}

type Opt func(*Store)

// WithProgress renders a byte-count spinner to w while packing.
func WithProgress(w io.Writer) Opt {
	return func(s *Store) {
		s.progress = w
	}
}

func New(root string, opts ...Opt) *Store {
	return NewWithFs(afero.NewOsFs(), root, opts...)
}

func NewWithFs(fsys afero.Fs, root string, opts ...Opt) *Store {
	s := &Store{fs: fsys, root: root}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Manifest records a packed model.
type Manifest struct {
	Name       string    `yaml:"name"`
	Version    string    `yaml:"version"`
	CreatedAt  time.Time `yaml:"creationTime"`
	SourcePath string    `yaml:"sourcePath"`
	SizeBytes  int64     `yaml:"sizeBytes"`
}

func (m Manifest) Tag() Tag {
	return Tag{Name: m.Name, Version: m.Version}
}

func (s *Store) modelDir(t Tag) string {
	return filepath.Join(s.root, "models", t.Name, t.Version)
}

// ArchivePath returns the location of the packed workspace archive.
func (s *Store) ArchivePath(m Manifest) string {
	return filepath.Join(s.modelDir(m.Tag()), constants.ModelArchiveFile)
}

// Pack archives workspacePath under tag t, generating a version when t has
// none. The workspace is read from the OS filesystem; the caller is expected
// to have validated it first.
func (s *Store) Pack(ctx context.Context, t Tag, workspacePath string) (m Manifest, err error) {
	t = t.WithGeneratedVersion()

	if err = s.fs.MkdirAll(s.root, 0755); err != nil {
		return
	}
	release, err := lock.Acquire(s.fs, filepath.Join(s.root, constants.StoreLockFile))
	if err != nil {
		return
	}
	defer release()

	dir := s.modelDir(t)
	if exists, _ := afero.DirExists(s.fs, dir); exists {
		err = fmt.Errorf("model %q already exists in the store", t.String())
		return
	}
	if err = s.fs.MkdirAll(dir, 0755); err != nil {
		return
	}
	defer func() {
		if err != nil {
			_ = s.fs.RemoveAll(dir)
		}
	}()

	archivePath := filepath.Join(dir, constants.ModelArchiveFile)
	f, err := s.fs.Create(archivePath)
	if err != nil {
		return
	}

	var w io.Writer = f
	var bar *progressbar.ProgressBar
	if s.progress != nil {
		bar = progressbar.NewOptions64(-1,
			progressbar.OptionSetDescription(fmt.Sprintf("packing %s", t.String())),
			progressbar.OptionSetWriter(s.progress),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSpinnerType(14),
		)
		w = io.MultiWriter(f, bar)
	}

	err = archive.Tar(ctx, workspacePath, w)
	if bar != nil {
		_ = bar.Finish()
		_, _ = fmt.Fprintln(s.progress)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return
	}

	info, err := s.fs.Stat(archivePath)
	if err != nil {
		return
	}

	m = Manifest{
		Name:       t.Name,
		Version:    t.Version,
		CreatedAt:  time.Now().UTC(),
		SourcePath: workspacePath,
		SizeBytes:  info.Size(),
	}
	err = s.writeManifest(dir, m)
	return
}

func (s *Store) writeManifest(dir string, m Manifest) error {
	out, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return afero.WriteFile(s.fs, filepath.Join(dir, constants.ModelManifestFile), out, 0644)
}

func (s *Store) readManifest(dir string) (Manifest, error) {
	var m Manifest
	data, err := afero.ReadFile(s.fs, filepath.Join(dir, constants.ModelManifestFile))
	if err != nil {
		return m, err
	}
	err = yaml.Unmarshal(data, &m)
	return m, err
}

// Get resolves a tag to a manifest. With an empty version the most recently
// created version wins.
func (s *Store) Get(t Tag) (Manifest, error) {
	if t.Version != "" {
		m, err := s.readManifest(s.modelDir(t))
		if err != nil {
			return m, fmt.Errorf("model %q not found in the store: %w", t.String(), err)
		}
		return m, nil
	}

	versions, err := s.listVersions(t.Name)
	if err != nil || len(versions) == 0 {
		return Manifest{}, fmt.Errorf("no packed versions of model %q, run `pack` first", t.Name)
	}
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].CreatedAt.After(versions[j].CreatedAt)
	})
	return versions[0], nil
}

func (s *Store) listVersions(name string) ([]Manifest, error) {
	nameDir := filepath.Join(s.root, "models", name)
	entries, err := afero.ReadDir(s.fs, nameDir)
	if err != nil {
		return nil, err
	}
	manifests := make([]Manifest, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		m, err := s.readManifest(filepath.Join(nameDir, entry.Name()))
		if err != nil {
			continue // skip half-written versions
		}
		manifests = append(manifests, m)
	}
	return manifests, nil
}

// List returns every packed model, newest first.
func (s *Store) List() ([]Manifest, error) {
	modelsDir := filepath.Join(s.root, "models")
	exists, err := afero.DirExists(s.fs, modelsDir)
	if err != nil || !exists {
		return nil, err
	}
	entries, err := afero.ReadDir(s.fs, modelsDir)
	if err != nil {
		return nil, err
	}
	var all []Manifest
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		versions, err := s.listVersions(entry.Name())
		if err != nil {
			continue
		}
		all = append(all, versions...)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}
