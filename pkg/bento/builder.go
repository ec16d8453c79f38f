// Package bento assembles build contexts into bento archives and pushes them
// to an OCI registry as a layer on top of a base image.
package bento

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bentoml/bentoml-comfyui/pkg/constants"
	"github.com/bentoml/bentoml-comfyui/pkg/lock"
	"github.com/bentoml/bentoml-comfyui/pkg/modelstore"
	"github.com/regclient/regclient"
	"github.com/regclient/regclient/mod"
	"github.com/regclient/regclient/pkg/archive"
	"github.com/regclient/regclient/types/platform"
	"github.com/regclient/regclient/types/ref"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

type Builder struct {
	fs   afero.Fs
	root string
}

func New(root string) *Builder {
	return NewWithFs(afero.NewOsFs(), root)
}

func NewWithFs(fsys afero.Fs, root string) *Builder {
	return &Builder{fs: fsys, root: root}
}

type BuildOptions struct {
	Name           string
	Version        string // generated when empty
	ModelTag       string
	ContextDir     string   // scaffolded build context on the OS filesystem
	SystemPackages []string // appended to the defaults
}

func (b *Builder) bentoDir(m Manifest) string {
	return filepath.Join(b.root, "bentos", m.Name, m.Version)
}

// ArchivePath returns the location of the built bento archive.
func (b *Builder) ArchivePath(m Manifest) string {
	return filepath.Join(b.bentoDir(m), constants.BentoArchiveFile)
}

// Build writes bento.yaml into the context, archives the context into the
// local bento store and returns the manifest.
func (b *Builder) Build(ctx context.Context, opts BuildOptions) (m Manifest, err error) {
	tag := modelstore.Tag{Name: opts.Name, Version: opts.Version}.WithGeneratedVersion()

	m = Manifest{
		Name:      tag.Name,
		Version:   tag.Version,
		Service:   constants.ServiceEntrypoint,
		Model:     opts.ModelTag,
		CreatedAt: time.Now().UTC(),
		Include: []string{
			constants.ServiceFile,
			constants.WorkflowFile,
			constants.RequirementsFile,
		},
		Docker: DockerConfig{
			SystemPackages: mergeSystemPackages(opts.SystemPackages),
		},
		Python: PythonConfig{
			RequirementsTxt: constants.RequirementsFile,
			LockPackages:    true,
		},
	}

	out, err := yaml.Marshal(m)
	if err != nil {
		return
	}
	// the manifest ships inside the archive so the serving side can read it
	if err = os.WriteFile(filepath.Join(opts.ContextDir, constants.BentoManifestFile), out, 0644); err != nil {
		return
	}

	if err = b.fs.MkdirAll(b.root, 0755); err != nil {
		return
	}
	release, err := lock.Acquire(b.fs, filepath.Join(b.root, constants.StoreLockFile))
	if err != nil {
		return
	}
	defer release()

	dir := b.bentoDir(m)
	if exists, _ := afero.DirExists(b.fs, dir); exists {
		err = fmt.Errorf("bento %q already exists in the store", m.Tag())
		return
	}
	if err = b.fs.MkdirAll(dir, 0755); err != nil {
		return
	}
	defer func() {
		if err != nil {
			_ = b.fs.RemoveAll(dir)
		}
	}()

	f, err := b.fs.Create(b.ArchivePath(m))
	if err != nil {
		return
	}
	err = archive.Tar(ctx, opts.ContextDir, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return
	}

	err = afero.WriteFile(b.fs, filepath.Join(dir, constants.BentoManifestFile), out, 0644)
	return
}

func mergeSystemPackages(extra []string) []string {
	merged := make([]string, 0, len(constants.DefaultSystemPackages)+len(extra))
	merged = append(merged, constants.DefaultSystemPackages...)
	merged = append(merged, extra...)
	return merged
}

type PushOptions struct {
	BaseImage string
	Target    string // full reference, or a bare tag applied onto BaseImage
	Platforms string // defaults to linux/amd64
}

// Push layers the bento archive onto the base image and pushes the result.
// All registry semantics come from regclient; errors propagate unmodified.
func (b *Builder) Push(ctx context.Context, rc *regclient.RegClient, m Manifest, opts PushOptions) (pushed string, err error) {
	if opts.Platforms == "" {
		opts.Platforms = "linux/amd64"
	}
	pf, err := platform.Parse(opts.Platforms)
	if err != nil {
		err = fmt.Errorf("failed to parse platform %s: %v", opts.Platforms, err)
		return
	}
	platforms := []platform.Platform{pf}

	rSrc, err := ref.New(opts.BaseImage)
	if err != nil {
		return
	}
	var rTgt ref.Ref
	if strings.ContainsAny(opts.Target, "/:") {
		rTgt, err = ref.New(opts.Target)
		if err != nil {
			err = fmt.Errorf("failed to parse target image name %s: %w", opts.Target, err)
			return
		}
	} else {
		rTgt = rSrc.SetTag(opts.Target)
	}

	f, err := b.fs.Open(b.ArchivePath(m))
	if err != nil {
		return
	}
	defer f.Close()
	var rdr io.Reader = f

	defer rc.Close(ctx, rSrc)
	rOut, err := mod.Apply(ctx, rc, rSrc,
		mod.WithLayerAddTar(rdr, "", platforms),
		mod.WithRefTgt(rTgt),
	)
	if err != nil {
		return
	}

	pushed = rOut.CommonName()
	err = rc.Close(ctx, rOut)
	if err != nil {
		err = fmt.Errorf("failed to close ref: %w", err)
	}
	return
}
