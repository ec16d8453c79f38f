// Package scaffold assembles the temporary build context for a bento:
// requirements.txt, the generated service.py and the user's workflow file.
package scaffold

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bentoml/bentoml-comfyui/pkg/constants"
	"github.com/bentoml/bentoml-comfyui/pkg/pyenv"
)

type Options struct {
	Name                string   // service name substituted into service.py
	ModelTag            string   // model tag substituted into service.py
	Python              string   // interpreter for pip freeze, PATH default when empty
	ExtraPythonPackages []string // appended to requirements.txt in order
	WorkflowPath        string   // copied verbatim as workflow.json
}

// Context is a scoped build directory. Callers must invoke Cleanup when done;
// Create removes the directory itself on any mid-flight failure.
type Context struct {
	Dir string
}

func (c *Context) Cleanup() error {
	return os.RemoveAll(c.Dir)
}

// Create materializes the build context in a fresh temp directory.
func Create(ctx context.Context, opts Options) (bc *Context, err error) {
	dir, err := os.MkdirTemp("", constants.BuildContextPrefix+"*"+constants.BuildContextSuffix)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(dir)
		}
	}()

	if err = writeRequirements(ctx, dir, opts); err != nil {
		return nil, err
	}
	if err = writeService(dir, opts); err != nil {
		return nil, err
	}
	if err = copyWorkflow(dir, opts.WorkflowPath); err != nil {
		return nil, err
	}
	return &Context{Dir: dir}, nil
}

func writeRequirements(ctx context.Context, dir string, opts Options) error {
	base, err := pyenv.Freeze(ctx, opts.Python)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString(strings.TrimRight(base, "\n"))
	for _, pkg := range opts.ExtraPythonPackages {
		buf.WriteString("\n")
		buf.WriteString(pkg)
	}
	buf.WriteString("\n")
	return os.WriteFile(filepath.Join(dir, constants.RequirementsFile), buf.Bytes(), 0644)
}

func writeService(dir string, opts Options) error {
	f, err := os.Create(filepath.Join(dir, constants.ServiceFile))
	if err != nil {
		return err
	}
	if err = renderService(f, opts.Name, opts.ModelTag); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to render service.py: %w", err)
	}
	return f.Close()
}

func copyWorkflow(dir, workflowPath string) error {
	src, err := os.Open(workflowPath)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}

	dst, err := os.OpenFile(filepath.Join(dir, constants.WorkflowFile), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err = io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}
