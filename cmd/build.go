package cmd

import (
	"fmt"
	"github.com/bentoml/bentoml-comfyui/pkg/bento"
	localConfig "github.com/bentoml/bentoml-comfyui/pkg/configuration"
	"github.com/bentoml/bentoml-comfyui/pkg/constants"
	"github.com/bentoml/bentoml-comfyui/pkg/modelstore"
	"github.com/bentoml/bentoml-comfyui/pkg/scaffold"
	"github.com/bentoml/bentoml-comfyui/pkg/utils"
	"github.com/bentoml/bentoml-comfyui/pkg/workflow"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"os"
)

type BuildOptions struct {
	rootOpts *RootOptions

	name                string
	version             string
	model               string
	python              string
	systemPackages      []string
	extraPythonPackages []string
	baseImage           string
	platforms           string
	push                bool

	workflow string
}

func NewCmdBuild(rootOptions *RootOptions) *cobra.Command {
	buildOptions := &BuildOptions{
		rootOpts: rootOptions,
	}
	command := &cobra.Command{
		Use:   "build <workflow>",
		Short: "build a bento from a ComfyUI workflow",
		Long:  "Build a deployable bento from a packed ComfyUI model and a workflow file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buildOptions.workflow = args[0]

			return buildOptions.run(cmd)
		},
	}

	flags := command.Flags()
	flags.StringVar(&buildOptions.name, "name", constants.DefaultServiceName, "The name of the bento")
	flags.StringVar(&buildOptions.version, "version", "", "The version of the bento, or generated if not provided")
	flags.StringVar(&buildOptions.model, "model", constants.DefaultModelName, "The model tag to use")
	flags.StringVarP(&buildOptions.python, "python", "p", "", "The Python interpreter path where ComfyUI is running. Defaults to the current Python interpreter")
	flags.StringArrayVar(&buildOptions.systemPackages, "system-packages", []string{}, "Additional system packages to install in the Docker image")
	flags.StringArrayVar(&buildOptions.extraPythonPackages, "extra-python-packages", []string{}, "Additional Python packages to install in the Docker image")
	flags.StringVar(&buildOptions.baseImage, "base-image", "", "Base image the bento layer is applied onto when pushing")
	flags.StringVar(&buildOptions.platforms, "platforms", "linux/amd64", "Image platforms when pushing")
	flags.BoolVar(&buildOptions.push, "push", false, "Push the built bento to the configured registry")
	return command
}

func (bo *BuildOptions) run(cmd *cobra.Command) (err error) {
	ctx := cmd.Context()

	modelTag, err := modelstore.ParseTag(bo.model)
	if err != nil {
		return
	}

	conf, err := localConfig.ConfigLoadDefault()
	if err != nil {
		return
	}
	storeRoot, err := conf.ResolveStoreRoot()
	if err != nil {
		return
	}

	// resolve the model up front so a bad --model fails before pip freeze
	st := modelstore.New(storeRoot)
	if _, err = st.Get(modelTag); err != nil {
		return
	}

	info, err := workflow.Inspect(bo.workflow)
	if err != nil {
		return
	}
	logrus.Debugf("workflow %s: %s format, %d nodes", bo.workflow, info.Format, info.NodeCount)

	utils.PrintBlue(os.Stdout, "📂 Creating requirements.txt, service.py and workflow.json\n")
	buildCtx, err := scaffold.Create(ctx, scaffold.Options{
		Name:                bo.name,
		ModelTag:            bo.model,
		Python:              bo.python,
		ExtraPythonPackages: bo.extraPythonPackages,
		WorkflowPath:        bo.workflow,
	})
	if err != nil {
		return
	}
	defer func() {
		if cerr := buildCtx.Cleanup(); cerr != nil {
			logrus.Warnf("failed to remove build context: %v", cerr)
		}
	}()

	builder := bento.New(storeRoot)
	built, err := builder.Build(ctx, bento.BuildOptions{
		Name:           bo.name,
		Version:        bo.version,
		ModelTag:       bo.model,
		ContextDir:     buildCtx.Dir,
		SystemPackages: bo.systemPackages,
	})
	if err != nil {
		return
	}

	utils.PrintString(os.Stdout, fmt.Sprintf("✅ Successfully built Bento [%s] from ComfyUI workflow [%s]\n", built.Tag(), bo.workflow))

	if !bo.push {
		return nil
	}

	target, err := bo.pushTarget(conf, built)
	if err != nil {
		return
	}
	baseImage := bo.baseImage
	if baseImage == "" {
		baseImage = conf.BaseImage
	}
	if baseImage == "" {
		baseImage = constants.DefaultBaseImage
	}

	rc := bo.rootOpts.newRegClient()
	pushed, err := builder.Push(ctx, rc, built, bento.PushOptions{
		BaseImage: baseImage,
		Target:    target,
		Platforms: bo.platforms,
	})
	if err != nil {
		return
	}

	utils.PrintString(os.Stdout, fmt.Sprintf("✅ Successfully pushed Bento to [%s]\n", pushed))
	utils.PrintBlue(os.Stdout, fmt.Sprintf(
		"Next steps:\n"+
			"* Deploy the image %[1]s with your serving platform\n"+
			"* Update an existing deployment to the new image:\n"+
			"    $ kubectl set image deployment/${DEPLOYMENT_NAME} %[2]s=%[1]s\n", pushed, built.Name))
	return nil
}

func (bo *BuildOptions) pushTarget(conf *localConfig.Config, built bento.Manifest) (string, error) {
	if conf.Registry == "" || conf.Repository == "" {
		return "", fmt.Errorf("no push registry configured, set registry and repository in %s and run `login`", conf.Filename)
	}
	return fmt.Sprintf("%s/%s/%s:%s", conf.Registry, conf.Repository, built.Name, built.Version), nil
}
