package cmd

import (
	"fmt"
	localConfig "github.com/bentoml/bentoml-comfyui/pkg/configuration"
	"github.com/bentoml/bentoml-comfyui/pkg/constants"
	"github.com/bentoml/bentoml-comfyui/pkg/modelstore"
	"github.com/bentoml/bentoml-comfyui/pkg/utils"
	"github.com/bentoml/bentoml-comfyui/pkg/workspace"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"os"
)

type PackOptions struct {
	name      string
	version   string
	workspace string
}

func NewCmdPack() *cobra.Command {
	packOptions := &PackOptions{}
	command := &cobra.Command{
		Use:   "pack [workspace]",
		Short: "pack a ComfyUI workspace into a model",
		Long:  "Pack the ComfyUI workspace directory into a model in the local store.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			packOptions.workspace = "."
			if len(args) > 0 {
				packOptions.workspace = args[0]
			}

			return packOptions.run(cmd)
		},
	}

	flags := command.Flags()
	flags.StringVar(&packOptions.name, "name", constants.DefaultModelName, "The name of the model")
	flags.StringVar(&packOptions.version, "version", "", "The version of the model, or generated if not provided")
	return command
}

func (po *PackOptions) run(cmd *cobra.Command) (err error) {
	if err = workspace.Check(po.workspace); err != nil {
		return
	}

	tag := modelstore.Tag{Name: po.name, Version: po.version}

	conf, err := localConfig.ConfigLoadDefault()
	if err != nil {
		return
	}
	storeRoot, err := conf.ResolveStoreRoot()
	if err != nil {
		return
	}
	logrus.Debugf("packing workspace %s into store %s", po.workspace, storeRoot)

	st := modelstore.New(storeRoot, modelstore.WithProgress(os.Stderr))
	m, err := st.Pack(cmd.Context(), tag, po.workspace)
	if err != nil {
		return
	}

	utils.PrintString(os.Stdout, fmt.Sprintf("✅ Successfully packed ComfyUI workspace [%s] to model [%s]\n", po.workspace, m.Tag()))
	utils.PrintBlue(os.Stdout, fmt.Sprintf(
		"Next step, build a bento with the workspace:\n"+
			"    $ bentoml-comfyui build --model %[1]s workflow.json\n"+
			"Or, build and push to the registry in one go:\n"+
			"    $ bentoml-comfyui build --push --model %[1]s workflow.json\n", m.Tag()))
	return nil
}
