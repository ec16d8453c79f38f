package cmd

import (
	"fmt"
	localConfig "github.com/bentoml/bentoml-comfyui/pkg/configuration"
	"github.com/bentoml/bentoml-comfyui/pkg/modelstore"
	"github.com/bentoml/bentoml-comfyui/pkg/utils"
	"github.com/docker/go-units"
	"github.com/spf13/cobra"
	"os"
	"text/tabwriter"
)

func NewCmdModels() *cobra.Command {
	command := &cobra.Command{
		Use:   "models",
		Short: "list packed ComfyUI models",
		Long:  "List the ComfyUI models packed into the local store, newest first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listModels()
		},
	}

	return command
}

func listModels() (err error) {
	conf, err := localConfig.ConfigLoadDefault()
	if err != nil {
		return
	}
	storeRoot, err := conf.ResolveStoreRoot()
	if err != nil {
		return
	}

	st := modelstore.New(storeRoot)
	models, err := st.List()
	if err != nil {
		return
	}
	if len(models) == 0 {
		utils.PrintYellow(os.Stdout, "no models packed yet, run `bentoml-comfyui pack <workspace>` first\n")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TAG\tCREATED\tSIZE\tSOURCE")
	for _, m := range models {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			m.Tag().String(),
			m.CreatedAt.Format("2006-01-02 15:04:05"),
			units.HumanSize(float64(m.SizeBytes)),
			m.SourcePath,
		)
	}
	return w.Flush()
}
