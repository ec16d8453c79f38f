package cmd

import (
	"fmt"
	localConfig "github.com/bentoml/bentoml-comfyui/pkg/configuration"
	"github.com/bentoml/bentoml-comfyui/pkg/utils"
	"github.com/regclient/regclient"
	regConfig "github.com/regclient/regclient/config"
	"github.com/regclient/regclient/scheme/reg"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"os"
	"time"
)

var UserAgent = "bentoml-comfyui/comfyuictl"

type RootOptions struct {
	verbosity string
	logopts   []string
	hosts     []string
	userAgent string
}

func NewComfyUICommand() *cobra.Command {
	rootOptions := &RootOptions{}
	comfyUICmd := &cobra.Command{
		Use:  "bentoml-comfyui",
		Long: "cli tool for packaging ComfyUI workspaces into deployable bentos",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(rootOptions.verbosity)
			if err != nil {
				return fmt.Errorf("unable to parse verbosity %q: %w", rootOptions.verbosity, err)
			}
			logrus.SetLevel(level)
			return nil
		},
	}

	comfyUICmd.AddCommand(NewCmdPack())
	comfyUICmd.AddCommand(NewCmdBuild(rootOptions))
	comfyUICmd.AddCommand(NewCmdModels())
	comfyUICmd.AddCommand(NewCmdLogin(rootOptions))
	comfyUICmd.AddCommand(NewCmdLogout(rootOptions))

	comfyUICmd.PersistentFlags().StringVarP(&rootOptions.verbosity, "verbosity", "v", logrus.WarnLevel.String(), "Log level (debug, info, warn, error, fatal, panic)")
	comfyUICmd.PersistentFlags().StringArrayVar(&rootOptions.logopts, "logopt", []string{}, "Log options")
	comfyUICmd.PersistentFlags().StringArrayVar(&rootOptions.hosts, "host", []string{}, "Registry hosts to add (reg=registry,user=username,pass=password,tls=enabled)")
	comfyUICmd.PersistentFlags().StringVarP(&rootOptions.userAgent, "user-agent", "", "", "Override user agent")

	return comfyUICmd
}

func (ro *RootOptions) newRegClient() *regclient.RegClient {
	conf, err := localConfig.ConfigLoadDefault()
	if err != nil {
		utils.PrintWarning(os.Stdout, "failed to load default config\n")
		if conf == nil {
			conf = localConfig.ConfigNew()
		}
	}

	regLog := &logrus.Logger{
		Out:       os.Stderr,
		Formatter: new(logrus.TextFormatter),
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.WarnLevel,
	}

	rcOpts := []regclient.Opt{
		regclient.WithLog(regLog),
		regclient.WithRegOpts(reg.WithCache(time.Minute*5, 500)),
	}
	if ro.userAgent != "" {
		rcOpts = append(rcOpts, regclient.WithUserAgent(ro.userAgent))
	} else {
		rcOpts = append(rcOpts, regclient.WithUserAgent(UserAgent))
	}
	if conf.BlobLimit != 0 {
		rcOpts = append(rcOpts, regclient.WithRegOpts(reg.WithBlobLimit(conf.BlobLimit)))
	}
	if conf.IncDockerCred == nil || *conf.IncDockerCred {
		rcOpts = append(rcOpts, regclient.WithDockerCreds())
	}
	if conf.IncDockerCert == nil || *conf.IncDockerCert {
		rcOpts = append(rcOpts, regclient.WithDockerCerts())
	}

	rcHosts := []regConfig.Host{}
	for name, host := range conf.Hosts {
		host.Name = name
		rcHosts = append(rcHosts, *host)
	}
	for _, h := range ro.hosts {
		hKV, err := utils.SplitCSKV(h)
		if err != nil {
			utils.PrintWarning(os.Stdout, "unable to parse host string\n")
			continue
		}
		host := regConfig.Host{
			Name: hKV["reg"],
			User: hKV["user"],
			Pass: hKV["pass"],
		}
		if hKV["tls"] != "" {
			var hostTLS regConfig.TLSConf
			err := hostTLS.UnmarshalText([]byte(hKV["tls"]))
			if err != nil {
				utils.PrintWarning(os.Stdout, "unable to parse tls setting\n")
			} else {
				host.TLS = hostTLS
			}
		}
		rcHosts = append(rcHosts, host)
	}
	if len(rcHosts) > 0 {
		rcOpts = append(rcOpts, regclient.WithConfigHost(rcHosts...))
	}

	return regclient.New(rcOpts...)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		return false
	}
	return flag.Changed
}
