package cmd

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/pipesh/pipesh/core/config"
)

var cfgPath string

func loadConfig() (*config.Configuration, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}
	return config.Load(afero.NewOsFs(), cfgPath)
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pipesh",
	Short: "Embeddable command pipeline shell",
	Long:  `An embeddable shell engine with pipelines, aliases, variables, and jobs.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file or directory (defaults to the builtin config)")
}
