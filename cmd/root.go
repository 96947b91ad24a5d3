package cmd

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/entrascan/entrascan/internal/logs"
	"github.com/entrascan/entrascan/internal/message"
	"github.com/entrascan/entrascan/modules"
	o "github.com/entrascan/entrascan/pkg/options"
	"github.com/entrascan/entrascan/pkg/types"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "entrascan",
	Short: "EntraScan audits Entra ID tenants for risky application grants.",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	logs.ConsoleLogger()

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.entrascan.yaml)")
	rootCmd.PersistentFlags().StringP(o.OutputOpt.Name, o.OutputOpt.Short, o.OutputOpt.Value, o.OutputOpt.Description)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".entrascan" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".entrascan")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func options2Flag(options []*types.Option, common []*types.Option, cmd *cobra.Command) {
	for _, option := range options {
		option2Flag(option, cmd)
	}

	for _, option := range common {
		option2Flag(option, cmd)
	}
}

func option2Flag(option *types.Option, cmd *cobra.Command) {
	switch option.Type {
	case types.String:
		cmd.Flags().StringP(option.Name, option.Short, option.Value, option.Description)
	case types.Bool:
		value, _ := strconv.ParseBool(option.Value)
		cmd.Flags().BoolP(option.Name, option.Short, value, option.Description)
	case types.Int:
		intValue, _ := strconv.Atoi(option.Value)
		cmd.Flags().IntP(option.Name, option.Short, intValue, option.Description)
	}

	if option.Required {
		cmd.MarkFlagRequired(option.Name)
	}
}

func getOpts(cmd *cobra.Command, required []*types.Option, common []*types.Option) []*types.Option {
	opts := getGlobalOpts(cmd)

	// Process required options
	opts = append(opts, getOptsFromCmd(cmd, required)...)
	err := o.ValidateOptions(opts, required)
	if err != nil {
		message.Error("%s", err.Error())
		os.Exit(1)
	}

	// Process common options
	opts = append(opts, getOptsFromCmd(cmd, common)...)
	err = o.ValidateOptions(opts, common)
	if err != nil {
		message.Error("%s", err.Error())
		os.Exit(1)
	}

	return opts
}

func getGlobalOpts(cmd *cobra.Command) []*types.Option {
	opts := []*types.Option{}
	output := o.OutputOpt
	output.Value, _ = cmd.Flags().GetString(output.Name)
	opts = append(opts, &output)

	return opts
}

func getOptsFromCmd(cmd *cobra.Command, options []*types.Option) []*types.Option {
	opts := []*types.Option{}
	for _, opt := range options {
		switch opt.Type {
		case types.String:
			opt.Value, _ = cmd.Flags().GetString(opt.Name)
		case types.Bool:
			value, _ := cmd.Flags().GetBool(opt.Name)
			opt.Value = strconv.FormatBool(value)
		case types.Int:
			value, _ := cmd.Flags().GetInt(opt.Name)
			opt.Value = strconv.Itoa(value)
		}
		opts = append(opts, opt)
	}
	return opts
}

func runModule(module modules.Module, meta modules.Metadata, run modules.Run) {
	wg := new(sync.WaitGroup)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for result := range run.Data {
			for _, outputProvider := range module.GetOutputProviders() {
				wg.Add(1)
				go func(outputProvider types.OutputProvider, result types.Result) {
					defer wg.Done()
					if err := outputProvider.Write(result); err != nil {
						message.Error("%s", err.Error())
					}
				}(outputProvider, result)
			}
		}
	}()

	message.Banner()
	message.Section("%s", meta.Name)
	err := module.Invoke()
	wg.Wait()
	if err != nil {
		message.Error("%s", err.Error())
		os.Exit(1)
	}
}
