package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/edgequery/edgequery/pkg/logger"
)

var (
	cfgFile     string
	verboseMode bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "edgequery",
	Short: "edgequery runs Hive queries on a Hadoop edge node over SSH",
	Long: `edgequery opens an SSH session to a Hadoop edge node, runs a
beeline-style query client there, and turns the delimited text it prints
into a table — rendered as HTML by the built-in web server or printed to
the terminal.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file (default is $HOME/.edgequery.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verboseMode, "verbose", false, "Enable verbose output")

	rootCmd.AddCommand(getServeCmd())
	rootCmd.AddCommand(getQueryCmd())
}

// initConfig reads in the config file and environment variables.
func initConfig() {
	// A local .env is convenient in development; missing is fine.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".edgequery")
	}

	viper.SetEnvPrefix("edgequery")
	viper.SetEnvKeyReplacer(configEnvReplacer())
	viper.AutomaticEnv()

	setConfigDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	logger.InitLoggerOutputs()
	if verboseMode {
		logger.GlobalLogLevel = "debug"
	}
	logger.InitProduction()
}
