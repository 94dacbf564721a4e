package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes, kept stable so supervising scripts can tell failure modes
// apart without parsing log output.
const (
	exitConfigFailed   = 1
	exitPortOpen       = 2
	exitResetFailed    = 3
	exitNotDetected    = 4
	exitNoFirmware     = 5
	exitFirmwareRead   = 6
	exitFirmwareFormat = 7
	exitWriteFailed    = 8
	exitInternalError  = 255
)

// log is the process-wide logger, handed into every library component as its
// event sink. Reconfigured by initConfig once flags and config are known.
var log = logrus.New()

var (
	cfgFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "picloader",
	Short: "Flash firmware into PIC microcontrollers over a serial link",
	Long: `picloader talks to a TinyBld-compatible resident bootloader to flash
Intel-HEX firmware images into PIC microcontrollers over a serial port.

Configuration is read from picloader.yaml (working directory, then
/etc/picloader/); command line flags override configuration values.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitInternalError)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default picloader.yaml, then /etc/picloader/picloader.yaml)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "loglevel", "v", "", "log level: debug, info, warning or error")
}

// initConfig reads in the config file and sets up logging.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("picloader")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/picloader")
	}

	viper.SetDefault("config.log-level", "info")
	viper.SetDefault("serial.baud", 115200)
	viper.SetDefault("serial.timeout", 1)
	viper.SetDefault("pic.reset-max-attempts", 3)

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine, everything can come from flags;
		// an unreadable or malformed one is a hard failure.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Failed to load configuration file: %v\n", err)
			os.Exit(exitConfigFailed)
		}
	}

	setupLogging()
}

func setupLogging() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	level := logLevel
	if level == "" {
		level = viper.GetString("config.log-level")
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level %q\n", level)
		os.Exit(exitConfigFailed)
	}
	log.SetLevel(parsed)

	if filename := viper.GetString("config.log-filename"); filename != "" {
		f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v\n", filename, err)
			os.Exit(exitConfigFailed)
		}
		log.SetOutput(io.MultiWriter(os.Stderr, f))
	}
}
