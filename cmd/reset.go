package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"picloader/bootloader"
	"picloader/pictype"
	"picloader/serial"
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset <port>",
	Short: "Reset the PIC into its bootloader",
	Long: `Reset the PIC so that its resident bootloader starts executing.

By default the configured software reset sequence (pic.reset-sequence) is
written to the port and the reply verified. With --hw the DTR line of the
port is pulsed for one second instead, which resets boards whose MCLR pin is
wired to DTR; no reply is expected, run 'picloader detect' afterwards.

Examples:
  picloader reset /dev/ttyUSB0
  picloader reset --hw /dev/ttyUSB1`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		hw, _ := cmd.Flags().GetBool("hw")
		baud, _ := cmd.Flags().GetInt("baud")
		timeout, _ := cmd.Flags().GetInt("timeout")

		if hw {
			runHardwareReset(args[0])
			return
		}

		resetSeq := []byte(viper.GetString("pic.reset-sequence"))
		if len(resetSeq) == 0 {
			log.Error("reset sequence is not defined in configuration file")
			os.Exit(exitConfigFailed)
		}

		port, err := serial.Open(args[0],
			serial.WithBaudRate(baud),
			serial.WithReadTimeout(time.Duration(timeout)*time.Second),
		)
		if err != nil {
			log.Error(err)
			os.Exit(exitPortOpen)
		}

		sess := bootloader.New(port,
			bootloader.WithDeviceLookup(pictype.Lookup),
			bootloader.WithLogger(log),
		)
		defer sess.Close()

		err = sess.ResetByCommand(resetSeq,
			[]byte(viper.GetString("pic.reset-reply-sequence")),
			viper.GetInt("pic.reset-max-attempts"),
		)
		if err != nil {
			log.Error(err)
			os.Exit(exitResetFailed)
		}

		fmt.Println("PIC reset by command")
	},
}

func runHardwareReset(device string) {
	if err := bootloader.HardwareReset(device, log); err != nil {
		log.Error(err)
		os.Exit(exitResetFailed)
	}

	fmt.Println("PIC reset by DTR pulse")
	fmt.Println("Run 'picloader detect' to confirm the bootloader is up")
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().Bool("hw", false, "pulse the DTR line instead of sending the reset sequence")
	resetCmd.Flags().IntP("baud", "b", 115200, "serial port baud rate")
	resetCmd.Flags().IntP("timeout", "t", 1, "serial read timeout in seconds")
}
