package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"picloader/bootloader"
	"picloader/pictype"
	"picloader/serial"
)

// detectCmd represents the detect command
var detectCmd = &cobra.Command{
	Use:   "detect <port>",
	Short: "Probe for a PIC running the bootloader",
	Long: `Send the identification probe and report which PIC answers.

The resident bootloader must be executing on the device at the moment of the
probe; it only listens for a short window after reset. Use 'picloader reset'
first if the application firmware is running.

Examples:
  picloader detect /dev/ttyUSB0
  picloader detect /dev/ttyUSB0 --baud 19200`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		baud, _ := cmd.Flags().GetInt("baud")
		timeout, _ := cmd.Flags().GetInt("timeout")

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

		if err := sess.Detect(); err != nil {
			log.Error(err)
			os.Exit(exitNotDetected)
		}

		dev := sess.Device()
		fmt.Printf("Detected PIC%s (%s family), type byte %#02x, max flash address %#x\n",
			dev.Name, dev.Family, dev.Type, dev.MaxFlash)
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().IntP("baud", "b", 115200, "serial port baud rate")
	detectCmd.Flags().IntP("timeout", "t", 1, "serial read timeout in seconds")
}
