package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"picloader/serial"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List serial ports the PIC could be attached to",
	Long: `List the serial devices present on the system. Useful for picking the
serial.device configuration value.

Examples:
  picloader list`,
	Run: func(cmd *cobra.Command, args []string) {
		ports, err := serial.ListPorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
			os.Exit(exitInternalError)
		}

		if len(ports) == 0 {
			fmt.Println("No serial ports found")
			return
		}

		for _, port := range ports {
			fmt.Println(port)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
