package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"picloader/bootloader"
	"picloader/hexfile"
	"picloader/pictype"
	"picloader/serial"
)

// flashCmd represents the flash command
var flashCmd = &cobra.Command{
	Use:   "flash",
	Short: "Flash a firmware image into the PIC",
	Long: `Flash an Intel-HEX firmware image into the PIC through its resident
bootloader.

The device is contacted in three steps: first assuming the bootloader is
already running, then after the configured software reset sequence, and
finally after a DTR hardware reset. The firmware's reset vector is relocated
so the bootloader regains control after every reset.

Examples:
  picloader flash -d /dev/ttyUSB0 -f firmware.hex
  picloader flash -f firmware.hex -p /tmp/picloader/progress`,
}

func init() {
	flashCmd.Run = func(cmd *cobra.Command, args []string) {
		runFlash()
	}
	rootCmd.AddCommand(flashCmd)

	flashCmd.Flags().StringP("firmware", "f", "", "PIC firmware file to flash (Intel HEX)")
	flashCmd.Flags().StringP("device", "d", "", "serial port the PIC is connected to")
	flashCmd.Flags().IntP("baud", "b", 0, "serial port baud rate")
	flashCmd.Flags().IntP("timeout", "t", 0, "serial read timeout in seconds")
	flashCmd.Flags().StringP("progress", "p", "", "file to write flashing progress percentage to")

	viper.BindPFlag("pic.firmware", flashCmd.Flags().Lookup("firmware"))
	viper.BindPFlag("serial.device", flashCmd.Flags().Lookup("device"))
	viper.BindPFlag("pic.progress-file", flashCmd.Flags().Lookup("progress"))
}

func runFlash() {
	device := viper.GetString("serial.device")
	if device == "" {
		log.Error("serial device is not specified")
		os.Exit(exitConfigFailed)
	}

	firmware := viper.GetString("pic.firmware")
	if firmware == "" {
		log.Error("no firmware file specified")
		os.Exit(exitNoFirmware)
	}

	baud := viper.GetInt("serial.baud")
	if f := flashCmd.Flags().Lookup("baud"); f.Changed {
		baud, _ = strconv.Atoi(f.Value.String())
	}
	timeout := viper.GetInt("serial.timeout")
	if f := flashCmd.Flags().Lookup("timeout"); f.Changed {
		timeout, _ = strconv.Atoi(f.Value.String())
	}

	port, err := serial.Open(device,
		serial.WithBaudRate(baud),
		serial.WithReadTimeout(time.Duration(timeout)*time.Second),
	)
	if err != nil {
		log.Error(err)
		os.Exit(exitPortOpen)
	}
	log.Infof("serial port %s opened with baud rate %d, read timeout %ds", device, baud, timeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progressFile := viper.GetString("pic.progress-file")

	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	spin.Suffix = " flashing..."

	sess := bootloader.New(port,
		bootloader.WithDeviceLookup(pictype.Lookup),
		bootloader.WithLogger(log),
		bootloader.WithCommandReset(
			[]byte(viper.GetString("pic.reset-sequence")),
			[]byte(viper.GetString("pic.reset-reply-sequence")),
			viper.GetInt("pic.reset-max-attempts"),
		),
		bootloader.WithHardwareReset(viper.GetString("serial.reset-device")),
		bootloader.WithProgress(func(pct int) {
			spin.Suffix = fmt.Sprintf(" flashing... %d%%", pct)
			log.Debugf("flashing progress is %d%%", pct)
			if progressFile != "" {
				writeProgressFile(progressFile, pct)
			}
		}),
	)
	// The port must be released whether the run succeeds, fails or is
	// interrupted.
	defer sess.Close()

	spin.Start()
	err = sess.Bootload(ctx, firmware)
	spin.Stop()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("picloader interrupted")
			os.Exit(130)
		}
		log.Error(err)
		os.Exit(exitCodeFor(err))
	}

	fmt.Println("Firmware flashed successfully")
}

// exitCodeFor maps each failure kind to its stable exit code so operators
// can tell "no device" from "bad firmware" from "write failure" at a glance.
func exitCodeFor(err error) int {
	var (
		openErr   *serial.OpenError
		resetErr  *bootloader.ResetError
		detectErr *bootloader.DetectError
		readErr   *hexfile.ReadError
		formatErr *hexfile.FormatError
		writeErr  *bootloader.WriteError
	)
	switch {
	case errors.As(err, &openErr):
		return exitPortOpen
	case errors.As(err, &resetErr):
		return exitResetFailed
	case errors.As(err, &detectErr):
		return exitNotDetected
	case errors.As(err, &readErr):
		return exitFirmwareRead
	case errors.As(err, &formatErr):
		return exitFirmwareFormat
	case errors.As(err, &writeErr):
		return exitWriteFailed
	default:
		return exitInternalError
	}
}

// writeProgressFile saves the completion percentage, refusing values outside
// 0-100. Failures are logged and swallowed: progress reporting must never
// abort a flashing run.
func writeProgressFile(path string, pct int) {
	if pct < 0 || pct > 100 {
		log.Errorf("wrong percentage specified: %d", pct)
		return
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(pct)), 0o644); err != nil {
		log.Warnf("failed to write progress info to file %s: %v", path, err)
	}
}
