// ABOUTME: CLI command that renders outbound strap commands for a transport to send.
// ABOUTME: Prints one de-framed packet per call in the capture line format.
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/harperreed/pulse/internal/models"
	"github.com/harperreed/pulse/internal/packet"
)

type outboundCommand struct {
	arg   string
	build func(arg string, now time.Time) (packet.Packet, error)
}

func noArg(fn func() packet.Packet) outboundCommand {
	return outboundCommand{build: func(string, time.Time) (packet.Packet, error) { return fn(), nil }}
}

var outboundCommands = map[string]outboundCommand{
	"history":       noArg(packet.HistoryStartRequest),
	"high-freq-on":  noArg(packet.EnterHighFreqSync),
	"high-freq-off": noArg(packet.ExitHighFreqSync),
	"reboot":        noArg(packet.Reboot),
	"name":          noArg(packet.GetName),
	"hello":         noArg(packet.HelloHarvard),
	"version":       noArg(packet.VersionRequest),
	"set-clock": {build: func(_ string, now time.Time) (packet.Packet, error) {
		return packet.SetClock(now), nil
	}},
	"history-ack": {arg: "<data>", build: func(arg string, _ time.Time) (packet.Packet, error) {
		data, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return packet.Packet{}, fmt.Errorf("invalid history data %q: %w", arg, err)
		}
		return packet.HistoryEndAck(uint32(data)), nil
	}},
	"alarm": {arg: "<unix|RFC3339>", build: func(arg string, _ time.Time) (packet.Packet, error) {
		if unix, err := strconv.ParseUint(arg, 10, 32); err == nil {
			return packet.AlarmTime(uint32(unix)), nil
		}
		at, err := time.Parse(time.RFC3339, arg)
		if err != nil {
			return packet.Packet{}, fmt.Errorf("invalid alarm time %q", arg)
		}
		return packet.AlarmTime(uint32(at.Unix())), nil
	}},
}

func outboundNames() []string {
	names := make([]string, 0, len(outboundCommands))
	for name := range outboundCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// buildCommand builds the named outbound packet. args holds at most the
// command's single argument.
func buildCommand(name string, args []string, now time.Time) (packet.Packet, error) {
	oc, ok := outboundCommands[name]
	if !ok {
		return packet.Packet{}, fmt.Errorf("unknown command %q", name)
	}
	switch {
	case oc.arg != "" && len(args) != 1:
		return packet.Packet{}, fmt.Errorf("%s needs %s", name, oc.arg)
	case oc.arg == "" && len(args) != 0:
		return packet.Packet{}, fmt.Errorf("%s takes no argument", name)
	}
	var arg string
	if len(args) == 1 {
		arg = args[0]
	}
	return oc.build(arg, now)
}

// commandLine renders p as a capture line addressed to the command characteristic.
func commandLine(p packet.Packet) (string, error) {
	b, err := json.Marshal(capturedPacket{
		Characteristic: models.CharacteristicCmd,
		Type:           uint8(p.Type),
		Seq:            p.Seq,
		Cmd:            p.Cmd,
		Payload:        hex.EncodeToString(p.Payload),
	})
	if err != nil {
		return "", fmt.Errorf("encode command: %w", err)
	}
	return string(b), nil
}

var commandCmd = &cobra.Command{
	Use:   "command <name> [arg]",
	Short: "Render an outbound strap command",
	Long: `Render an outbound strap command as one capture line, ready for a
transport to frame and write to the strap.

COMMANDS:

  history                  Request stored history
  history-ack <data>       Acknowledge a history-end packet
  high-freq-on             Enter high-frequency sync
  high-freq-off            Leave high-frequency sync
  set-clock                Set the strap clock to now
  alarm <unix|RFC3339>     Arm the alarm
  reboot                   Restart the strap
  name                     Ask for the advertising name
  hello                    Ask the Harvard core for its hello report
  version                  Ask for firmware versions

EXAMPLES:

  pulse command history
  pulse command alarm 2025-03-02T06:30:00Z`,
	ValidArgs: outboundNames(),
	Args:      cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := buildCommand(args[0], args[1:], time.Now())
		if err != nil {
			return err
		}
		line, err := commandLine(p)
		if err != nil {
			return err
		}
		fmt.Println(line)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commandCmd)
}
