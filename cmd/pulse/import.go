// ABOUTME: CLI commands for feeding captured packets into the store.
// ABOUTME: import logs and decodes a JSON-lines capture; rerun decodes the packet log again.
package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/pulse/internal/ingest"
	"github.com/harperreed/pulse/internal/models"
	"github.com/harperreed/pulse/internal/packet"
)

var rerunPageSize int

// capturedPacket is one line of a capture file.
type capturedPacket struct {
	Characteristic string `json:"characteristic"`
	Type           uint8  `json:"type"`
	Seq            uint8  `json:"seq"`
	Cmd            uint8  `json:"cmd"`
	Payload        string `json:"payload"`
}

// parsePacketLine parses one capture line. Blank lines and # comments yield nil.
func parsePacketLine(line string) (*models.PacketRecord, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, nil
	}

	var c capturedPacket
	if err := json.Unmarshal([]byte(line), &c); err != nil {
		return nil, fmt.Errorf("parse packet: %w", err)
	}
	payload, err := hex.DecodeString(strings.ReplaceAll(c.Payload, " ", ""))
	if err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}
	return models.NewPacketRecord(c.Characteristic, c.Type, c.Seq, c.Cmd, payload), nil
}

type importSummary struct {
	Packets  int
	Samples  int
	Skipped  int
	Replies  []packet.Packet
	Complete bool
}

// importPackets logs and handles every packet in r.
func importPackets(ctx context.Context, h *ingest.Handler, r io.Reader) (*importSummary, error) {
	summary := &importSummary{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		rec, err := parsePacketLine(scanner.Text())
		if err != nil {
			return summary, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if rec == nil {
			continue
		}

		res, err := h.Receive(ctx, rec)
		if err != nil {
			return summary, fmt.Errorf("line %d: %w", lineNo, err)
		}
		summary.Packets++
		if res.Sample != nil {
			summary.Samples++
		}
		if res.Skipped {
			summary.Skipped++
		}
		if res.Reply != nil {
			summary.Replies = append(summary.Replies, *res.Reply)
		}
		if res.Complete {
			summary.Complete = true
		}
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("read capture: %w", err)
	}
	return summary, nil
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import captured strap packets",
	Long: `Import de-framed strap packets from a JSON-lines capture.

Each line is one packet:

  {"characteristic":"data","type":47,"seq":1,"cmd":0,"payload":"0a0b..."}

Every packet is appended to the packet log before it is decoded, so a
later 'pulse rerun' can decode it again. Valid history readings become
samples. Replies the strap expects (history-end acknowledgements,
version requests) are printed so a transport can send them.

Use '-' to read from stdin.

EXAMPLES:

  pulse import capture.jsonl
  cat capture.jsonl | pulse import -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open capture: %w", err)
			}
			defer f.Close()
			r = f
		}

		summary, err := importPackets(cmd.Context(), ingest.New(repo), r)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		faint := color.New(color.Faint)
		for _, p := range summary.Replies {
			fmt.Printf("%s %s %s\n", faint.Sprint("reply"), packet.Command(p.Cmd), hex.EncodeToString(p.Payload))
		}
		color.Green("✓ Imported %d packets (%d samples, %d skipped)", summary.Packets, summary.Samples, summary.Skipped)
		if summary.Complete {
			fmt.Println("History transfer complete.")
		}
		return nil
	},
}

var rerunCmd = &cobra.Command{
	Use:   "rerun",
	Short: "Decode the packet log again",
	Long: `Decode every logged packet again, in log order.

Use this after upgrading pulse to pick up readings an older decoder
skipped. Samples that already exist are left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := ingest.New(repo).Rerun(cmd.Context(), rerunPageSize)
		if err != nil {
			return fmt.Errorf("rerun failed: %w", err)
		}
		color.Green("✓ Decoded %d packets (%d samples, %d skipped)", summary.Packets, summary.Samples, summary.Skipped)
		return nil
	},
}

func init() {
	rerunCmd.Flags().IntVar(&rerunPageSize, "page", ingest.DefaultPageSize, "packets loaded per page")
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(rerunCmd)
}
