// ABOUTME: Ingest handler: logs raw packets, decodes them, and persists valid history readings.
// ABOUTME: Returns the reply packets the transport must send back to the strap.
package ingest

import (
	"context"
	"fmt"

	"github.com/harperreed/pulse/internal/log"
	"github.com/harperreed/pulse/internal/models"
	"github.com/harperreed/pulse/internal/packet"
)

// DefaultPageSize is how many logged packets Rerun loads at a time.
const DefaultPageSize = 10000

// Store is the subset of the history store the handler writes to.
type Store interface {
	CreateSample(ctx context.Context, s *models.Sample) error
	CreatePacket(ctx context.Context, p *models.PacketRecord) error
	Packets(ctx context.Context, afterSeq int64, limit int) ([]*models.PacketRecord, error)
}

// Result describes what handling one packet produced.
type Result struct {
	// Reply must be sent to the strap when non-nil.
	Reply *packet.Packet
	// Sample is the reading that was persisted, if any.
	Sample *models.Sample
	// Complete is set when the strap reports the end of its stored history.
	Complete bool
	// Skipped is set when the packet could not be decoded or arrived on a
	// characteristic the handler does not read.
	Skipped bool
}

// Handler turns logged packets into samples.
type Handler struct {
	store Store
}

// New creates a Handler over store.
func New(store Store) *Handler {
	return &Handler{store: store}
}

// Receive appends rec to the packet log and then handles it.
func (h *Handler) Receive(ctx context.Context, rec *models.PacketRecord) (Result, error) {
	if err := h.store.CreatePacket(ctx, rec); err != nil {
		return Result{}, fmt.Errorf("log packet: %w", err)
	}
	return h.Handle(ctx, rec)
}

// Handle decodes rec and applies it. Data packets carry history and device
// events; the command characteristic only answers version reports. Packets
// on any other characteristic, or that fail to decode, are logged and
// skipped; only store failures are returned as errors.
func (h *Handler) Handle(ctx context.Context, rec *models.PacketRecord) (Result, error) {
	switch rec.Characteristic {
	case models.CharacteristicData, models.CharacteristicCmd:
	default:
		log.Debugw("dropping packet from unread characteristic",
			"seq", rec.Seq,
			"characteristic", rec.Characteristic)
		return Result{Skipped: true}, nil
	}

	p := packet.New(packet.PacketType(rec.Type), rec.PacketSeq, rec.Cmd, rec.Payload)
	data, err := packet.Decode(p)
	if err != nil {
		log.Warnw("skipping undecodable packet",
			"seq", rec.Seq,
			"characteristic", rec.Characteristic,
			"packet", p.String(),
			"error", err)
		return Result{Skipped: true}, nil
	}

	if rec.Characteristic == models.CharacteristicCmd {
		return handleCmd(data), nil
	}
	return h.handleData(ctx, data)
}

func (h *Handler) handleData(ctx context.Context, data packet.Data) (Result, error) {
	switch d := data.(type) {
	case packet.HistoryReading:
		if !d.IsValid() {
			return Result{}, nil
		}
		s := d.Sample()
		if err := h.store.CreateSample(ctx, s); err != nil {
			return Result{}, fmt.Errorf("store sample: %w", err)
		}
		return Result{Sample: s}, nil

	case packet.HistoryMetadata:
		switch d.Cmd {
		case packet.HistoryEnd:
			ack := packet.HistoryEndAck(d.Data)
			return Result{Reply: &ack}, nil
		case packet.HistoryComplete:
			log.Infow("history transfer complete", "unix", d.Unix)
			return Result{Complete: true}, nil
		}

	case packet.ConsoleLog:
		log.Debugw("strap console", "unix", d.Unix, "text", d.Text)

	case packet.RunAlarm:
		log.Debugw("strap alarm", "unix", d.Unix)

	case packet.Event:
		log.Debugw("strap event", "unix", d.Unix, "event", d.Event.String())

	case packet.UnknownEvent:
		log.Debugw("unknown strap event", "unix", d.Unix, "event", d.Event)

	default:
		log.Debugw("ignoring data packet", "data", fmt.Sprintf("%T", d))
	}

	return Result{}, nil
}

func handleCmd(data packet.Data) Result {
	v, ok := data.(packet.VersionInfo)
	if !ok {
		log.Debugw("ignoring command packet", "data", fmt.Sprintf("%T", data))
		return Result{}
	}
	log.Infow("strap firmware", "harvard", v.Harvard, "boylston", v.Boylston)
	req := packet.VersionRequest()
	return Result{Reply: &req}
}

// RerunSummary counts what a Rerun pass did.
type RerunSummary struct {
	Packets int
	Samples int
	Skipped int
}

// Rerun handles every logged packet again in log order. Samples that already
// exist are left untouched by the store, so reruns are safe.
func (h *Handler) Rerun(ctx context.Context, pageSize int) (*RerunSummary, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	summary := &RerunSummary{}

	var after int64
	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		page, err := h.store.Packets(ctx, after, pageSize)
		if err != nil {
			return summary, fmt.Errorf("load packets: %w", err)
		}
		if len(page) == 0 {
			return summary, nil
		}

		for _, rec := range page {
			res, err := h.Handle(ctx, rec)
			if err != nil {
				return summary, err
			}
			summary.Packets++
			if res.Sample != nil {
				summary.Samples++
			}
			if res.Skipped {
				summary.Skipped++
			}
		}
		after = page[len(page)-1].Seq

		log.Debugw("rerun page", "packets", len(page), "through", after)
	}
}
