// ABOUTME: Decodes de-framed strap packets into typed domain records.
// ABOUTME: Pure parsing with a closed error taxonomy; never panics on short input.
package packet

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/harperreed/pulse/internal/models"
)

// consoleMarker is a record separator the strap interleaves into log text.
var consoleMarker = []byte{0x34, 0x00, 0x01}

// Data is a decoded packet. The concrete type is one of HistoryReading,
// HistoryMetadata, ConsoleLog, RunAlarm, Event, UnknownEvent or VersionInfo.
type Data interface {
	isData()
}

// HistoryReading is one stored physiological reading.
type HistoryReading struct {
	Unix     uint32
	BPM      uint8
	RR       []uint16
	Activity uint32
}

// IsValid reports whether the reading carries a heart rate. Zero bpm is the
// strap's wake/garbage sentinel.
func (h HistoryReading) IsValid() bool {
	return h.BPM > 0
}

// Sample converts the reading to a storable sample. The activity code is
// zero-extended to int64.
func (h HistoryReading) Sample() *models.Sample {
	return models.NewSample(int64(h.Unix), h.BPM, h.RR, int64(h.Activity))
}

// HistoryMetadata marks the boundaries of a history transfer.
type HistoryMetadata struct {
	Unix uint32
	Data uint32
	Cmd  MetadataType
}

// ConsoleLog is a line of firmware console output.
type ConsoleLog struct {
	Unix uint32
	Text string
}

// RunAlarm reports that the strap's alarm fired.
type RunAlarm struct {
	Unix uint32
}

// Event is a recognized strap event.
type Event struct {
	Unix  uint32
	Event Command
}

// UnknownEvent is an event whose command byte is not a known command.
type UnknownEvent struct {
	Unix  uint32
	Event uint8
}

// VersionInfo holds the firmware versions of the strap's two processors.
type VersionInfo struct {
	Harvard  string
	Boylston string
}

func (HistoryReading) isData()  {}
func (HistoryMetadata) isData() {}
func (ConsoleLog) isData()      {}
func (RunAlarm) isData()        {}
func (Event) isData()           {}
func (UnknownEvent) isData()    {}
func (VersionInfo) isData()     {}

// Decode parses p into its domain record.
func Decode(p Packet) (Data, error) {
	switch p.Type {
	case TypeHistoricalData:
		return decodeHistoryReading(p.Payload)
	case TypeMetadata:
		return decodeMetadata(p)
	case TypeConsoleLogs:
		return decodeConsoleLog(p.Payload)
	case TypeEvent:
		return decodeEvent(p)
	case TypeCommandResponse:
		cmd, ok := commandFromByte(p.Cmd)
		if !ok {
			return nil, fmt.Errorf("%w: 0x%02x", ErrInvalidCommandType, p.Cmd)
		}
		if cmd != CmdReportVersionInfo {
			return nil, fmt.Errorf("%w: command response %s", ErrUnimplemented, cmd)
		}
		return decodeVersionInfo(p.Payload)
	}
	return nil, fmt.Errorf("%w: packet type %s", ErrUnimplemented, p.Type)
}

func decodeHistoryReading(payload []byte) (Data, error) {
	r := newReader(payload)
	if err := r.skip(4); err != nil {
		return nil, err
	}
	unix, err := r.u32()
	if err != nil {
		return nil, err
	}
	if err := r.skip(6); err != nil {
		return nil, err
	}
	bpm, err := r.u8()
	if err != nil {
		return nil, err
	}
	rrCount, err := r.u8()
	if err != nil {
		return nil, err
	}

	rr := make([]uint16, 0, 4)
	for range 4 {
		v, err := r.u16()
		if err != nil {
			return nil, err
		}
		if v == 0 {
			continue
		}
		rr = append(rr, v)
	}
	if len(rr) != int(rrCount) {
		return nil, fmt.Errorf("%w: rr count %d but %d non-zero intervals", ErrInvalidData, rrCount, len(rr))
	}

	activity, err := r.u32()
	if err != nil {
		return nil, err
	}

	return HistoryReading{Unix: unix, BPM: bpm, RR: rr, Activity: activity}, nil
}

func decodeMetadata(p Packet) (Data, error) {
	cmd, ok := metadataTypeFromByte(p.Cmd)
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02x", ErrInvalidMetadataType, p.Cmd)
	}

	r := newReader(p.Payload)
	unix, err := r.u32()
	if err != nil {
		return nil, err
	}
	if err := r.skip(6); err != nil {
		return nil, err
	}
	data, err := r.u32()
	if err != nil {
		return nil, err
	}

	return HistoryMetadata{Unix: unix, Data: data, Cmd: cmd}, nil
}

func decodeConsoleLog(payload []byte) (Data, error) {
	r := newReader(payload)
	if err := r.skip(1); err != nil {
		return nil, err
	}
	unix, err := r.u32()
	if err != nil {
		return nil, err
	}
	if err := r.skip(2); err != nil {
		return nil, err
	}

	text := bytes.ReplaceAll(r.rest(), consoleMarker, nil)
	if !utf8.Valid(text) {
		// Partially corrupted logs still carry useful text.
		return ConsoleLog{Unix: unix, Text: strings.ToValidUTF8(string(text), "�")}, nil
	}
	return ConsoleLog{Unix: unix, Text: string(text)}, nil
}

func decodeEvent(p Packet) (Data, error) {
	r := newReader(p.Payload)
	if err := r.skip(1); err != nil {
		return nil, err
	}
	unix, err := r.u32()
	if err != nil {
		return nil, err
	}

	cmd, ok := commandFromByte(p.Cmd)
	if !ok {
		return UnknownEvent{Unix: unix, Event: p.Cmd}, nil
	}

	switch cmd {
	case CmdRunAlarm:
		return RunAlarm{Unix: unix}, nil
	case CmdSendR10R11Realtime,
		CmdToggleRealtimeHr,
		CmdGetClock,
		CmdRebootStrap,
		CmdToggleR7DataCollection,
		CmdToggleGenericHrProfile:
		return Event{Unix: unix, Event: cmd}, nil
	}
	return nil, fmt.Errorf("%w: event %s", ErrUnimplemented, cmd)
}

func decodeVersionInfo(payload []byte) (Data, error) {
	r := newReader(payload)
	if err := r.skip(3); err != nil {
		return nil, err
	}

	var v [8]uint32
	for i := range v {
		n, err := r.u32()
		if err != nil {
			return nil, err
		}
		v[i] = n
	}

	return VersionInfo{
		Harvard:  fmt.Sprintf("%d.%d.%d.%d", v[0], v[1], v[2], v[3]),
		Boylston: fmt.Sprintf("%d.%d.%d.%d", v[4], v[5], v[6], v[7]),
	}, nil
}
