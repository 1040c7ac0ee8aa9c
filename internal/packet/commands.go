// ABOUTME: Builders for outbound command packets sent to the strap.
// ABOUTME: Payload layouts only; framing and CRCs belong to the transport.
package packet

import (
	"encoding/binary"
	"time"
)

func command(cmd Command, payload []byte) Packet {
	if payload == nil {
		payload = []byte{}
	}
	return New(TypeCommand, 0, uint8(cmd), payload)
}

// HistoryEndAck acknowledges a HistoryEnd metadata packet, echoing its data field.
func HistoryEndAck(data uint32) Packet {
	payload := make([]byte, 9)
	payload[0] = 0x01
	binary.LittleEndian.PutUint32(payload[1:5], data)
	return command(CmdHistoricalDataResult, payload)
}

// HistoryStartRequest asks the strap to start sending stored history.
func HistoryStartRequest() Packet {
	return command(CmdSendHistoricalData, []byte{0x00})
}

// EnterHighFreqSync switches the strap into high-frequency sync mode.
func EnterHighFreqSync() Packet {
	return command(CmdEnterHighFreqSync, nil)
}

// ExitHighFreqSync leaves high-frequency sync mode.
func ExitHighFreqSync() Packet {
	return command(CmdExitHighFreqSync, nil)
}

// SetClock sets the strap clock to now.
func SetClock(now time.Time) Packet {
	payload := make([]byte, 9)
	binary.LittleEndian.PutUint32(payload[0:4], uint32(now.Unix()))
	return command(CmdSetClock, payload)
}

// AlarmTime arms the strap alarm at the given unix time.
func AlarmTime(unix uint32) Packet {
	payload := make([]byte, 9)
	payload[0] = 0x01
	binary.LittleEndian.PutUint32(payload[1:5], unix)
	return command(CmdSetAlarmTime, payload)
}

// Reboot restarts the strap.
func Reboot() Packet {
	return command(CmdRebootStrap, []byte{0x00})
}

// GetName asks the strap for its advertising name.
func GetName() Packet {
	return command(CmdGetAdvertisingNameHarvard, []byte{0x00})
}

// HelloHarvard asks the Harvard core for its hello report.
func HelloHarvard() Packet {
	return command(CmdGetHelloHarvard, []byte{0x00})
}

// VersionRequest asks the strap to report its firmware versions.
func VersionRequest() Packet {
	return command(CmdReportVersionInfo, []byte{0x00})
}
