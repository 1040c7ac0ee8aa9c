// ABOUTME: PacketRecord model for the raw packet log.
// ABOUTME: Packets are logged before decoding so they can be decoded again later.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Characteristics a packet can arrive on.
const (
	CharacteristicData = "data"
	CharacteristicCmd  = "cmd"
)

// PacketRecord is a de-framed strap packet as it was received.
type PacketRecord struct {
	Seq            int64 // log position, assigned by the store
	ID             uuid.UUID
	Characteristic string
	Type           uint8
	PacketSeq      uint8
	Cmd            uint8
	Payload        []byte
	ReceivedAt     time.Time
}

// NewPacketRecord creates a PacketRecord with a generated UUID.
func NewPacketRecord(characteristic string, packetType, seq, cmd uint8, payload []byte) *PacketRecord {
	return &PacketRecord{
		ID:             uuid.New(),
		Characteristic: characteristic,
		Type:           packetType,
		PacketSeq:      seq,
		Cmd:            cmd,
		Payload:        payload,
		ReceivedAt:     time.Now().UTC(),
	}
}
