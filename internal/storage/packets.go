// ABOUTME: Raw packet log for SQLite storage.
// ABOUTME: Packets are appended in arrival order and paged by log sequence.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/pulse/internal/models"
)

// CreatePacket appends p to the packet log and sets p.Seq. A packet whose ID
// is already logged is skipped and keeps Seq zero.
func (d *DB) CreatePacket(ctx context.Context, p *models.PacketRecord) error {
	query := `
		INSERT INTO packets (id, characteristic, packet_type, packet_seq, cmd, payload, received_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`
	payload := p.Payload
	if payload == nil {
		payload = []byte{}
	}
	res, err := d.db.ExecContext(ctx, query,
		p.ID.String(),
		p.Characteristic,
		p.Type, p.PacketSeq, p.Cmd,
		payload,
		p.ReceivedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("create packet: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create packet: %w", err)
	}
	p.Seq = seq
	return nil
}

// Packets returns up to limit logged packets with a sequence greater than
// afterSeq, in log order.
func (d *DB) Packets(ctx context.Context, afterSeq int64, limit int) ([]*models.PacketRecord, error) {
	query := `
		SELECT seq, id, characteristic, packet_type, packet_seq, cmd, payload, received_at
		FROM packets
		WHERE seq > ?
		ORDER BY seq ASC
	`
	args := []interface{}{afterSeq}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list packets: %w", err)
	}
	defer rows.Close()

	var out []*models.PacketRecord
	for rows.Next() {
		var p models.PacketRecord
		var idStr, receivedAt string
		if err := rows.Scan(&p.Seq, &idStr, &p.Characteristic, &p.Type, &p.PacketSeq, &p.Cmd, &p.Payload, &receivedAt); err != nil {
			return nil, fmt.Errorf("scan packet: %w", err)
		}
		p.ID, _ = uuid.Parse(idStr)
		p.ReceivedAt, _ = time.Parse(time.RFC3339Nano, receivedAt)
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate packets: %w", err)
	}
	return out, nil
}
