// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package duckdb

import (
	"context"

	"github.com/p1nant0m/packet-eater/internal/errors"
	v1 "github.com/p1nant0m/packet-eater/pkg/api/v1"
	metav1 "github.com/p1nant0m/packet-eater/pkg/meta/v1"
)

const packetColumns = "id, session_id, message_id, data, captured_at, packet_type, packet_size, direction, zone_id, origin"

type packets struct {
	ds *datastore
}

func newPackets(ds *datastore) *packets {
	return &packets{ds}
}

func (p *packets) Create(ctx context.Context, packet *v1.PacketRecord) error {
	// Checked up front because a failed insert aborts the surrounding
	// DuckDB transaction.
	var exists bool
	if err := p.ds.q.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM packets WHERE message_id = ?)", packet.MessageID,
	).Scan(&exists); err != nil {
		return errors.Storage("check packet", err)
	}
	if exists {
		return errors.Wrapf(errors.ErrDuplicateMessage, "message %s", packet.MessageID)
	}

	err := p.ds.q.QueryRowContext(ctx,
		"INSERT INTO packets (session_id, message_id, data, captured_at, packet_type, packet_size, direction, zone_id, origin) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id",
		packet.SessionID, packet.MessageID, packet.Data, packet.Timestamp.UTC(),
		int64(packet.Type), int64(packet.Size), int64(packet.Direction), int64(packet.ZoneID), int64(packet.Origin),
	).Scan(&packet.ID)
	if err != nil {
		if isConstraint(err) {
			return errors.Wrapf(errors.ErrDuplicateMessage, "message %s", packet.MessageID)
		}
		return errors.Storage("create packet", err)
	}
	return nil
}

func (p *packets) ListBySession(ctx context.Context, sessionID int64, opts metav1.ListOptions) ([]*v1.PacketRecord, error) {
	query, args := paginate("SELECT "+packetColumns+" FROM packets WHERE session_id = ? ORDER BY captured_at, id", opts)
	rows, err := p.ds.q.QueryContext(ctx, query, append([]interface{}{sessionID}, args...)...)
	if err != nil {
		return nil, errors.Storage("list packets", err)
	}
	defer rows.Close()

	result := []*v1.PacketRecord{}
	for rows.Next() {
		var rec v1.PacketRecord
		var typ, size, direction, zoneID, origin int64
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.MessageID, &rec.Data, &rec.Timestamp,
			&typ, &size, &direction, &zoneID, &origin); err != nil {
			return nil, errors.Storage("list packets", err)
		}
		rec.Timestamp = rec.Timestamp.UTC()
		rec.Type = uint16(typ)
		rec.Size = uint16(size)
		rec.Direction = v1.Direction(direction)
		rec.ZoneID = uint16(zoneID)
		rec.Origin = v1.Origin(origin)
		result = append(result, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("list packets", err)
	}
	return result, nil
}

func (p *packets) Count(ctx context.Context) (int64, error) {
	return count(ctx, p.ds.q, "packets")
}

func (p *packets) TotalBytes(ctx context.Context) (int64, error) {
	var n int64
	if err := p.ds.q.QueryRowContext(ctx,
		"SELECT CAST(COALESCE(SUM(packet_size), 0) AS BIGINT) FROM packets",
	).Scan(&n); err != nil {
		return 0, errors.Storage("total packet bytes", err)
	}
	return n, nil
}
