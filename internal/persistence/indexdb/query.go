package indexdb

import (
	"context"
	"database/sql"
)

type TickRow struct {
	Tick   uint64 `json:"tick"`
	Digest string `json:"digest"`
	Joins  int    `json:"joins"`
	Leaves int    `json:"leaves"`
	Inputs int    `json:"inputs"`
}

type AuditRow struct {
	Tick     uint64     `json:"tick"`
	Seq      int        `json:"seq"`
	PlayerID string     `json:"player_id"`
	Action   string     `json:"action"`
	Segment  int        `json:"segment"`
	Body     string     `json:"body"`
	Pos      [3]float64 `json:"pos"`
}

// DB exposes the underlying handle for read-only tooling.
func (s *SQLiteIndex) DB() *sql.DB { return s.db }

// RecentTicks returns up to limit ticks, newest first.
func RecentTicks(ctx context.Context, db *sql.DB, limit int) ([]TickRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx, `SELECT tick,digest,joins,leaves,inputs FROM ticks ORDER BY tick DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TickRow
	for rows.Next() {
		var r TickRow
		var tick int64
		if err := rows.Scan(&tick, &r.Digest, &r.Joins, &r.Leaves, &r.Inputs); err != nil {
			return nil, err
		}
		r.Tick = uint64(tick)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Audits returns audit rows in log order, optionally for one player.
func Audits(ctx context.Context, db *sql.DB, playerID string, limit int) ([]AuditRow, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT tick,seq,player_id,action,segment,body,x,y,z FROM audits ORDER BY tick,seq LIMIT ?`
	args := []any{limit}
	if playerID != "" {
		q = `SELECT tick,seq,player_id,action,segment,body,x,y,z FROM audits WHERE player_id=? ORDER BY tick,seq LIMIT ?`
		args = []any{playerID, limit}
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AuditRow
	for rows.Next() {
		var r AuditRow
		var tick int64
		if err := rows.Scan(&tick, &r.Seq, &r.PlayerID, &r.Action, &r.Segment, &r.Body, &r.Pos[0], &r.Pos[1], &r.Pos[2]); err != nil {
			return nil, err
		}
		r.Tick = uint64(tick)
		out = append(out, r)
	}
	return out, rows.Err()
}
