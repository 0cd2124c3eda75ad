// Package agents persists agent infos. Only the latest info of every agent
// is kept.
package agents

import (
	"fmt"

	"github.com/timotree3/holochain/common/types"
	"github.com/timotree3/holochain/dht/arc"
	"github.com/timotree3/holochain/sql"
)

const fields = "agent, signed_at, expires_at, arc_start, arc_end"

func decode(stmt *sql.Statement) types.AgentInfo {
	var info types.AgentInfo
	stmt.ColumnBytes(0, info.Agent[:])
	info.SignedAtMs = types.Timestamp(stmt.ColumnInt64(1))
	info.ExpiresAtMs = types.Timestamp(stmt.ColumnInt64(2))
	info.Arc = arc.Arc{
		Start: arc.Loc(stmt.ColumnInt64(3)),
		End:   arc.Loc(stmt.ColumnInt64(4)),
	}
	return info
}

// Add stores the info unless an info of the same agent signed at the same
// time or later is already stored. It returns true if the info was stored.
func Add(db sql.Executor, info *types.AgentInfo) (bool, error) {
	if info.SignedAtMs > types.MaxTimestamp || info.ExpiresAtMs > types.MaxTimestamp {
		return false, fmt.Errorf("agent %s: timestamp out of range", info.Agent.ShortString())
	}
	rows, err := db.Exec(`insert into agents (`+fields+`)
	values (?1, ?2, ?3, ?4, ?5)
	on conflict (agent) do update set
		signed_at = excluded.signed_at,
		expires_at = excluded.expires_at,
		arc_start = excluded.arc_start,
		arc_end = excluded.arc_end
	where excluded.signed_at > agents.signed_at
	returning 1;`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, info.Agent.Bytes())
			stmt.BindInt64(2, int64(info.SignedAtMs))
			stmt.BindInt64(3, int64(info.ExpiresAtMs))
			stmt.BindInt64(4, int64(info.Arc.Start))
			stmt.BindInt64(5, int64(info.Arc.End))
		}, nil,
	)
	if err != nil {
		return false, fmt.Errorf("insert agent %s: %w", info.Agent.ShortString(), err)
	}
	return rows > 0, nil
}

// Get loads the latest info of the agent.
func Get(db sql.Executor, id types.AgentID) (*types.AgentInfo, error) {
	var info *types.AgentInfo
	if _, err := db.Exec("select "+fields+" from agents where agent = ?1;",
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, id.Bytes())
		}, func(stmt *sql.Statement) bool {
			decoded := decode(stmt)
			info = &decoded
			return false
		}); err != nil {
		return nil, fmt.Errorf("get agent %s: %w", id.ShortString(), err)
	}
	if info == nil {
		return nil, fmt.Errorf("%w: agent %s", sql.ErrNotFound, id.ShortString())
	}
	return info, nil
}

// GetByKey loads the info of the agent signed at the key's time.
func GetByKey(db sql.Executor, key types.AgentKey) (*types.AgentInfo, error) {
	info, err := Get(db, key.Agent)
	if err != nil {
		return nil, err
	}
	if info.SignedAtMs != key.SignedAtMs {
		return nil, fmt.Errorf("%w: agent %s signed at %d", sql.ErrNotFound, key.Agent.ShortString(), key.SignedAtMs)
	}
	return info, nil
}

// All returns all stored infos ordered by agent.
func All(db sql.Executor) ([]types.AgentInfo, error) {
	var infos []types.AgentInfo
	if _, err := db.Exec("select "+fields+" from agents order by agent;", nil,
		func(stmt *sql.Statement) bool {
			infos = append(infos, decode(stmt))
			return true
		}); err != nil {
		return nil, fmt.Errorf("all agents: %w", err)
	}
	return infos, nil
}

// Overlapping returns the infos whose arc overlaps any of the arcs.
func Overlapping(db sql.Executor, arcs []arc.Arc) ([]types.AgentInfo, error) {
	all, err := All(db)
	if err != nil {
		return nil, err
	}
	var infos []types.AgentInfo
	for _, info := range all {
		if arc.OverlapsAny(arcs, info.Arc) {
			infos = append(infos, info)
		}
	}
	return infos, nil
}

// Prune deletes infos that expired before the given time and returns how
// many were deleted.
func Prune(db sql.Executor, before types.Timestamp) (int, error) {
	rows, err := db.Exec("delete from agents where expires_at < ?1 returning agent;",
		func(stmt *sql.Statement) {
			stmt.BindInt64(1, int64(min(before, types.MaxTimestamp)))
		}, nil)
	if err != nil {
		return 0, fmt.Errorf("prune agents: %w", err)
	}
	return rows, nil
}
