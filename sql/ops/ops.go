// Package ops persists ledger operations.
package ops

import (
	"fmt"

	"github.com/timotree3/holochain/common/types"
	"github.com/timotree3/holochain/dht/arc"
	"github.com/timotree3/holochain/sql"
)

// Add inserts the operation. It returns sql.ErrObjectExists if the operation
// is already stored.
func Add(db sql.Executor, op *types.Op) error {
	if op.AuthoredAt > types.MaxTimestamp {
		return fmt.Errorf("op %s authored at %d: out of range", op.Hash.ShortString(), op.AuthoredAt)
	}
	if _, err := db.Exec(`insert into ops (id, loc, authored_at, data)
	values (?1, ?2, ?3, ?4);`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, op.Hash.Bytes())
			stmt.BindInt64(2, int64(op.Loc()))
			stmt.BindInt64(3, int64(op.AuthoredAt))
			stmt.BindBytes(4, op.Data)
		}, nil,
	); err != nil {
		return fmt.Errorf("insert op %s: %w", op.Hash.ShortString(), err)
	}
	return nil
}

// Has returns true if the operation is stored.
func Has(db sql.Executor, h types.OpHash) (bool, error) {
	rows, err := db.Exec("select 1 from ops where id = ?1;",
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, h.Bytes())
		}, nil)
	if err != nil {
		return false, fmt.Errorf("has op %s: %w", h.ShortString(), err)
	}
	return rows > 0, nil
}

// Get loads the operation by its hash.
func Get(db sql.Executor, h types.OpHash) (*types.Op, error) {
	op := &types.Op{Hash: h}
	rows, err := db.Exec("select authored_at, data from ops where id = ?1;",
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, h.Bytes())
		}, func(stmt *sql.Statement) bool {
			op.AuthoredAt = types.Timestamp(stmt.ColumnInt64(0))
			op.Data = make([]byte, stmt.ColumnLen(1))
			stmt.ColumnBytes(1, op.Data)
			return true
		})
	if err != nil {
		return nil, fmt.Errorf("get op %s: %w", h.ShortString(), err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: op %s", sql.ErrNotFound, h.ShortString())
	}
	return op, nil
}

// IterateInWindow calls fn for every operation authored within [start, end],
// oldest first. Iteration stops when fn returns false.
func IterateInWindow(
	db sql.Executor,
	start, end types.Timestamp,
	fn func(h types.OpHash, loc arc.Loc, authoredAt types.Timestamp) bool,
) error {
	if start > types.MaxTimestamp {
		return nil
	}
	end = min(end, types.MaxTimestamp)
	if _, err := db.Exec(`select id, loc, authored_at from ops
	where authored_at between ?1 and ?2
	order by authored_at, id;`,
		func(stmt *sql.Statement) {
			stmt.BindInt64(1, int64(start))
			stmt.BindInt64(2, int64(end))
		}, func(stmt *sql.Statement) bool {
			var h types.OpHash
			stmt.ColumnBytes(0, h[:])
			return fn(h, arc.Loc(stmt.ColumnInt64(1)), types.Timestamp(stmt.ColumnInt64(2)))
		}); err != nil {
		return fmt.Errorf("ops in window [%d, %d]: %w", start, end, err)
	}
	return nil
}

// Oldest returns the authoring time of the oldest stored operation.
// The boolean is false if there are no operations.
func Oldest(db sql.Executor) (types.Timestamp, bool, error) {
	var (
		oldest types.Timestamp
		found  bool
	)
	if _, err := db.Exec("select min(authored_at) from ops;", nil,
		func(stmt *sql.Statement) bool {
			if !sql.IsNull(stmt, 0) {
				oldest = types.Timestamp(stmt.ColumnInt64(0))
				found = true
			}
			return true
		}); err != nil {
		return 0, false, fmt.Errorf("oldest op: %w", err)
	}
	return oldest, found, nil
}

// Count returns the number of stored operations.
func Count(db sql.Executor) (int, error) {
	var count int
	if _, err := db.Exec("select count(*) from ops;", nil,
		func(stmt *sql.Statement) bool {
			count = stmt.ColumnInt(0)
			return true
		}); err != nil {
		return 0, fmt.Errorf("count ops: %w", err)
	}
	return count, nil
}
