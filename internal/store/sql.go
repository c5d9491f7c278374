package store

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var (
	_ Repository       = (*SQLStore)(nil)
	_ ConditionalAdder = (*SQLStore)(nil)
)

const (
	insertUserQuery         = `INSERT INTO users (id, name, email) VALUES (?, ?, ?)`
	insertUserIfAbsentQuery = `INSERT INTO users (id, name, email) VALUES (?, ?, ?) ON CONFLICT (id) DO NOTHING`
	selectUserQuery         = `SELECT id, name, email FROM users WHERE id = ?`
	selectUserIDQuery       = `SELECT id FROM users WHERE id = ?`
	selectIDByNameQuery     = `SELECT id FROM users WHERE name = ? LIMIT 1`
	selectAllUsersQuery     = `SELECT id, name, email FROM users`
	updateByIDQuery         = `UPDATE users SET name = ?, email = ? WHERE id = ?`
	updateByNameQuery       = `UPDATE users SET name = ?, email = ? WHERE name = ?`
)

// SQLStore is an implementation of Repository backed by a relational
// database reached through a bounded connection pool.  Every operation
// checks a connection out of the pool, runs one parameterized statement and
// hands the connection back.
type SQLStore struct {
	db             *sqlx.DB
	dialect        Dialect
	acquireTimeout time.Duration
	logger         *slog.Logger
}

// NewSQLStore builds the pool (retrying until the database answers, see
// Connect) and applies pending migrations.  The returned store is ready to
// serve requests.
func NewSQLStore(ctx context.Context, cfg SQLConfig, logger *slog.Logger) (*SQLStore, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	db, err := Connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	s := &SQLStore{
		db:             db,
		dialect:        dialect,
		acquireTimeout: cfg.AcquireTimeout,
		logger:         logger,
	}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases every pooled connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// conn checks out a connection, waiting at most acquireTimeout for one to
// become free.
func (s *SQLStore) conn(ctx context.Context, op string) (*sqlx.Conn, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, s.acquireTimeout)
	defer cancel()

	conn, err := s.db.Connx(acquireCtx)
	if err != nil {
		s.logger.Debug("failed to obtain a connection from the pool", "op", op, "error", err)
		return nil, connectionError(op, err)
	}
	return conn, nil
}

func (s *SQLStore) AddUser(ctx context.Context, u User) error {
	conn, err := s.conn(ctx, "add_user")
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, conn.Rebind(insertUserQuery), u.ID, u.Name, u.Email); err != nil {
		return queryError("add_user", err)
	}
	return nil
}

// AddUserIfAbsent relies on the primary key: a conflicting insert affects
// no rows.
func (s *SQLStore) AddUserIfAbsent(ctx context.Context, u User) (bool, error) {
	conn, err := s.conn(ctx, "add_user_if_absent")
	if err != nil {
		return false, err
	}
	defer conn.Close()

	res, err := conn.ExecContext(ctx, conn.Rebind(insertUserIfAbsentQuery), u.ID, u.Name, u.Email)
	if err != nil {
		return false, queryError("add_user_if_absent", err)
	}
	return affected(res, "add_user_if_absent")
}

func (s *SQLStore) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	conn, err := s.conn(ctx, "get_user")
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var u User
	if err := conn.GetContext(ctx, &u, conn.Rebind(selectUserQuery), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, queryError("get_user", err)
	}
	return &u, nil
}

func (s *SQLStore) GetUserID(ctx context.Context, id uuid.UUID) (uuid.UUID, bool, error) {
	return s.selectID(ctx, "get_user_id", selectUserIDQuery, id)
}

func (s *SQLStore) GetUserIDByName(ctx context.Context, name string) (uuid.UUID, bool, error) {
	return s.selectID(ctx, "get_user_id_by_name", selectIDByNameQuery, name)
}

func (s *SQLStore) selectID(ctx context.Context, op, query string, arg any) (uuid.UUID, bool, error) {
	conn, err := s.conn(ctx, op)
	if err != nil {
		return uuid.Nil, false, err
	}
	defer conn.Close()

	var id uuid.UUID
	if err := conn.GetContext(ctx, &id, conn.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, queryError(op, err)
	}
	return id, true, nil
}

func (s *SQLStore) GetAllUsers(ctx context.Context) ([]User, error) {
	conn, err := s.conn(ctx, "get_all_users")
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	users := []User{}
	if err := conn.SelectContext(ctx, &users, selectAllUsersQuery); err != nil {
		return nil, queryError("get_all_users", err)
	}
	return users, nil
}

func (s *SQLStore) UpdateUserByID(ctx context.Context, id uuid.UUID, u User) (bool, error) {
	return s.update(ctx, "update_user_by_id", updateByIDQuery, u, id)
}

// UpdateUserByName updates in a single statement keyed on the name column,
// so the lookup and the write cannot interleave with another writer.
func (s *SQLStore) UpdateUserByName(ctx context.Context, name string, u User) (bool, error) {
	return s.update(ctx, "update_user_by_name", updateByNameQuery, u, name)
}

func (s *SQLStore) update(ctx context.Context, op, query string, u User, key any) (bool, error) {
	conn, err := s.conn(ctx, op)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	res, err := conn.ExecContext(ctx, conn.Rebind(query), u.Name, u.Email, key)
	if err != nil {
		return false, queryError(op, err)
	}
	return affected(res, op)
}

func affected(res sql.Result, op string) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, queryError(op, err)
	}
	return n > 0, nil
}
