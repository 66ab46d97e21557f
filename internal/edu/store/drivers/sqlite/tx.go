package sqlite

import (
	"context"
	"database/sql"

	"github.com/edupredict/edupredict/internal/edu/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // nothing to close; caller will commit/rollback and outer DB stays open

// Ping is a no-op for transactions. The connection is already established
// when the transaction is created, so we just return nil.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users                 { return &usersRepo{db: t.tx} }
func (t *txStore) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{db: t.tx} }
func (t *txStore) MFASessions() store.MFASessions     { return &mfaSessionsRepo{db: t.tx} }
func (t *txStore) Students() store.Students           { return &studentsRepo{db: t.tx} }
func (t *txStore) Courses() store.Courses             { return &coursesRepo{db: t.tx} }
func (t *txStore) Grades() store.Grades               { return &gradesRepo{db: t.tx} }
func (t *txStore) Attendance() store.Attendance       { return &attendanceRepo{db: t.tx} }
func (t *txStore) Notifications() store.Notifications { return &notificationsRepo{db: t.tx} }
func (t *txStore) Predictions() store.Predictions     { return &predictionsRepo{db: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // no-op; migrations should be applied before starting a tx
