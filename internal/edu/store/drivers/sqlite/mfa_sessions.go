package sqlite

import (
	"context"

	"github.com/edupredict/edupredict/internal/edu/domain"
)

type mfaSessionsRepo struct {
	db dbtx
}

func (r *mfaSessionsRepo) CreateMFASession(ctx context.Context, s domain.MFASession) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mfa_sessions (token, user_id, expires_at)
		VALUES (?, ?, ?)`,
		s.Token, s.UserID, s.ExpiresAt.UTC())
	return mapConstraint(err)
}

func (r *mfaSessionsRepo) GetMFASession(ctx context.Context, token string) (domain.MFASession, error) {
	var s domain.MFASession
	err := r.db.QueryRowContext(ctx, `
		SELECT token, user_id, attempts, expires_at, created_at
		FROM mfa_sessions WHERE token = ?`, token).Scan(
		&s.Token, &s.UserID, &s.Attempts, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return domain.MFASession{}, mapNotFound(err)
	}
	return s, nil
}

func (r *mfaSessionsRepo) IncrementMFASessionAttempts(ctx context.Context, token string) (domain.MFASession, error) {
	var s domain.MFASession
	err := r.db.QueryRowContext(ctx, `
		UPDATE mfa_sessions SET attempts = attempts + 1
		WHERE token = ?
		RETURNING token, user_id, attempts, expires_at, created_at`, token).Scan(
		&s.Token, &s.UserID, &s.Attempts, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return domain.MFASession{}, mapNotFound(err)
	}
	return s, nil
}

func (r *mfaSessionsRepo) DeleteMFASession(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM mfa_sessions WHERE token = ?`, token)
	return err
}

func (r *mfaSessionsRepo) DeleteExpiredMFASessions(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM mfa_sessions WHERE expires_at < CURRENT_TIMESTAMP`)
	return err
}
