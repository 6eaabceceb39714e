package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"taskmarket/internal/models"
)

const userColumns = `
	id, world_id, nullifier_hash, verification_level, wallet_address,
	reputation_score, total_earned, is_active, is_admin, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var wallet sql.NullString
	err := row.Scan(
		&u.ID,
		&u.WorldID,
		&u.NullifierHash,
		&u.VerificationLevel,
		&wallet,
		&u.ReputationScore,
		&u.TotalEarned,
		&u.IsActive,
		&u.IsAdmin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if wallet.Valid {
		u.WalletAddress = &wallet.String
	}
	return &u, nil
}

// UpsertUserByNullifier creates the user on first verification or refreshes
// level/wallet on subsequent logins. The nullifier hash is the identity key.
func (s *Store) UpsertUserByNullifier(ctx context.Context, worldID, nullifierHash string, level models.VerificationLevel, walletAddress *string) (*models.User, error) {
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO users (id, world_id, nullifier_hash, verification_level, wallet_address)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (nullifier_hash) DO UPDATE SET
			verification_level = EXCLUDED.verification_level,
			wallet_address = COALESCE(EXCLUDED.wallet_address, users.wallet_address),
			updated_at = now()
		RETURNING`+userColumns,
		uuid.NewString(), worldID, nullifierHash, level, walletAddress,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, models.ErrUserInactive
	}
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	row := s.Pool.QueryRow(ctx, `SELECT`+userColumns+` FROM users WHERE id=$1`, id)
	user, err := scanUser(row)
	if isNoRows(err) {
		return nil, models.ErrUserNotFound
	}
	return user, err
}
