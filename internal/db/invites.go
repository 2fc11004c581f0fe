package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"openup/internal/models"
)

const inviteColumns = `id, team_id, email, role, status, token, created_at`

func scanInvite(row pgx.Row) (*models.TeamInvite, error) {
	var inv models.TeamInvite
	err := row.Scan(
		&inv.ID,
		&inv.TeamID,
		&inv.Email,
		&inv.Role,
		&inv.Status,
		&inv.Token,
		&inv.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// CreateInvite inserts a pending invite with its token.
func (d *DB) CreateInvite(ctx context.Context, inv *models.TeamInvite) error {
	query := `
		INSERT INTO team_invites (team_id, email, role, status, token)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return d.Pool.QueryRow(ctx, query,
		inv.TeamID, inv.Email, inv.Role, models.InviteStatusPending, inv.Token,
	).Scan(&inv.ID, &inv.CreatedAt)
}

// GetInviteByToken locates an invite by its token. The token column is
// non-nullable and unique; there is no fallback lookup by row id.
func (d *DB) GetInviteByToken(ctx context.Context, tok string) (*models.TeamInvite, error) {
	query := `SELECT ` + inviteColumns + ` FROM team_invites WHERE token = $1`
	return scanInvite(d.Pool.QueryRow(ctx, query, tok))
}

// GetPendingInvitesByTeam lists a team's pending invites, newest first.
func (d *DB) GetPendingInvitesByTeam(ctx context.Context, teamID uuid.UUID) ([]models.TeamInvite, error) {
	query := `SELECT ` + inviteColumns + ` FROM team_invites
		WHERE team_id = $1 AND status = $2 ORDER BY created_at DESC`
	rows, err := d.Pool.Query(ctx, query, teamID, models.InviteStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []models.TeamInvite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, *inv)
	}
	return invites, rows.Err()
}

// AcceptInvite consumes the invite and inserts the caller's membership
// in one transaction. The conditional update is the single-accept
// gate: of two concurrent accepts with the same token, exactly one
// sees a row change. A failed membership insert rolls the consume
// back, so a transient error never burns the invite.
func (d *DB) AcceptInvite(ctx context.Context, inviteID uuid.UUID, member *models.TeamMember) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx,
		`UPDATE team_invites SET status = $1 WHERE id = $2 AND status = $3`,
		models.InviteStatusAccepted, inviteID, models.InviteStatusPending,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrInviteConsumed
	}

	// DO NOTHING rather than catching 23505: a duplicate membership
	// must not abort the transaction and un-consume the invite.
	if _, err := tx.Exec(ctx,
		`INSERT INTO team_members (team_id, user_id, role)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (team_id, user_id) DO NOTHING`,
		member.TeamID, member.UserID, member.Role,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// DeleteInvite revokes a pending invite.
func (d *DB) DeleteInvite(ctx context.Context, id uuid.UUID) error {
	result, err := d.Pool.Exec(ctx, `DELETE FROM team_invites WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrInviteNotFound
	}
	return nil
}
