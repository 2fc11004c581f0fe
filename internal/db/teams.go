package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"openup/internal/models"
)

// CreateTeam creates a team and its owner membership in one transaction.
func (d *DB) CreateTeam(ctx context.Context, team *models.Team) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO teams (name, owner_id) VALUES ($1, $2) RETURNING id, created_at`,
		team.Name, team.OwnerID,
	).Scan(&team.ID, &team.CreatedAt)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO team_members (team_id, user_id, role) VALUES ($1, $2, $3)`,
		team.ID, team.OwnerID, models.RoleOwner,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetTeamByID retrieves a team by its ID.
func (d *DB) GetTeamByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := d.Pool.QueryRow(ctx,
		`SELECT id, name, owner_id, created_at FROM teams WHERE id = $1`, id,
	).Scan(&team.ID, &team.Name, &team.OwnerID, &team.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// GetTeamsForUser retrieves all teams the user is a member of.
func (d *DB) GetTeamsForUser(ctx context.Context, userID uuid.UUID) ([]models.Team, error) {
	query := `
		SELECT t.id, t.name, t.owner_id, t.created_at
		FROM teams t
		JOIN team_members m ON m.team_id = t.id
		WHERE m.user_id = $1
		ORDER BY t.created_at ASC
	`
	rows, err := d.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.OwnerID, &t.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// GetMembership retrieves one user's membership in a team. The invite
// flow uses this for the owner-role check.
func (d *DB) GetMembership(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMember, error) {
	var m models.TeamMember
	err := d.Pool.QueryRow(ctx,
		`SELECT id, team_id, user_id, role, created_at FROM team_members WHERE team_id = $1 AND user_id = $2`,
		teamID, userID,
	).Scan(&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotMember
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetTeamMembers retrieves a team's members with their profiles joined.
func (d *DB) GetTeamMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error) {
	query := `
		SELECT m.id, m.team_id, m.user_id, m.role, m.created_at,
		       p.id, p.sub, p.email, p.full_name, p.username, p.avatar_url, p.bio, p.website, p.created_at, p.updated_at
		FROM team_members m
		JOIN profiles p ON p.id = m.user_id
		WHERE m.team_id = $1
		ORDER BY m.created_at ASC
	`
	rows, err := d.Pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.TeamMember
	for rows.Next() {
		var m models.TeamMember
		var p models.Profile
		if err := rows.Scan(
			&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.CreatedAt,
			&p.ID, &p.Sub, &p.Email, &p.FullName, &p.Username, &p.AvatarURL, &p.Bio, &p.Website, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		m.Profile = &p
		members = append(members, m)
	}
	return members, rows.Err()
}

// RemoveTeamMember deletes a membership.
func (d *DB) RemoveTeamMember(ctx context.Context, teamID, userID uuid.UUID) error {
	result, err := d.Pool.Exec(ctx,
		`DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`, teamID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotMember
	}
	return nil
}

// CountTeamMembers counts a team's members for the plan-limit gate.
func (d *DB) CountTeamMembers(ctx context.Context, teamID uuid.UUID) (int, error) {
	var count int
	err := d.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM team_members WHERE team_id = $1`, teamID,
	).Scan(&count)
	return count, err
}
