package db

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"

	"openup/internal/models"
)

func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := New(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := database.RunMigrations(connString); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	clean := func() {
		database.Pool.Exec(ctx, "DELETE FROM team_invites")
		database.Pool.Exec(ctx, "DELETE FROM team_members")
		database.Pool.Exec(ctx, "DELETE FROM teams")
		database.Pool.Exec(ctx, "DELETE FROM links")
		database.Pool.Exec(ctx, "DELETE FROM profiles")
	}
	clean()

	return database, func() {
		clean()
		database.Close()
	}
}

func createProfile(t *testing.T, database *DB, sub string) *models.Profile {
	t.Helper()
	p := &models.Profile{Sub: sub, Email: sub + "@example.com"}
	if err := database.UpsertProfile(context.Background(), p); err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	return p
}

func createTeam(t *testing.T, database *DB, owner *models.Profile) *models.Team {
	t.Helper()
	team := &models.Team{Name: "Test Team", OwnerID: owner.ID}
	if err := database.CreateTeam(context.Background(), team); err != nil {
		t.Fatalf("failed to create team: %v", err)
	}
	return team
}

func TestInviteLifecycle(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	owner := createProfile(t, database, "owner")
	team := createTeam(t, database, owner)

	invite := &models.TeamInvite{
		TeamID: team.ID,
		Email:  "invitee@example.com",
		Role:   models.RoleEditor,
		Token:  uuid.NewString(),
	}
	if err := database.CreateInvite(ctx, invite); err != nil {
		t.Fatalf("CreateInvite failed: %v", err)
	}

	got, err := database.GetInviteByToken(ctx, invite.Token)
	if err != nil {
		t.Fatalf("GetInviteByToken failed: %v", err)
	}
	if got.Status != models.InviteStatusPending {
		t.Errorf("status = %q, want pending", got.Status)
	}
	if got.Email != "invitee@example.com" || got.Role != models.RoleEditor {
		t.Errorf("unexpected invite row: %+v", got)
	}

	if _, err := database.GetInviteByToken(ctx, "no-such-token"); !errors.Is(err, ErrInviteNotFound) {
		t.Errorf("unknown token error = %v, want ErrInviteNotFound", err)
	}

	// First accept succeeds, second is rejected.
	joiner := createProfile(t, database, "joiner")
	member := &models.TeamMember{TeamID: team.ID, UserID: joiner.ID, Role: invite.Role}
	if err := database.AcceptInvite(ctx, invite.ID, member); err != nil {
		t.Fatalf("first AcceptInvite failed: %v", err)
	}
	if err := database.AcceptInvite(ctx, invite.ID, member); !errors.Is(err, ErrInviteConsumed) {
		t.Errorf("second accept error = %v, want ErrInviteConsumed", err)
	}

	if _, err := database.GetMembership(ctx, team.ID, joiner.ID); err != nil {
		t.Errorf("joiner has no membership after accept: %v", err)
	}

	pending, err := database.GetPendingInvitesByTeam(ctx, team.ID)
	if err != nil {
		t.Fatalf("GetPendingInvitesByTeam failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending invites = %d, want 0 after accept", len(pending))
	}
}

// A failed membership insert must roll the status change back: the
// invite stays pending and a later accept still works.
func TestAcceptInviteRollsBackOnFailedMembership(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	owner := createProfile(t, database, "owner")
	team := createTeam(t, database, owner)

	invite := &models.TeamInvite{
		TeamID: team.ID,
		Email:  "invitee@example.com",
		Role:   models.RoleViewer,
		Token:  uuid.NewString(),
	}
	if err := database.CreateInvite(ctx, invite); err != nil {
		t.Fatalf("CreateInvite failed: %v", err)
	}

	// No profile row for this user id: the insert hits the foreign key.
	ghost := &models.TeamMember{TeamID: team.ID, UserID: uuid.New(), Role: models.RoleViewer}
	if err := database.AcceptInvite(ctx, invite.ID, ghost); err == nil {
		t.Fatal("expected AcceptInvite to fail for unknown user")
	}

	got, err := database.GetInviteByToken(ctx, invite.Token)
	if err != nil {
		t.Fatalf("GetInviteByToken failed: %v", err)
	}
	if got.Status != models.InviteStatusPending {
		t.Fatalf("invite status = %q after failed accept, want pending", got.Status)
	}

	joiner := createProfile(t, database, "joiner")
	member := &models.TeamMember{TeamID: team.ID, UserID: joiner.ID, Role: models.RoleViewer}
	if err := database.AcceptInvite(ctx, invite.ID, member); err != nil {
		t.Errorf("retry after failed accept did not succeed: %v", err)
	}
}

// Accepting an invite to a team the user already belongs to consumes
// the invite without duplicating the membership.
func TestAcceptInviteTolerateExistingMembership(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	owner := createProfile(t, database, "owner")
	team := createTeam(t, database, owner)

	invite := &models.TeamInvite{
		TeamID: team.ID,
		Email:  owner.Email,
		Role:   models.RoleEditor,
		Token:  uuid.NewString(),
	}
	if err := database.CreateInvite(ctx, invite); err != nil {
		t.Fatalf("CreateInvite failed: %v", err)
	}

	// The owner is already a member via CreateTeam.
	member := &models.TeamMember{TeamID: team.ID, UserID: owner.ID, Role: invite.Role}
	if err := database.AcceptInvite(ctx, invite.ID, member); err != nil {
		t.Fatalf("AcceptInvite failed for existing member: %v", err)
	}

	count, err := database.CountTeamMembers(ctx, team.ID)
	if err != nil {
		t.Fatalf("CountTeamMembers failed: %v", err)
	}
	if count != 1 {
		t.Errorf("member count = %d, want 1", count)
	}

	got, err := database.GetInviteByToken(ctx, invite.Token)
	if err != nil {
		t.Fatalf("GetInviteByToken failed: %v", err)
	}
	if got.Status != models.InviteStatusAccepted {
		t.Errorf("invite status = %q, want accepted", got.Status)
	}
}
