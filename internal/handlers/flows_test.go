package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"

	"openup/internal/config"
	"openup/internal/db"
	"openup/internal/email"
	"openup/internal/models"
)

func setupFlowTest(t *testing.T) (*db.DB, *config.Config, func()) {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := db.New(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	if err := database.RunMigrations(connString); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	catalog, err := config.LoadPlanCatalog("no-such-plans.yaml")
	if err != nil {
		database.Close()
		t.Fatalf("failed to load default plan catalog: %v", err)
	}
	if err := database.SeedPlans(ctx, catalog); err != nil {
		database.Close()
		t.Fatalf("failed to seed plans: %v", err)
	}

	cfg := &config.Config{
		BaseURL:     "https://openup.example.com",
		FrontendURL: "https://app.example.com",
		SiteTitle:   "OpenUp",
	}

	clean := func() {
		tables := []string{
			"billing_history", "team_invites", "team_members", "teams",
			"link_clicks", "qr_codes", "links", "bio_themes",
			"subscriptions", "profiles",
		}
		for _, table := range tables {
			database.Pool.Exec(ctx, "DELETE FROM "+table)
		}
	}
	clean()

	return database, cfg, func() {
		clean()
		database.Close()
	}
}

// flowApp wires the JSON routes with the given profile pre-authenticated.
func flowApp(database *db.DB, cfg *config.Config, user *models.Profile) *fiber.App {
	app := fiber.New()
	app.Use(func(c fiber.Ctx) error {
		c.Locals("user", user)
		return c.Next()
	})

	teamHandler := NewTeamHandler(database, cfg, email.NewNotifier(cfg, database))
	planHandler := NewPlanHandler(database)
	linkHandler := NewLinkHandler(database, cfg)
	overviewHandler := NewOverviewHandler(database, cfg)

	app.Post("/team-invite", teamHandler.Invite)
	app.Post("/team-accept", teamHandler.Accept)
	app.Get("/api/plans", planHandler.List)
	app.Put("/api/subscription", planHandler.UpdateSubscription)
	app.Post("/api/links", linkHandler.Create)
	app.Get("/api/overview", overviewHandler.Get)
	return app
}

func jsonRequest(method, path string, payload any) *http.Request {
	var body io.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	}
	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("failed to decode body %s: %v", raw, err)
	}
	return m
}

func flowProfile(t *testing.T, database *db.DB, sub string) *models.Profile {
	t.Helper()
	p := &models.Profile{Sub: sub, Email: sub + "@example.com"}
	if err := database.UpsertProfile(context.Background(), p); err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	return p
}

func subscribe(t *testing.T, database *db.DB, user *models.Profile, planCode string) {
	t.Helper()
	ctx := context.Background()

	plan, err := database.GetPlanByCode(ctx, planCode)
	if err != nil {
		t.Fatalf("failed to load plan %s: %v", planCode, err)
	}
	now := time.Now()
	sub := &models.Subscription{
		UserID:             user.ID,
		PlanID:             plan.ID,
		Status:             models.SubStatusActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, 1, 0),
	}
	if err := database.UpsertSubscription(ctx, sub); err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}
}

// Neither a non-member nor a non-owner member may create invites, and
// a denied call leaves no invite row behind.
func TestInviteRequiresTeamOwner(t *testing.T) {
	database, cfg, cleanup := setupFlowTest(t)
	defer cleanup()
	ctx := context.Background()

	owner := flowProfile(t, database, "owner")
	member := flowProfile(t, database, "member")
	outsider := flowProfile(t, database, "outsider")

	team := &models.Team{Name: "Marketing", OwnerID: owner.ID}
	if err := database.CreateTeam(ctx, team); err != nil {
		t.Fatalf("failed to create team: %v", err)
	}
	if _, err := database.Pool.Exec(ctx,
		`INSERT INTO team_members (team_id, user_id, role) VALUES ($1, $2, $3)`,
		team.ID, member.ID, models.RoleEditor,
	); err != nil {
		t.Fatalf("failed to add member: %v", err)
	}

	for _, caller := range []*models.Profile{member, outsider} {
		app := flowApp(database, cfg, caller)
		resp, err := app.Test(jsonRequest("POST", "/team-invite", fiber.Map{
			"team_id": team.ID.String(),
			"email":   "invitee@example.com",
			"role":    models.RoleViewer,
		}))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusForbidden {
			t.Errorf("invite by %s: status = %d, want 403", caller.Sub, resp.StatusCode)
		}
	}

	invites, err := database.GetPendingInvitesByTeam(ctx, team.ID)
	if err != nil {
		t.Fatalf("GetPendingInvitesByTeam failed: %v", err)
	}
	if len(invites) != 0 {
		t.Errorf("pending invites = %d after denied calls, want 0", len(invites))
	}
}

func TestInviteAcceptLifecycle(t *testing.T) {
	database, cfg, cleanup := setupFlowTest(t)
	defer cleanup()
	ctx := context.Background()

	owner := flowProfile(t, database, "owner")
	invitee := flowProfile(t, database, "invitee")
	subscribe(t, database, owner, models.PlanBusiness)

	team := &models.Team{Name: "Marketing", OwnerID: owner.ID}
	if err := database.CreateTeam(ctx, team); err != nil {
		t.Fatalf("failed to create team: %v", err)
	}

	ownerApp := flowApp(database, cfg, owner)
	resp, err := ownerApp.Test(jsonRequest("POST", "/team-invite", fiber.Map{
		"team_id": team.ID.String(),
		"email":   invitee.Email,
		"role":    models.RoleEditor,
	}))
	if err != nil {
		t.Fatalf("invite request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("invite status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	invite, ok := body["invite"].(map[string]any)
	if !ok {
		t.Fatalf("response has no invite object: %v", body)
	}
	token, _ := invite["token"].(string)
	if token == "" {
		t.Fatal("invite token is empty")
	}

	inviteeApp := flowApp(database, cfg, invitee)
	resp, err = inviteeApp.Test(jsonRequest("POST", "/team-accept", fiber.Map{"token": token}))
	if err != nil {
		t.Fatalf("accept request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("accept status = %d, want 200", resp.StatusCode)
	}

	membership, err := database.GetMembership(ctx, team.ID, invitee.ID)
	if err != nil {
		t.Fatalf("invitee has no membership: %v", err)
	}
	if membership.Role != models.RoleEditor {
		t.Errorf("membership role = %q, want editor", membership.Role)
	}

	// Second accept of the same token is a conflict, not a second join.
	resp, err = inviteeApp.Test(jsonRequest("POST", "/team-accept", fiber.Map{"token": token}))
	if err != nil {
		t.Fatalf("second accept request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("second accept status = %d, want 400", resp.StatusCode)
	}

	count, err := database.CountTeamMembers(ctx, team.ID)
	if err != nil {
		t.Fatalf("CountTeamMembers failed: %v", err)
	}
	if count != 2 {
		t.Errorf("member count = %d, want 2", count)
	}
}

func TestUpdateSubscriptionRecordsBilling(t *testing.T) {
	database, cfg, cleanup := setupFlowTest(t)
	defer cleanup()
	ctx := context.Background()

	user := flowProfile(t, database, "upgrader")
	app := flowApp(database, cfg, user)

	resp, err := app.Test(jsonRequest("PUT", "/api/subscription", fiber.Map{"plan": "pro"}))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	plan, err := database.GetEffectivePlan(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetEffectivePlan failed: %v", err)
	}
	if plan.Code != "pro" {
		t.Errorf("effective plan = %q, want pro", plan.Code)
	}

	entries, err := database.GetBillingHistory(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetBillingHistory failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("billing entries = %d, want 1", len(entries))
	}
	if entries[0].AmountCents != 2900 || entries[0].Status != models.BillingPaid {
		t.Errorf("unexpected billing entry: %+v", entries[0])
	}

	// Downgrading to free adds no invoice.
	resp, err = app.Test(jsonRequest("PUT", "/api/subscription", fiber.Map{"plan": "free"}))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("downgrade status = %d, want 200", resp.StatusCode)
	}
	entries, err = database.GetBillingHistory(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetBillingHistory failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("billing entries after downgrade = %d, want 1", len(entries))
	}
}

func TestPlansIncludeDerivedPrice(t *testing.T) {
	database, cfg, cleanup := setupFlowTest(t)
	defer cleanup()

	user := flowProfile(t, database, "viewer")
	app := flowApp(database, cfg, user)

	resp, err := app.Test(jsonRequest("GET", "/api/plans", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	for _, want := range []string{`"price_monthly":9,`, `"price_monthly":29,`, `"price_monthly":99,`} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("plans response missing %s: %s", want, raw)
		}
	}
}

// Password protection and expiration are plan features, not just quota.
func TestCreateLinkFeatureGates(t *testing.T) {
	database, cfg, cleanup := setupFlowTest(t)
	defer cleanup()

	user := flowProfile(t, database, "freeloader")
	app := flowApp(database, cfg, user)

	resp, err := app.Test(jsonRequest("POST", "/api/links", fiber.Map{
		"url":      "https://example.com",
		"password": "hunter2",
	}))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("password link on free plan: status = %d, want 403", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if path, _ := body["upgrade_path"].(string); path == "" {
		t.Error("denial carries no upgrade_path")
	}

	resp, err = app.Test(jsonRequest("POST", "/api/links", fiber.Map{
		"url":        "https://example.com",
		"expires_at": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	}))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expiring link on free plan: status = %d, want 403", resp.StatusCode)
	}

	resp, err = app.Test(jsonRequest("POST", "/api/links", fiber.Map{
		"url": "https://example.com",
	}))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Errorf("plain link on free plan: status = %d, want 201", resp.StatusCode)
	}
}

func TestOverviewIncludesTheme(t *testing.T) {
	database, cfg, cleanup := setupFlowTest(t)
	defer cleanup()

	user := flowProfile(t, database, "dashboarder")
	app := flowApp(database, cfg, user)

	resp, err := app.Test(jsonRequest("GET", "/api/overview", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	theme, ok := body["theme"].(map[string]any)
	if !ok {
		t.Fatalf("overview has no theme section: %v", body)
	}
	if errMsg, _ := theme["error"].(string); errMsg != "" {
		t.Errorf("theme section failed: %s", errMsg)
	}
	if theme["data"] == nil {
		t.Error("theme section has no data")
	}
}
