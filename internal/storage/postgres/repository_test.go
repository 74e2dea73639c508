//go:build integration

package postgres

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sammiykay/community-alert/internal/domain"
	"github.com/sammiykay/community-alert/pkg/e"
	"github.com/sammiykay/community-alert/pkg/paginator"
)

var (
	testPool *pgxpool.Pool
	tc       testcontainers.Container
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestMain(m *testing.M) {
	ctx := context.Background()

	user := "postgres"
	pass := "postgres"
	db := "postgres"

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     user,
			"POSTGRES_PASSWORD": pass,
			"POSTGRES_DB":       db,
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(90 * time.Second),
	}

	var err error
	tc, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Println("cannot start container:", err)
		os.Exit(1)
	}

	host, _ := tc.Host(ctx)
	mappedPort, _ := tc.MappedPort(ctx, "5432/tcp")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, mappedPort.Port(), db)

	testPool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		fmt.Println("pgxpool.New:", err)
		_ = tc.Terminate(ctx)
		os.Exit(1)
	}

	if err := testPool.Ping(ctx); err != nil {
		fmt.Println("pool.Ping:", err)
		testPool.Close()
		_ = tc.Terminate(ctx)
		os.Exit(1)
	}

	if err := setupSchema(ctx, testPool); err != nil {
		fmt.Println("setupSchema:", err)
		testPool.Close()
		_ = tc.Terminate(ctx)
		os.Exit(1)
	}

	code := m.Run()

	testPool.Close()
	_ = tc.Terminate(ctx)
	os.Exit(code)
}

func setupSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS communities (
			id uuid PRIMARY KEY,
			name text NOT NULL,
			description text NOT NULL DEFAULT '',
			lat double precision NOT NULL,
			lng double precision NOT NULL,
			radius_km double precision NOT NULL,
			is_active boolean NOT NULL DEFAULT TRUE,
			created_at timestamptz NOT NULL
		);

		CREATE TABLE IF NOT EXISTS users (
			id uuid PRIMARY KEY,
			username text NOT NULL UNIQUE,
			email text NOT NULL UNIQUE,
			password_hash text NOT NULL,
			phone text NOT NULL DEFAULT '',
			role text NOT NULL,
			lat double precision,
			lng double precision,
			email_notifications boolean NOT NULL DEFAULT TRUE,
			push_notifications boolean NOT NULL DEFAULT TRUE,
			notification_radius_km double precision NOT NULL DEFAULT 5,
			created_at timestamptz NOT NULL,
			updated_at timestamptz NOT NULL
		);

		CREATE TABLE IF NOT EXISTS user_communities (
			user_id uuid NOT NULL REFERENCES users(id),
			community_id uuid NOT NULL REFERENCES communities(id),
			PRIMARY KEY (user_id, community_id)
		);

		CREATE TABLE IF NOT EXISTS alert_categories (
			id uuid PRIMARY KEY,
			name text NOT NULL UNIQUE,
			description text NOT NULL DEFAULT '',
			icon text NOT NULL DEFAULT '',
			color text NOT NULL DEFAULT '#FF5733',
			is_active boolean NOT NULL DEFAULT TRUE
		);

		CREATE TABLE IF NOT EXISTS alerts (
			id uuid PRIMARY KEY,
			title text NOT NULL,
			description text NOT NULL,
			category_id uuid NOT NULL REFERENCES alert_categories(id),
			severity text NOT NULL,
			status text NOT NULL,
			lat double precision NOT NULL,
			lng double precision NOT NULL,
			address text NOT NULL DEFAULT '',
			community_id uuid REFERENCES communities(id),
			created_by uuid NOT NULL REFERENCES users(id),
			updated_by uuid,
			incident_at timestamptz NOT NULL,
			created_at timestamptz NOT NULL,
			updated_at timestamptz NOT NULL,
			resolved_at timestamptz,
			view_count bigint NOT NULL DEFAULT 0,
			upvotes bigint NOT NULL DEFAULT 0,
			downvotes bigint NOT NULL DEFAULT 0,
			is_public boolean NOT NULL DEFAULT TRUE,
			is_verified boolean NOT NULL DEFAULT FALSE
		);

		CREATE TABLE IF NOT EXISTS alert_votes (
			alert_id uuid NOT NULL REFERENCES alerts(id),
			user_id uuid NOT NULL REFERENCES users(id),
			vote text NOT NULL,
			created_at timestamptz NOT NULL,
			PRIMARY KEY (alert_id, user_id)
		);

		CREATE TABLE IF NOT EXISTS alert_comments (
			id uuid PRIMARY KEY,
			alert_id uuid NOT NULL REFERENCES alerts(id),
			user_id uuid NOT NULL REFERENCES users(id),
			content text NOT NULL,
			parent_id uuid,
			is_deleted boolean NOT NULL DEFAULT FALSE,
			created_at timestamptz NOT NULL,
			updated_at timestamptz NOT NULL
		);

		CREATE TABLE IF NOT EXISTS notifications (
			id uuid PRIMARY KEY,
			alert_id uuid NOT NULL REFERENCES alerts(id),
			user_id uuid NOT NULL REFERENCES users(id),
			channel text NOT NULL,
			status text NOT NULL,
			title text NOT NULL,
			message text NOT NULL,
			created_at timestamptz NOT NULL,
			sent_at timestamptz,
			external_id text
		);

		CREATE TABLE IF NOT EXISTS devices (
			id uuid PRIMARY KEY,
			user_id uuid NOT NULL REFERENCES users(id),
			token text NOT NULL,
			platform text NOT NULL,
			name text NOT NULL DEFAULT '',
			is_active boolean NOT NULL DEFAULT TRUE,
			last_used_at timestamptz NOT NULL,
			created_at timestamptz NOT NULL,
			UNIQUE (user_id, token)
		);
	`)
	return err
}

func truncateAll(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(), `
		TRUNCATE TABLE devices, notifications, alert_comments, alert_votes, alerts,
		               alert_categories, user_communities, users, communities CASCADE
	`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

func seedUser(t *testing.T, username string) *domain.User {
	t.Helper()
	repo := NewUserRepo(testPool, testLogger())
	u := &domain.User{
		Username:           username,
		Email:              username + "@example.com",
		PasswordHash:       "x",
		Role:               domain.RoleMember,
		EmailNotifications: true,
		PushNotifications:  true,
		NotificationRadius: 5,
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedCategory(t *testing.T, name string) *domain.AlertCategory {
	t.Helper()
	repo := NewCategoryRepo(testPool, testLogger())
	c := &domain.AlertCategory{Name: name, Color: "#FF5733", IsActive: true}
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return c
}

func seedAlert(t *testing.T, createdBy, categoryID uuid.UUID, lat, lng float64) *domain.Alert {
	t.Helper()
	repo := NewAlertRepo(testPool, testLogger())
	a := &domain.Alert{
		Title:       "test alert",
		Description: "test",
		CategoryID:  categoryID,
		Lat:         lat,
		Lng:         lng,
		CreatedBy:   createdBy,
		IncidentAt:  time.Now().UTC(),
		IsPublic:    true,
	}
	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("seed alert: %v", err)
	}
	return a
}

func TestCommunityRepo_CreateGetDisable(t *testing.T) {
	truncateAll(t)

	repo := NewCommunityRepo(testPool, testLogger())

	c := &domain.Community{
		Name:     "Downtown",
		Lat:      6.52,
		Lng:      3.37,
		RadiusKM: 5,
		IsActive: true,
	}
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ID == uuid.Nil {
		t.Fatalf("expected ID set")
	}

	got, err := repo.Get(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != c.Name || got.RadiusKM != c.RadiusKM || !got.IsActive {
		t.Fatalf("unexpected row: %+v", got)
	}

	if err := repo.Disable(context.Background(), c.ID); err != nil {
		t.Fatalf("Disable: %v", err)
	}

	active, err := repo.List(context.Background(), false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active communities, got %d", len(active))
	}

	all, err := repo.List(context.Background(), true)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 community, got %d", len(all))
	}

	// Second disable hits no row.
	err = repo.Disable(context.Background(), c.ID)
	if !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestAlertRepo_ListActiveWithinBox(t *testing.T) {
	truncateAll(t)

	u := seedUser(t, "reporter")
	cat := seedCategory(t, "Theft")
	repo := NewAlertRepo(testPool, testLogger())

	inside := seedAlert(t, u.ID, cat.ID, 6.52, 3.37)
	_ = seedAlert(t, u.ID, cat.ID, 7.5, 3.37) // outside the box

	resolved := seedAlert(t, u.ID, cat.ID, 6.53, 3.38)
	resolved.Status = domain.AlertResolved
	if err := repo.Update(context.Background(), resolved); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.ListActiveWithinBox(context.Background(), 6.4, 6.6, 3.3, 3.5)
	if err != nil {
		t.Fatalf("ListActiveWithinBox: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(got))
	}
	if got[0].ID != inside.ID {
		t.Fatalf("expected %s, got %s", inside.ID, got[0].ID)
	}
}

func TestAlertRepo_List_FilterAndPagination(t *testing.T) {
	truncateAll(t)

	u := seedUser(t, "reporter")
	cat := seedCategory(t, "Theft")
	other := seedCategory(t, "Vandalism")
	repo := NewAlertRepo(testPool, testLogger())

	for i := 0; i < 3; i++ {
		seedAlert(t, u.ID, cat.ID, 6.5, 3.3)
	}
	seedAlert(t, u.ID, other.ID, 6.5, 3.3)

	list, total, err := repo.List(context.Background(), domain.AlertFilter{CategoryID: &cat.ID}, paginator.PaginateQuery{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total=3 got=%d", total)
	}
	if len(list) != 2 {
		t.Fatalf("expected len=2 got=%d", len(list))
	}

	page2, total2, err := repo.List(context.Background(), domain.AlertFilter{CategoryID: &cat.ID}, paginator.PaginateQuery{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("List page2: %v", err)
	}
	if total2 != 3 || len(page2) != 1 {
		t.Fatalf("expected total=3 len=1, got total=%d len=%d", total2, len(page2))
	}
}

func TestVoteRepo_UpsertDeleteCounts(t *testing.T) {
	truncateAll(t)

	u1 := seedUser(t, "voter1")
	u2 := seedUser(t, "voter2")
	cat := seedCategory(t, "Theft")
	a := seedAlert(t, u1.ID, cat.ID, 6.5, 3.3)

	repo := NewVoteRepo(testPool, testLogger())

	if err := repo.Upsert(context.Background(), &domain.AlertVote{AlertID: a.ID, UserID: u1.ID, Vote: domain.VoteUp}); err != nil {
		t.Fatalf("Upsert u1: %v", err)
	}
	if err := repo.Upsert(context.Background(), &domain.AlertVote{AlertID: a.ID, UserID: u2.ID, Vote: domain.VoteDown}); err != nil {
		t.Fatalf("Upsert u2: %v", err)
	}

	up, down, err := repo.Counts(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if up != 1 || down != 1 {
		t.Fatalf("expected 1/1, got %d/%d", up, down)
	}

	// Re-upsert flips without duplicating.
	if err := repo.Upsert(context.Background(), &domain.AlertVote{AlertID: a.ID, UserID: u2.ID, Vote: domain.VoteUp}); err != nil {
		t.Fatalf("Upsert flip: %v", err)
	}
	up, down, err = repo.Counts(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if up != 2 || down != 0 {
		t.Fatalf("expected 2/0, got %d/%d", up, down)
	}

	if err := repo.Delete(context.Background(), a.ID, u1.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	err = repo.Delete(context.Background(), a.ID, u1.ID)
	if !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}

	_, err = repo.Get(context.Background(), a.ID, u1.ID)
	if !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestUserRepo_MembershipAndRecipients(t *testing.T) {
	truncateAll(t)

	communityRepo := NewCommunityRepo(testPool, testLogger())
	community := &domain.Community{Name: "Downtown", Lat: 6.52, Lng: 3.37, RadiusKM: 5, IsActive: true}
	if err := communityRepo.Create(context.Background(), community); err != nil {
		t.Fatalf("community Create: %v", err)
	}

	repo := NewUserRepo(testPool, testLogger())

	member := seedUser(t, "member")
	optedOut := seedUser(t, "optedout")
	optedOut.PushNotifications = false
	if err := repo.Update(context.Background(), optedOut); err != nil {
		t.Fatalf("Update: %v", err)
	}

	for _, id := range []uuid.UUID{member.ID, optedOut.ID} {
		if err := repo.AddMembership(context.Background(), id, community.ID); err != nil {
			t.Fatalf("AddMembership: %v", err)
		}
	}
	// Duplicate membership is a no-op.
	if err := repo.AddMembership(context.Background(), member.ID, community.ID); err != nil {
		t.Fatalf("AddMembership dup: %v", err)
	}

	push, err := repo.ListCommunityRecipients(context.Background(), community.ID, domain.ChannelPush)
	if err != nil {
		t.Fatalf("ListCommunityRecipients push: %v", err)
	}
	if len(push) != 1 || push[0].ID != member.ID {
		t.Fatalf("expected only opted-in member, got %+v", push)
	}

	email, err := repo.ListCommunityRecipients(context.Background(), community.ID, domain.ChannelEmail)
	if err != nil {
		t.Fatalf("ListCommunityRecipients email: %v", err)
	}
	if len(email) != 2 {
		t.Fatalf("expected 2 email recipients, got %d", len(email))
	}
}

func TestNotificationRepo_CreateBatchMarkSent(t *testing.T) {
	truncateAll(t)

	u := seedUser(t, "recipient")
	cat := seedCategory(t, "Theft")
	a := seedAlert(t, u.ID, cat.ID, 6.5, 3.3)

	repo := NewNotificationRepo(testPool, testLogger())

	ns := []*domain.Notification{
		{AlertID: a.ID, UserID: u.ID, Channel: domain.ChannelPush, Title: "t", Message: "m"},
		{AlertID: a.ID, UserID: u.ID, Channel: domain.ChannelEmail, Title: "t", Message: "m"},
	}
	if err := repo.CreateBatch(context.Background(), ns); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	for _, n := range ns {
		if n.ID == uuid.Nil {
			t.Fatalf("expected ID set")
		}
		if n.Status != domain.NotificationPending {
			t.Fatalf("expected pending, got %s", n.Status)
		}
	}

	if err := repo.MarkSent(context.Background(), []uuid.UUID{ns[0].ID}, time.Now().UTC(), "msg-123"); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}

	list, err := repo.ListByUser(context.Background(), u.ID, 10)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(list))
	}

	var sent *domain.Notification
	for i := range list {
		if list[i].ID == ns[0].ID {
			sent = &list[i]
		}
	}
	if sent == nil {
		t.Fatalf("sent notification missing from list")
	}
	if sent.Status != domain.NotificationSent || sent.SentAt == nil || sent.ExternalID != "msg-123" {
		t.Fatalf("unexpected sent row: %+v", sent)
	}
}

func TestDeviceRepo_UpsertAndDeactivateStale(t *testing.T) {
	truncateAll(t)

	u := seedUser(t, "owner")
	repo := NewDeviceRepo(testPool, testLogger())

	d := &domain.Device{UserID: u.ID, Token: "tok-1", Platform: "web"}
	if err := repo.Upsert(context.Background(), d); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// Same token again refreshes instead of duplicating.
	again := &domain.Device{UserID: u.ID, Token: "tok-1", Platform: "android"}
	if err := repo.Upsert(context.Background(), again); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}

	active, err := repo.ListActive(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 device, got %d", len(active))
	}
	if active[0].Platform != "android" {
		t.Fatalf("expected refreshed platform android, got %s", active[0].Platform)
	}

	n, err := repo.DeactivateStale(context.Background(), time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("DeactivateStale: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 deactivated, got %d", n)
	}

	active, err = repo.ListActive(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active devices, got %d", len(active))
	}

	err = repo.Delete(context.Background(), u.ID, "missing")
	if !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestCommentRepo_CreateAndList(t *testing.T) {
	truncateAll(t)

	u := seedUser(t, "commenter")
	cat := seedCategory(t, "Theft")
	a := seedAlert(t, u.ID, cat.ID, 6.5, 3.3)

	repo := NewCommentRepo(testPool, testLogger())

	first := &domain.AlertComment{AlertID: a.ID, UserID: u.ID, Content: "first"}
	if err := repo.Create(context.Background(), first); err != nil {
		t.Fatalf("Create: %v", err)
	}

	reply := &domain.AlertComment{AlertID: a.ID, UserID: u.ID, Content: "reply", ParentID: &first.ID}
	if err := repo.Create(context.Background(), reply); err != nil {
		t.Fatalf("Create reply: %v", err)
	}

	list, err := repo.ListByAlert(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("ListByAlert: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(list))
	}
	if list[0].Content != "first" {
		t.Fatalf("expected oldest first, got %q", list[0].Content)
	}
	if list[1].ParentID == nil || *list[1].ParentID != first.ID {
		t.Fatalf("expected parent %s, got %v", first.ID, list[1].ParentID)
	}
	if list[0].Username != "commenter" {
		t.Fatalf("expected username joined, got %q", list[0].Username)
	}

	if err := repo.SoftDelete(context.Background(), reply.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	remaining, err := repo.ListByAlert(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("ListByAlert after delete: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != first.ID {
		t.Fatalf("expected only the first comment, got %+v", remaining)
	}

	if _, err := repo.Get(context.Background(), reply.ID); !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for deleted comment, got: %v", err)
	}

	// Repeating the delete hits no live row.
	err = repo.SoftDelete(context.Background(), reply.ID)
	if !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestCategoryRepo_DuplicateName(t *testing.T) {
	truncateAll(t)

	repo := NewCategoryRepo(testPool, testLogger())

	c := &domain.AlertCategory{Name: "Theft", Color: "#FF5733", IsActive: true}
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("Create: %v", err)
	}

	dup := &domain.AlertCategory{Name: "Theft", Color: "#FF5733", IsActive: true}
	err := repo.Create(context.Background(), dup)
	if !errors.Is(err, e.ErrUniqueViolation) {
		t.Fatalf("expected ErrUniqueViolation, got: %v", err)
	}
}
