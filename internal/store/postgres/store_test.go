package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/members/internal/core"
	"github.com/JonMunkholm/members/internal/domain"
)

// testPool connects to TEST_DATABASE_URL, applies the schema and empties
// every table. Tests are skipped without it.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(ctx, pool))
	require.NoError(t, Migrate(ctx, pool), "migrate is repeatable")

	_, err = pool.Exec(ctx, `TRUNCATE project_members, projects, user_skills, users, positions, skills, teams
		RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return pool
}

func TestStore_SavepointKeepsEarlierRows(t *testing.T) {
	ctx := context.Background()
	s := New(testPool(t))
	now := time.Now().UTC().Truncate(time.Second)

	uow, err := s.Begin(ctx)
	require.NoError(t, err)
	defer uow.Abort(ctx)

	require.NoError(t, uow.Savepoint(ctx, func() error {
		return uow.SaveTeam(ctx, &domain.Team{Name: "Backend", CreatedAt: now, UpdatedAt: now})
	}))

	err = uow.Savepoint(ctx, func() error {
		return uow.SaveTeam(ctx, &domain.Team{Name: "BACKEND", CreatedAt: now, UpdatedAt: now})
	})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	var cerr *ConstraintError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "teams_name_key", cerr.Constraint)

	// The transaction is still usable after the failed row.
	exists, err := uow.TeamExistsByName(ctx, "backend")
	require.NoError(t, err)
	assert.True(t, exists)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	teams, err := snap.ListTeams(ctx)
	require.NoError(t, err)
	assert.Empty(t, teams, "uncommitted rows are invisible to snapshots")
	require.NoError(t, snap.Release(ctx))

	require.NoError(t, uow.Commit(ctx))
	assert.NoError(t, uow.Abort(ctx))
	assert.ErrorIs(t, uow.Commit(ctx), core.ErrUnitOfWorkClosed)

	snap, err = s.Snapshot(ctx)
	require.NoError(t, err)
	defer snap.Release(ctx)
	teams, err = snap.ListTeams(ctx)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "Backend", teams[0].Name)
}

func TestStore_UsersAndProjectsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(testPool(t))
	now := time.Now().UTC().Truncate(time.Second)
	birthday := time.Date(1990, 5, 15, 0, 0, 0, 0, time.UTC)
	years := decimal.RequireFromString("2.5")

	uow, err := s.Begin(ctx)
	require.NoError(t, err)
	defer uow.Abort(ctx)

	team := &domain.Team{Name: "Core", CreatedAt: now, UpdatedAt: now}
	skill := &domain.Skill{Name: "Go", CreatedAt: now, UpdatedAt: now}
	user := &domain.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "hash", Birthday: &birthday,
		Role: domain.RoleAdmin, Status: domain.UserActive, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, uow.SaveTeam(ctx, team))
	require.NoError(t, uow.SaveSkill(ctx, skill))
	require.NoError(t, uow.SaveUser(ctx, user))
	require.NoError(t, uow.SaveUserSkill(ctx, &domain.UserSkill{UserID: user.ID, SkillID: skill.ID,
		Level: domain.LevelExpert, UsedYears: &years, CreatedAt: now, UpdatedAt: now}))

	project := &domain.Project{Name: "Shop", Status: domain.ProjectOngoing, TeamID: team.ID, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, uow.SaveProject(ctx, project))
	require.NoError(t, uow.SaveProjectMember(ctx, &domain.ProjectMember{ProjectID: project.ID, UserID: user.ID,
		Status: domain.MemberActive, JoinedAt: now}))
	require.NoError(t, uow.Commit(ctx))

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	defer snap.Release(ctx)

	users, err := snap.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Len(t, users[0].Skills, 1)
	assert.Equal(t, "Go", users[0].Skills[0].SkillName)
	assert.True(t, years.Equal(*users[0].Skills[0].UsedYears))
	assert.Equal(t, "1990-05-15", users[0].Birthday.Format(core.DateLayout))

	found, ok, err := snap.FindUserByEmail(ctx, "ANN@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, user.ID, found.ID)

	_, ok, err = snap.FindSkillByName(ctx, "Rust")
	require.NoError(t, err)
	assert.False(t, ok)

	projects, err := snap.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Core", projects[0].TeamName)
	assert.Equal(t, []string{"ann@example.com"}, projects[0].ActiveMemberEmails())
}
