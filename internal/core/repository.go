package core

import (
	"context"

	"github.com/JonMunkholm/members/internal/domain"
)

// Lookups return (value, found, err). A missing record is found == false with
// a nil error; err is reserved for store failures.

type TeamFinder interface {
	TeamExistsByName(ctx context.Context, name string) (bool, error)
	FindTeamByName(ctx context.Context, name string) (domain.Team, bool, error)
	ListTeams(ctx context.Context) ([]domain.Team, error)
}

type TeamRepository interface {
	TeamFinder
	SaveTeam(ctx context.Context, t *domain.Team) error
}

type SkillFinder interface {
	SkillExistsByName(ctx context.Context, name string) (bool, error)
	FindSkillByName(ctx context.Context, name string) (domain.Skill, bool, error)
	ListSkills(ctx context.Context) ([]domain.Skill, error)
}

type SkillRepository interface {
	SkillFinder
	SaveSkill(ctx context.Context, s *domain.Skill) error
}

type PositionFinder interface {
	PositionExistsByName(ctx context.Context, name string) (bool, error)
	PositionExistsByAbbreviation(ctx context.Context, abbreviation string) (bool, error)
	ListPositions(ctx context.Context) ([]domain.Position, error)
}

type PositionRepository interface {
	PositionFinder
	SavePosition(ctx context.Context, p *domain.Position) error
}

type UserFinder interface {
	UserExistsByEmail(ctx context.Context, email string) (bool, error)
	FindUserByEmail(ctx context.Context, email string) (domain.User, bool, error)
	// ListUsers returns users with Skills populated.
	ListUsers(ctx context.Context) ([]domain.User, error)
}

type UserRepository interface {
	UserFinder
	SaveUser(ctx context.Context, u *domain.User) error
	SaveUserSkill(ctx context.Context, us *domain.UserSkill) error
}

type ProjectFinder interface {
	// ListProjects returns projects with TeamName, LeaderEmail and Members
	// populated.
	ListProjects(ctx context.Context) ([]domain.Project, error)
}

type ProjectRepository interface {
	ProjectFinder
	SaveProject(ctx context.Context, p *domain.Project) error
	SaveProjectMember(ctx context.Context, m *domain.ProjectMember) error
}

// Finder is the read side validators and exporters use. Every method only
// sees records that are not soft-deleted, and name/email matches are
// case-insensitive.
type Finder interface {
	TeamFinder
	SkillFinder
	PositionFinder
	UserFinder
	ProjectFinder
}

// Repositories adds the save capabilities used by processors.
type Repositories interface {
	TeamRepository
	SkillRepository
	PositionRepository
	UserRepository
	ProjectRepository
}

// UnitOfWork scopes one import. Reads observe the unit's own pending writes;
// nothing is visible to other readers until Commit.
type UnitOfWork interface {
	Repositories

	// Savepoint runs fn so that a failing fn leaves no partial writes behind
	// while earlier rows stay pending.
	Savepoint(ctx context.Context, fn func() error) error

	Commit(ctx context.Context) error

	// Abort discards every pending write. It is safe to call after Commit,
	// in which case it does nothing.
	Abort(ctx context.Context) error
}

// Snapshot is a read-only view for previews and exports.
type Snapshot interface {
	Finder
	Release(ctx context.Context) error
}

// Store opens units of work and read snapshots.
type Store interface {
	Begin(ctx context.Context) (UnitOfWork, error)
	Snapshot(ctx context.Context) (Snapshot, error)
}
