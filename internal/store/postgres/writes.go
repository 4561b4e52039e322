package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/members/internal/core"
	"github.com/JonMunkholm/members/internal/domain"
)

const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
)

// ConstraintError is a write rejected by a unique or foreign key constraint.
type ConstraintError struct {
	Constraint string
	Message    string
	Err        error
}

func (e *ConstraintError) Error() string { return e.Message }
func (e *ConstraintError) Unwrap() error { return e.Err }

// IsUniqueViolation reports whether err came from a unique index.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == sqlStateUniqueViolation
}

func writeError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateUniqueViolation, sqlStateForeignKeyViolation:
			return &ConstraintError{Constraint: pgErr.ConstraintName, Message: pgErr.Message, Err: err}
		}
	}
	return err
}

func (u *unit) insert(ctx context.Context, rec any, id *int64, sql string, args ...any) error {
	if u.closed {
		return core.ErrUnitOfWorkClosed
	}
	if err := domain.Validate(rec); err != nil {
		return err
	}
	if err := u.tx.QueryRow(ctx, sql, args...).Scan(id); err != nil {
		return writeError(err)
	}
	return nil
}

func (u *unit) SaveTeam(ctx context.Context, t *domain.Team) error {
	return u.insert(ctx, t, &t.ID, `INSERT INTO teams (name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		t.Name, t.Description, t.CreatedAt, t.UpdatedAt)
}

func (u *unit) SaveSkill(ctx context.Context, s *domain.Skill) error {
	return u.insert(ctx, s, &s.ID, `INSERT INTO skills (name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		s.Name, s.Description, s.CreatedAt, s.UpdatedAt)
}

func (u *unit) SavePosition(ctx context.Context, p *domain.Position) error {
	return u.insert(ctx, p, &p.ID, `INSERT INTO positions (name, abbreviation, created_at, updated_at)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		p.Name, p.Abbreviation, p.CreatedAt, p.UpdatedAt)
}

func (u *unit) SaveUser(ctx context.Context, usr *domain.User) error {
	return u.insert(ctx, usr, &usr.ID, `INSERT INTO users
		(name, email, password_hash, birthday, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		usr.Name, usr.Email, usr.PasswordHash, usr.Birthday, string(usr.Role), string(usr.Status),
		usr.CreatedAt, usr.UpdatedAt)
}

func (u *unit) SaveUserSkill(ctx context.Context, us *domain.UserSkill) error {
	var years *string
	if us.UsedYears != nil {
		s := us.UsedYears.String()
		years = &s
	}
	return u.insert(ctx, us, &us.ID, `INSERT INTO user_skills
		(user_id, skill_id, level, used_years, created_at, updated_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6) RETURNING id`,
		us.UserID, us.SkillID, string(us.Level), years, us.CreatedAt, us.UpdatedAt)
}

func (u *unit) SaveProject(ctx context.Context, p *domain.Project) error {
	return u.insert(ctx, p, &p.ID, `INSERT INTO projects
		(name, abbreviation, start_date, end_date, status, team_id, leader_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		p.Name, p.Abbreviation, p.StartDate, p.EndDate, string(p.Status), p.TeamID, p.LeaderID,
		p.CreatedAt, p.UpdatedAt)
}

func (u *unit) SaveProjectMember(ctx context.Context, m *domain.ProjectMember) error {
	return u.insert(ctx, m, &m.ID, `INSERT INTO project_members
		(project_id, user_id, status, joined_at, left_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		m.ProjectID, m.UserID, string(m.Status), m.JoinedAt, m.LeftAt)
}
