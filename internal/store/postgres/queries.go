package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/members/internal/domain"
)

// queries implements core.Finder over a transaction.
type queries struct {
	db dbtx
}

func (q queries) exists(ctx context.Context, sql, value string) (bool, error) {
	var found bool
	if err := q.db.QueryRow(ctx, sql, value).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

// Teams

const teamColumns = `id, name, description, created_at, updated_at, deleted_at`

func scanTeam(row pgx.CollectableRow) (domain.Team, error) {
	var t domain.Team
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt)
	return t, err
}

func (q queries) TeamExistsByName(ctx context.Context, name string) (bool, error) {
	return q.exists(ctx, `SELECT EXISTS (
		SELECT 1 FROM teams WHERE lower(name) = lower(trim($1)) AND deleted_at IS NULL)`, name)
}

func (q queries) FindTeamByName(ctx context.Context, name string) (domain.Team, bool, error) {
	rows, err := q.db.Query(ctx, `SELECT `+teamColumns+` FROM teams
		WHERE lower(name) = lower(trim($1)) AND deleted_at IS NULL`, name)
	if err != nil {
		return domain.Team{}, false, err
	}
	return collectOne(rows, scanTeam)
}

func (q queries) ListTeams(ctx context.Context) ([]domain.Team, error) {
	rows, err := q.db.Query(ctx, `SELECT `+teamColumns+` FROM teams WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanTeam)
}

// Skills

const skillColumns = `id, name, description, created_at, updated_at, deleted_at`

func scanSkill(row pgx.CollectableRow) (domain.Skill, error) {
	var s domain.Skill
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt)
	return s, err
}

func (q queries) SkillExistsByName(ctx context.Context, name string) (bool, error) {
	return q.exists(ctx, `SELECT EXISTS (
		SELECT 1 FROM skills WHERE lower(name) = lower(trim($1)) AND deleted_at IS NULL)`, name)
}

func (q queries) FindSkillByName(ctx context.Context, name string) (domain.Skill, bool, error) {
	rows, err := q.db.Query(ctx, `SELECT `+skillColumns+` FROM skills
		WHERE lower(name) = lower(trim($1)) AND deleted_at IS NULL`, name)
	if err != nil {
		return domain.Skill{}, false, err
	}
	return collectOne(rows, scanSkill)
}

func (q queries) ListSkills(ctx context.Context) ([]domain.Skill, error) {
	rows, err := q.db.Query(ctx, `SELECT `+skillColumns+` FROM skills WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanSkill)
}

// Positions

func (q queries) PositionExistsByName(ctx context.Context, name string) (bool, error) {
	return q.exists(ctx, `SELECT EXISTS (
		SELECT 1 FROM positions WHERE lower(name) = lower(trim($1)) AND deleted_at IS NULL)`, name)
}

func (q queries) PositionExistsByAbbreviation(ctx context.Context, abbreviation string) (bool, error) {
	return q.exists(ctx, `SELECT EXISTS (
		SELECT 1 FROM positions WHERE lower(abbreviation) = lower(trim($1)) AND deleted_at IS NULL)`, abbreviation)
}

func (q queries) ListPositions(ctx context.Context) ([]domain.Position, error) {
	rows, err := q.db.Query(ctx, `SELECT id, name, abbreviation, created_at, updated_at, deleted_at
		FROM positions WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Position, error) {
		var p domain.Position
		err := row.Scan(&p.ID, &p.Name, &p.Abbreviation, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
		return p, err
	})
}

// Users

const userColumns = `id, name, email, password_hash, birthday, role, status, created_at, updated_at, deleted_at`

func scanUser(row pgx.CollectableRow) (domain.User, error) {
	var (
		u            domain.User
		role, status string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Birthday, &role, &status,
		&u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	u.Role = domain.Role(role)
	u.Status = domain.UserStatus(status)
	return u, err
}

func (q queries) UserExistsByEmail(ctx context.Context, email string) (bool, error) {
	return q.exists(ctx, `SELECT EXISTS (
		SELECT 1 FROM users WHERE lower(email) = lower(trim($1)) AND deleted_at IS NULL)`, email)
}

func (q queries) FindUserByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	rows, err := q.db.Query(ctx, `SELECT `+userColumns+` FROM users
		WHERE lower(email) = lower(trim($1)) AND deleted_at IS NULL`, email)
	if err != nil {
		return domain.User{}, false, err
	}
	return collectOne(rows, scanUser)
}

func (q queries) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := q.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, err
	}
	users, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, err
	}

	rows, err = q.db.Query(ctx, `SELECT us.id, us.user_id, us.skill_id, s.name, us.level, us.used_years::text,
			us.created_at, us.updated_at
		FROM user_skills us
		JOIN skills s ON s.id = us.skill_id
		ORDER BY us.id`)
	if err != nil {
		return nil, err
	}
	skills, err := pgx.CollectRows(rows, scanUserSkill)
	if err != nil {
		return nil, err
	}

	byUser := make(map[int64][]domain.UserSkill)
	for _, us := range skills {
		byUser[us.UserID] = append(byUser[us.UserID], us)
	}
	for i := range users {
		users[i].Skills = byUser[users[i].ID]
	}
	return users, nil
}

func scanUserSkill(row pgx.CollectableRow) (domain.UserSkill, error) {
	var (
		us    domain.UserSkill
		level string
		years *string
	)
	if err := row.Scan(&us.ID, &us.UserID, &us.SkillID, &us.SkillName, &level, &years,
		&us.CreatedAt, &us.UpdatedAt); err != nil {
		return us, err
	}
	us.Level = domain.SkillLevel(level)
	if years != nil {
		d, err := decimal.NewFromString(*years)
		if err != nil {
			return us, fmt.Errorf("used_years %q: %w", *years, err)
		}
		us.UsedYears = &d
	}
	return us, nil
}

// Projects

func (q queries) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := q.db.Query(ctx, `SELECT p.id, p.name, p.abbreviation, p.start_date, p.end_date, p.status,
			p.team_id, p.leader_id, p.created_at, p.updated_at, p.deleted_at,
			t.name, coalesce(l.email, '')
		FROM projects p
		JOIN teams t ON t.id = p.team_id
		LEFT JOIN users l ON l.id = p.leader_id
		WHERE p.deleted_at IS NULL
		ORDER BY p.id`)
	if err != nil {
		return nil, err
	}
	projects, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Project, error) {
		var (
			p      domain.Project
			status string
		)
		err := row.Scan(&p.ID, &p.Name, &p.Abbreviation, &p.StartDate, &p.EndDate, &status,
			&p.TeamID, &p.LeaderID, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
			&p.TeamName, &p.LeaderEmail)
		p.Status = domain.ProjectStatus(status)
		return p, err
	})
	if err != nil {
		return nil, err
	}

	rows, err = q.db.Query(ctx, `SELECT m.id, m.project_id, m.user_id, u.email, m.status, m.joined_at, m.left_at
		FROM project_members m
		JOIN users u ON u.id = m.user_id
		ORDER BY m.id`)
	if err != nil {
		return nil, err
	}
	members, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ProjectMember, error) {
		var (
			m      domain.ProjectMember
			status string
		)
		err := row.Scan(&m.ID, &m.ProjectID, &m.UserID, &m.UserEmail, &status, &m.JoinedAt, &m.LeftAt)
		m.Status = domain.MemberStatus(status)
		return m, err
	})
	if err != nil {
		return nil, err
	}

	byProject := make(map[int64][]domain.ProjectMember)
	for _, m := range members {
		byProject[m.ProjectID] = append(byProject[m.ProjectID], m)
	}
	for i := range projects {
		projects[i].Members = byProject[projects[i].ID]
	}
	return projects, nil
}

// collectOne scans at most one row, reporting found == false for none.
func collectOne[T any](rows pgx.Rows, fn pgx.RowToFunc[T]) (T, bool, error) {
	v, err := pgx.CollectOneRow(rows, fn)
	if errors.Is(err, pgx.ErrNoRows) {
		var zero T
		return zero, false, nil
	}
	if err != nil {
		var zero T
		return zero, false, err
	}
	return v, true, nil
}
