package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/JonMunkholm/members/internal/domain"
)

// state is one consistent version of every table. Finder methods only see
// rows that are not soft-deleted.
type state struct {
	teams      []domain.Team
	skills     []domain.Skill
	positions  []domain.Position
	users      []domain.User
	userSkills []domain.UserSkill
	projects   []domain.Project
	members    []domain.ProjectMember
}

func (st *state) clone() *state {
	return &state{
		teams:      slices.Clone(st.teams),
		skills:     slices.Clone(st.skills),
		positions:  slices.Clone(st.positions),
		users:      slices.Clone(st.users),
		userSkills: slices.Clone(st.userSkills),
		projects:   slices.Clone(st.projects),
		members:    slices.Clone(st.members),
	}
}

func uniqueViolation(constraint string) error {
	return fmt.Errorf("duplicate key value violates unique constraint %q", constraint)
}

func foreignKeyViolation(table, constraint string) error {
	return fmt.Errorf("insert or update on table %q violates foreign key constraint %q", table, constraint)
}

// Reads.

func (st *state) TeamExistsByName(_ context.Context, name string) (bool, error) {
	_, ok := st.team(name)
	return ok, nil
}

func (st *state) FindTeamByName(_ context.Context, name string) (domain.Team, bool, error) {
	t, ok := st.team(name)
	return t, ok, nil
}

func (st *state) team(name string) (domain.Team, bool) {
	for _, t := range st.teams {
		if t.DeletedAt == nil && strings.EqualFold(t.Name, strings.TrimSpace(name)) {
			return t, true
		}
	}
	return domain.Team{}, false
}

func (st *state) ListTeams(context.Context) ([]domain.Team, error) {
	var out []domain.Team
	for _, t := range st.teams {
		if t.DeletedAt == nil {
			out = append(out, t)
		}
	}
	return out, nil
}

func (st *state) SkillExistsByName(_ context.Context, name string) (bool, error) {
	_, ok := st.skill(name)
	return ok, nil
}

func (st *state) FindSkillByName(_ context.Context, name string) (domain.Skill, bool, error) {
	s, ok := st.skill(name)
	return s, ok, nil
}

func (st *state) skill(name string) (domain.Skill, bool) {
	for _, s := range st.skills {
		if s.DeletedAt == nil && strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return s, true
		}
	}
	return domain.Skill{}, false
}

func (st *state) ListSkills(context.Context) ([]domain.Skill, error) {
	var out []domain.Skill
	for _, s := range st.skills {
		if s.DeletedAt == nil {
			out = append(out, s)
		}
	}
	return out, nil
}

func (st *state) PositionExistsByName(_ context.Context, name string) (bool, error) {
	for _, p := range st.positions {
		if p.DeletedAt == nil && strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return true, nil
		}
	}
	return false, nil
}

func (st *state) PositionExistsByAbbreviation(_ context.Context, abbreviation string) (bool, error) {
	for _, p := range st.positions {
		if p.DeletedAt == nil && strings.EqualFold(p.Abbreviation, strings.TrimSpace(abbreviation)) {
			return true, nil
		}
	}
	return false, nil
}

func (st *state) ListPositions(context.Context) ([]domain.Position, error) {
	var out []domain.Position
	for _, p := range st.positions {
		if p.DeletedAt == nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (st *state) UserExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := st.user(email)
	return ok, nil
}

func (st *state) FindUserByEmail(_ context.Context, email string) (domain.User, bool, error) {
	u, ok := st.user(email)
	return u, ok, nil
}

func (st *state) user(email string) (domain.User, bool) {
	for _, u := range st.users {
		if u.DeletedAt == nil && strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, true
		}
	}
	return domain.User{}, false
}

func (st *state) userByID(id int64) (domain.User, bool) {
	for _, u := range st.users {
		if u.ID == id && u.DeletedAt == nil {
			return u, true
		}
	}
	return domain.User{}, false
}

func (st *state) ListUsers(context.Context) ([]domain.User, error) {
	skillNames := make(map[int64]string, len(st.skills))
	for _, s := range st.skills {
		skillNames[s.ID] = s.Name
	}

	var out []domain.User
	for _, u := range st.users {
		if u.DeletedAt != nil {
			continue
		}
		u.Skills = nil
		for _, us := range st.userSkills {
			if us.UserID == u.ID {
				us.SkillName = skillNames[us.SkillID]
				u.Skills = append(u.Skills, us)
			}
		}
		out = append(out, u)
	}
	return out, nil
}

func (st *state) ListProjects(context.Context) ([]domain.Project, error) {
	teamNames := make(map[int64]string, len(st.teams))
	for _, t := range st.teams {
		teamNames[t.ID] = t.Name
	}

	var out []domain.Project
	for _, p := range st.projects {
		if p.DeletedAt != nil {
			continue
		}
		p.TeamName = teamNames[p.TeamID]
		if p.LeaderID != nil {
			if u, ok := st.userByID(*p.LeaderID); ok {
				p.LeaderEmail = u.Email
			}
		}
		p.Members = nil
		for _, m := range st.members {
			if m.ProjectID != p.ID {
				continue
			}
			if u, ok := st.userByID(m.UserID); ok {
				m.UserEmail = u.Email
			}
			p.Members = append(p.Members, m)
		}
		sort.SliceStable(p.Members, func(i, j int) bool { return p.Members[i].ID < p.Members[j].ID })
		out = append(out, p)
	}
	return out, nil
}

// Writes. Each insert enforces the same constraints as the SQL schema.

func (st *state) insertTeam(t domain.Team) error {
	if _, ok := st.team(t.Name); ok {
		return uniqueViolation("teams_name_key")
	}
	st.teams = append(st.teams, t)
	return nil
}

func (st *state) insertSkill(s domain.Skill) error {
	if _, ok := st.skill(s.Name); ok {
		return uniqueViolation("skills_name_key")
	}
	st.skills = append(st.skills, s)
	return nil
}

func (st *state) insertPosition(p domain.Position) error {
	if ok, _ := st.PositionExistsByName(context.Background(), p.Name); ok {
		return uniqueViolation("positions_name_key")
	}
	if ok, _ := st.PositionExistsByAbbreviation(context.Background(), p.Abbreviation); ok {
		return uniqueViolation("positions_abbreviation_key")
	}
	st.positions = append(st.positions, p)
	return nil
}

func (st *state) insertUser(u domain.User) error {
	if _, ok := st.user(u.Email); ok {
		return uniqueViolation("users_email_key")
	}
	u.Skills = nil
	st.users = append(st.users, u)
	return nil
}

func (st *state) insertUserSkill(us domain.UserSkill) error {
	if _, ok := st.userByID(us.UserID); !ok {
		return foreignKeyViolation("user_skills", "user_skills_user_id_fkey")
	}
	if !slices.ContainsFunc(st.skills, func(s domain.Skill) bool { return s.ID == us.SkillID && s.DeletedAt == nil }) {
		return foreignKeyViolation("user_skills", "user_skills_skill_id_fkey")
	}
	if slices.ContainsFunc(st.userSkills, func(x domain.UserSkill) bool { return x.UserID == us.UserID && x.SkillID == us.SkillID }) {
		return uniqueViolation("user_skills_user_id_skill_id_key")
	}
	st.userSkills = append(st.userSkills, us)
	return nil
}

func (st *state) insertProject(p domain.Project) error {
	if !slices.ContainsFunc(st.teams, func(t domain.Team) bool { return t.ID == p.TeamID && t.DeletedAt == nil }) {
		return foreignKeyViolation("projects", "projects_team_id_fkey")
	}
	if p.LeaderID != nil {
		if _, ok := st.userByID(*p.LeaderID); !ok {
			return foreignKeyViolation("projects", "projects_leader_id_fkey")
		}
	}
	p.TeamName, p.LeaderEmail, p.Members = "", "", nil
	st.projects = append(st.projects, p)
	return nil
}

func (st *state) insertMember(m domain.ProjectMember) error {
	if !slices.ContainsFunc(st.projects, func(p domain.Project) bool { return p.ID == m.ProjectID && p.DeletedAt == nil }) {
		return foreignKeyViolation("project_members", "project_members_project_id_fkey")
	}
	if _, ok := st.userByID(m.UserID); !ok {
		return foreignKeyViolation("project_members", "project_members_user_id_fkey")
	}
	if slices.ContainsFunc(st.members, func(x domain.ProjectMember) bool { return x.ProjectID == m.ProjectID && x.UserID == m.UserID }) {
		return uniqueViolation("project_members_project_id_user_id_key")
	}
	m.UserEmail = ""
	st.members = append(st.members, m)
	return nil
}
