package entities

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/members/internal/core"
	"github.com/JonMunkholm/members/internal/domain"
)

const (
	colUserName = iota
	colUserEmail
	colUserPassword
	colUserBirthday
	colUserRole
	colUserStatus
	colUserSkills
)

var errNoHasher = errors.New("no password hasher configured")

func init() {
	core.Register(core.Definition{
		Info: core.EntityInfo{
			Key:           "user",
			Label:         "User",
			Headers:       []string{"name", "email", "password", "birthday", "role", "status", "skills"},
			ExportHeaders: []string{"ID", "Name", "Email", "Birthday", "Role", "Status", "Skills"},
		},
		Validate: validateUser,
		Keys: func(row core.Row) []core.Key {
			return []core.Key{{Scope: scopeUserEmail, Value: row.Cell(colUserEmail)}}
		},
		Process: saveUser,
		Sample:  userSample,
		Export:  exportUsers,
	})
}

// skillEntry is one name:level[:years] item of a skills cell.
type skillEntry struct {
	raw      string
	name     string
	level    string
	years    string
	hasYears bool
	ok       bool
}

func parseSkillEntries(cell string) []skillEntry {
	items := core.SplitList(cell, listSeparator)
	entries := make([]skillEntry, 0, len(items))
	for _, item := range items {
		parts := core.SplitFields(item, subFieldSeparator)
		e := skillEntry{raw: item}
		if len(parts) >= 2 {
			e.ok = true
			e.name = strings.TrimSpace(parts[0])
			e.level = strings.ToUpper(strings.TrimSpace(parts[1]))
			if len(parts) >= 3 {
				e.hasYears = true
				e.years = parts[2]
			}
		}
		entries = append(entries, e)
	}
	return entries
}

func validateUser(ctx context.Context, c *core.Check, row core.Row) (core.Issues, error) {
	var issues core.Issues

	checkName(&issues, row.Cell(colUserName))

	email := row.Cell(colUserEmail)
	switch {
	case core.IsBlank(email):
		issues.Add("email", "Email is required")
	case core.TooLong(email, maxEmailLength):
		issues.Add("email", "Email must not exceed 255 characters")
	case !emailPattern.MatchString(email):
		issues.Add("email", "Invalid email format")
	default:
		err := checkUnique(ctx, c, &issues, "email", scopeUserEmail, email,
			"User with email '%s' already exists", c.UserExistsByEmail)
		if err != nil {
			return nil, err
		}
	}

	password := row.Cell(colUserPassword)
	if core.IsBlank(password) {
		issues.Add("password", "Password is required")
	} else if len([]rune(password)) < minPasswordLength {
		issues.Add("password", "Password must be at least 6 characters")
	}

	if _, ok := core.ParseDate(row.Cell(colUserBirthday)); !ok {
		issues.Add("birthday", "Invalid date format. Expected: yyyy-MM-dd")
	}

	role := row.Cell(colUserRole)
	if core.IsBlank(role) {
		issues.Add("role", "Role is required")
	} else if _, ok := domain.ParseRole(role); !ok {
		issues.Add("role", "Invalid role. Valid values: %s", domain.Joined(domain.Roles))
	}

	status := row.Cell(colUserStatus)
	if core.IsBlank(status) {
		issues.Add("status", "Status is required")
	} else if _, ok := domain.ParseUserStatus(status); !ok {
		issues.Add("status", "Invalid status. Valid values: %s", domain.Joined(domain.UserStatuses))
	}

	if err := validateSkills(ctx, c, &issues, row.Cell(colUserSkills)); err != nil {
		return nil, err
	}

	return issues, nil
}

// validateSkills reports every bad item of a skills cell, not just the first.
func validateSkills(ctx context.Context, c *core.Check, issues *core.Issues, cell string) error {
	seen := make(map[string]bool)
	for _, e := range parseSkillEntries(cell) {
		if !e.ok {
			issues.Add("skills", "Invalid skill format: '%s'. Expected: skill_name:level[:years]", e.raw)
			continue
		}

		exists, err := c.SkillExistsByName(ctx, e.name)
		if err != nil {
			return err
		}
		if !exists {
			issues.Add("skills", "Skill '%s' does not exist", e.name)
		}

		if _, ok := domain.ParseSkillLevel(e.level); !ok {
			issues.Add("skills", "Invalid skill level: '%s'. Valid values: %s", e.level, domain.Joined(domain.SkillLevels))
		}

		if e.hasYears {
			if _, err := decimal.NewFromString(strings.TrimSpace(e.years)); err != nil {
				issues.Add("skills", "Invalid years of experience: '%s'. Must be a number", e.years)
			}
		}

		key := strings.ToLower(e.name)
		if seen[key] {
			issues.Add("skills", "Skill '%s' is listed more than once", e.name)
		}
		seen[key] = true
	}
	return nil
}

// saveUser stores the user with a hashed password, then one UserSkill per
// skills item.
func saveUser(ctx context.Context, env core.Env, row core.Row) (core.Created, error) {
	if env.Hasher == nil {
		return core.Created{}, errNoHasher
	}
	hash, err := env.Hasher.Hash(row.Cell(colUserPassword))
	if err != nil {
		return core.Created{}, fmt.Errorf("hash password: %w", err)
	}

	birthday, _ := core.ParseDate(row.Cell(colUserBirthday))
	role, _ := domain.ParseRole(row.Cell(colUserRole))
	status, _ := domain.ParseUserStatus(row.Cell(colUserStatus))

	u := &domain.User{
		Name:         row.Cell(colUserName),
		Email:        row.Cell(colUserEmail),
		PasswordHash: hash,
		Birthday:     birthday,
		Role:         role,
		Status:       status,
		CreatedAt:    env.Now,
		UpdatedAt:    env.Now,
	}
	if err := env.Repos.SaveUser(ctx, u); err != nil {
		return core.Created{}, err
	}

	for _, e := range parseSkillEntries(row.Cell(colUserSkills)) {
		skill, found, err := env.Repos.FindSkillByName(ctx, e.name)
		if err != nil {
			return core.Created{}, err
		}
		if !found {
			return core.Created{}, fmt.Errorf("skill %q does not exist", e.name)
		}

		level, _ := domain.ParseSkillLevel(e.level)
		us := &domain.UserSkill{
			UserID:    u.ID,
			SkillID:   skill.ID,
			SkillName: skill.Name,
			Level:     level,
			CreatedAt: env.Now,
			UpdatedAt: env.Now,
		}
		if e.hasYears {
			years, err := decimal.NewFromString(strings.TrimSpace(e.years))
			if err != nil {
				return core.Created{}, fmt.Errorf("years of experience for %q: %w", e.name, err)
			}
			us.UsedYears = &years
		}
		if err := env.Repos.SaveUserSkill(ctx, us); err != nil {
			return core.Created{}, err
		}
	}

	return core.Created{ID: u.ID, Label: u.Email}, nil
}

func userSample() [][]string {
	return [][]string{
		{"John Doe", "john.doe@example.com", "password123", "1990-05-15", "MEMBER", "ACTIVE", "Java:ADVANCED:3;Spring Boot:INTERMEDIATE:2"},
		{"Jane Smith", "jane.smith@example.com", "password123", "1985-08-22", "ADMIN", "ACTIVE", "React:EXPERT:5;Docker:ADVANCED:3"},
		{"Bob Wilson", "bob.wilson@example.com", "password123", "1992-12-10", "MEMBER", "ACTIVE", "MySQL:INTERMEDIATE:2"},
		{"Alice Brown", "alice.brown@example.com", "password123", "1988-03-25", "MEMBER", "INACTIVE", ""},
	}
}

func exportUsers(ctx context.Context, f core.Finder) ([][]string, error) {
	users, err := f.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			formatID(u.ID),
			u.Name,
			u.Email,
			formatDate(u.Birthday),
			string(u.Role),
			string(u.Status),
			formatUserSkills(u.Skills),
		})
	}
	return rows, nil
}

// formatUserSkills renders name:LEVEL:years items joined by "|", sorted by
// skill name.
func formatUserSkills(skills []domain.UserSkill) string {
	items := make([]string, 0, len(skills))
	for _, s := range skills {
		years := "0"
		if s.UsedYears != nil {
			years = s.UsedYears.String()
		}
		items = append(items, s.SkillName+subFieldSeparator+string(s.Level)+subFieldSeparator+years)
	}
	sort.Strings(items)
	return strings.Join(items, "|")
}
