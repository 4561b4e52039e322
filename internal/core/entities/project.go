package entities

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/members/internal/core"
	"github.com/JonMunkholm/members/internal/domain"
)

const (
	colProjectName = iota
	colProjectAbbreviation
	colProjectStartDate
	colProjectEndDate
	colProjectStatus
	colProjectTeamName
	colProjectMemberEmails
)

func init() {
	core.Register(core.Definition{
		Info: core.EntityInfo{
			Key:           "project",
			Label:         "Project",
			Headers:       []string{"name", "abbreviation", "start_date", "end_date", "status", "team_name", "member_emails"},
			ExportHeaders: []string{"Name", "Abbreviation", "StartDate", "EndDate", "TeamName", "LeaderEmail", "MemberEmails"},
		},
		Validate: validateProject,
		// Projects have no natural key of their own.
		Keys:    func(core.Row) []core.Key { return nil },
		Process: saveProject,
		Sample:  projectSample,
		Export:  exportProjects,
	})
}

func validateProject(ctx context.Context, c *core.Check, row core.Row) (core.Issues, error) {
	var issues core.Issues

	checkName(&issues, row.Cell(colProjectName))

	if core.TooLong(row.Cell(colProjectAbbreviation), maxAbbreviationLength) {
		issues.Add("abbreviation", "Abbreviation must not exceed 50 characters")
	}

	start, ok := core.ParseDate(row.Cell(colProjectStartDate))
	if !ok {
		issues.Add("start_date", "Invalid date format. Expected: yyyy-MM-dd")
	}
	end, ok := core.ParseDate(row.Cell(colProjectEndDate))
	if !ok {
		issues.Add("end_date", "Invalid date format. Expected: yyyy-MM-dd")
	} else if start != nil && end != nil && end.Before(*start) {
		issues.Add("end_date", "End date must be after start date")
	}

	status := row.Cell(colProjectStatus)
	if core.IsBlank(status) {
		issues.Add("status", "Status is required")
	} else if _, ok := domain.ParseProjectStatus(status); !ok {
		issues.Add("status", "Invalid status. Valid values: %s", domain.Joined(domain.ProjectStatuses))
	}

	teamName := row.Cell(colProjectTeamName)
	if core.IsBlank(teamName) {
		issues.Add("team_name", "Team name is required")
	} else {
		exists, err := c.TeamExistsByName(ctx, teamName)
		if err != nil {
			return nil, err
		}
		if !exists {
			issues.Add("team_name", "Team '%s' does not exist", teamName)
		}
	}

	for _, email := range core.SplitList(row.Cell(colProjectMemberEmails), listSeparator) {
		exists, err := c.UserExistsByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if !exists {
			issues.Add("member_emails", "User with email '%s' does not exist", email)
		}
	}

	return issues, nil
}

// saveProject stores the project and an ACTIVE membership for each distinct
// member email.
func saveProject(ctx context.Context, env core.Env, row core.Row) (core.Created, error) {
	teamName := row.Cell(colProjectTeamName)
	team, found, err := env.Repos.FindTeamByName(ctx, teamName)
	if err != nil {
		return core.Created{}, err
	}
	if !found {
		return core.Created{}, fmt.Errorf("team %q does not exist", teamName)
	}

	start, _ := core.ParseDate(row.Cell(colProjectStartDate))
	end, _ := core.ParseDate(row.Cell(colProjectEndDate))
	status, _ := domain.ParseProjectStatus(row.Cell(colProjectStatus))

	p := &domain.Project{
		Name:         row.Cell(colProjectName),
		Abbreviation: row.Cell(colProjectAbbreviation),
		StartDate:    start,
		EndDate:      end,
		Status:       status,
		TeamID:       team.ID,
		CreatedAt:    env.Now,
		UpdatedAt:    env.Now,
	}
	if err := env.Repos.SaveProject(ctx, p); err != nil {
		return core.Created{}, err
	}

	seen := make(map[string]bool)
	for _, email := range core.SplitList(row.Cell(colProjectMemberEmails), listSeparator) {
		key := strings.ToLower(email)
		if seen[key] {
			continue
		}
		seen[key] = true

		u, found, err := env.Repos.FindUserByEmail(ctx, email)
		if err != nil {
			return core.Created{}, err
		}
		if !found {
			return core.Created{}, fmt.Errorf("user %q does not exist", email)
		}

		m := &domain.ProjectMember{
			ProjectID: p.ID,
			UserID:    u.ID,
			Status:    domain.MemberActive,
			JoinedAt:  env.Now,
		}
		if err := env.Repos.SaveProjectMember(ctx, m); err != nil {
			return core.Created{}, err
		}
	}

	return core.Created{ID: p.ID, Label: p.Name}, nil
}

func projectSample() [][]string {
	return [][]string{
		{"E-Commerce Platform", "ECP", "2024-01-15", "2024-12-31", "ONGOING", "Backend Team", "john.doe@example.com;jane.smith@example.com"},
		{"Mobile App", "MA", "2024-03-01", "", "PLANNING", "Mobile Team", "bob.wilson@example.com"},
		{"Internal Dashboard", "ID", "2023-06-01", "2023-12-15", "COMPLETED", "Frontend Team", "alice.brown@example.com;john.doe@example.com"},
	}
}

func exportProjects(ctx context.Context, f core.Finder) ([][]string, error) {
	projects, err := f.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			p.Name,
			p.Abbreviation,
			formatDate(p.StartDate),
			formatDate(p.EndDate),
			p.TeamName,
			p.LeaderEmail,
			strings.Join(p.ActiveMemberEmails(), listSeparator),
		})
	}
	return rows, nil
}
