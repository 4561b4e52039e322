package entities

import (
	"context"

	"github.com/JonMunkholm/members/internal/core"
	"github.com/JonMunkholm/members/internal/domain"
)

func init() {
	core.Register(core.Definition{
		Info: core.EntityInfo{
			Key:           "team",
			Label:         "Team",
			Headers:       []string{"name", "description"},
			ExportHeaders: []string{"ID", "Name", "Description", "Created At", "Updated At"},
		},
		Validate: validateTeam,
		Keys: func(row core.Row) []core.Key {
			return []core.Key{{Scope: scopeTeamName, Value: row.Cell(0)}}
		},
		Process: saveTeam,
		Sample:  teamSample,
		Export:  exportTeams,
	})
}

func validateTeam(ctx context.Context, c *core.Check, row core.Row) (core.Issues, error) {
	var issues core.Issues

	name := row.Cell(0)
	if checkName(&issues, name) {
		err := checkUnique(ctx, c, &issues, "name", scopeTeamName, name,
			"Team with name '%s' already exists", c.TeamExistsByName)
		if err != nil {
			return nil, err
		}
	}

	return issues, nil
}

func saveTeam(ctx context.Context, env core.Env, row core.Row) (core.Created, error) {
	t := &domain.Team{
		Name:        row.Cell(0),
		Description: row.Cell(1),
		CreatedAt:   env.Now,
		UpdatedAt:   env.Now,
	}
	if err := env.Repos.SaveTeam(ctx, t); err != nil {
		return core.Created{}, err
	}
	return core.Created{ID: t.ID, Label: t.Name}, nil
}

func teamSample() [][]string {
	return [][]string{
		{"Backend Team", "Team responsible for server-side development"},
		{"Frontend Team", "Team responsible for client-side development"},
		{"DevOps Team", "Team responsible for CI/CD and infrastructure"},
		{"QA Team", "Team responsible for quality assurance and testing"},
		{"Mobile Team", "Team responsible for mobile application development"},
	}
}

func exportTeams(ctx context.Context, f core.Finder) ([][]string, error) {
	teams, err := f.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(teams))
	for _, t := range teams {
		rows = append(rows, []string{formatID(t.ID), t.Name, t.Description, formatTime(t.CreatedAt), formatTime(t.UpdatedAt)})
	}
	return rows, nil
}
