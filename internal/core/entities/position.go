package entities

import (
	"context"

	"github.com/JonMunkholm/members/internal/core"
	"github.com/JonMunkholm/members/internal/domain"
)

func init() {
	core.Register(core.Definition{
		Info: core.EntityInfo{
			Key:           "position",
			Label:         "Position",
			Headers:       []string{"name", "abbreviation"},
			ExportHeaders: []string{"ID", "Name", "Abbreviation", "Created At", "Updated At"},
		},
		Validate: validatePosition,
		Keys: func(row core.Row) []core.Key {
			return []core.Key{
				{Scope: scopePositionName, Value: row.Cell(0)},
				{Scope: scopePositionAbbreviation, Value: row.Cell(1)},
			}
		},
		Process: savePosition,
		Sample:  positionSample,
		Export:  exportPositions,
	})
}

// validatePosition checks name and abbreviation independently; each is
// unique on its own.
func validatePosition(ctx context.Context, c *core.Check, row core.Row) (core.Issues, error) {
	var issues core.Issues

	name := row.Cell(0)
	if checkName(&issues, name) {
		err := checkUnique(ctx, c, &issues, "name", scopePositionName, name,
			"Position with name '%s' already exists", c.PositionExistsByName)
		if err != nil {
			return nil, err
		}
	}

	abbr := row.Cell(1)
	switch {
	case core.IsBlank(abbr):
		issues.Add("abbreviation", "Abbreviation is required")
	case core.TooLong(abbr, maxAbbreviationLength):
		issues.Add("abbreviation", "Abbreviation must not exceed 50 characters")
	default:
		err := checkUnique(ctx, c, &issues, "abbreviation", scopePositionAbbreviation, abbr,
			"Position with abbreviation '%s' already exists", c.PositionExistsByAbbreviation)
		if err != nil {
			return nil, err
		}
	}

	return issues, nil
}

func savePosition(ctx context.Context, env core.Env, row core.Row) (core.Created, error) {
	p := &domain.Position{
		Name:         row.Cell(0),
		Abbreviation: row.Cell(1),
		CreatedAt:    env.Now,
		UpdatedAt:    env.Now,
	}
	if err := env.Repos.SavePosition(ctx, p); err != nil {
		return core.Created{}, err
	}
	return core.Created{ID: p.ID, Label: p.Name}, nil
}

func positionSample() [][]string {
	return [][]string{
		{"Senior Developer", "SD"},
		{"Junior Developer", "JD"},
		{"Team Leader", "TL"},
		{"Project Manager", "PM"},
		{"Business Analyst", "BA"},
	}
}

func exportPositions(ctx context.Context, f core.Finder) ([][]string, error) {
	positions, err := f.ListPositions(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, []string{formatID(p.ID), p.Name, p.Abbreviation, formatTime(p.CreatedAt), formatTime(p.UpdatedAt)})
	}
	return rows, nil
}
