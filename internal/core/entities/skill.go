package entities

import (
	"context"

	"github.com/JonMunkholm/members/internal/core"
	"github.com/JonMunkholm/members/internal/domain"
)

func init() {
	core.Register(core.Definition{
		Info: core.EntityInfo{
			Key:           "skill",
			Label:         "Skill",
			Headers:       []string{"name", "description"},
			ExportHeaders: []string{"ID", "Name", "Description", "Created At", "Updated At"},
		},
		Validate: validateSkill,
		Keys: func(row core.Row) []core.Key {
			return []core.Key{{Scope: scopeSkillName, Value: row.Cell(0)}}
		},
		Process: saveSkill,
		Sample:  skillSample,
		Export:  exportSkills,
	})
}

func validateSkill(ctx context.Context, c *core.Check, row core.Row) (core.Issues, error) {
	var issues core.Issues

	name := row.Cell(0)
	if checkName(&issues, name) {
		err := checkUnique(ctx, c, &issues, "name", scopeSkillName, name,
			"Skill with name '%s' already exists", c.SkillExistsByName)
		if err != nil {
			return nil, err
		}
	}

	return issues, nil
}

func saveSkill(ctx context.Context, env core.Env, row core.Row) (core.Created, error) {
	s := &domain.Skill{
		Name:        row.Cell(0),
		Description: row.Cell(1),
		CreatedAt:   env.Now,
		UpdatedAt:   env.Now,
	}
	if err := env.Repos.SaveSkill(ctx, s); err != nil {
		return core.Created{}, err
	}
	return core.Created{ID: s.ID, Label: s.Name}, nil
}

func skillSample() [][]string {
	return [][]string{
		{"Java", "A high-level, class-based, object-oriented programming language"},
		{"Spring Boot", "An open-source Java-based framework for creating microservices"},
		{"React", "A JavaScript library for building user interfaces"},
		{"Docker", "A platform for developing, shipping, and running applications in containers"},
		{"MySQL", "An open-source relational database management system"},
	}
}

func exportSkills(ctx context.Context, f core.Finder) ([][]string, error) {
	skills, err := f.ListSkills(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(skills))
	for _, s := range skills {
		rows = append(rows, []string{formatID(s.ID), s.Name, s.Description, formatTime(s.CreatedAt), formatTime(s.UpdatedAt)})
	}
	return rows, nil
}
