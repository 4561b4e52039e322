// Package entities registers the importable member-management entities with
// the core pipeline. Import it for its side effects:
//
//	import _ "github.com/JonMunkholm/members/internal/core/entities"
package entities

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/JonMunkholm/members/internal/core"
)

const (
	maxNameLength         = 255
	maxEmailLength        = 255
	maxAbbreviationLength = 50
	minPasswordLength     = 6

	listSeparator     = ";"
	subFieldSeparator = ":"

	exportTimeLayout = "2006-01-02 15:04:05"
)

// Natural key scopes.
const (
	scopeTeamName             = "team.name"
	scopeSkillName            = "skill.name"
	scopePositionName         = "position.name"
	scopePositionAbbreviation = "position.abbreviation"
	scopeUserEmail            = "user.email"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// checkName applies the required and length rules shared by every name
// column. It reports whether the name passed both.
func checkName(issues *core.Issues, name string) bool {
	if core.IsBlank(name) {
		issues.Add("name", "Name is required")
		return false
	}
	if core.TooLong(name, maxNameLength) {
		issues.Add("name", "Name must not exceed 255 characters")
		return false
	}
	return true
}

// checkUnique reports a duplicate when value exists in the store or was taken
// by an earlier row of the same file.
func checkUnique(ctx context.Context, c *core.Check, issues *core.Issues, field, scope, value, message string,
	exists func(context.Context, string) (bool, error)) error {
	found, err := exists(ctx, value)
	if err != nil {
		return err
	}
	if found || c.Claimed(scope, value) {
		issues.Add(field, message, value)
	}
	return nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(exportTimeLayout)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(core.DateLayout)
}
