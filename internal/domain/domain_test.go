package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnums(t *testing.T) {
	tests := []struct {
		name  string
		parse func(string) (string, bool)
		input string
		want  string
		ok    bool
	}{
		{"role lower", wrap(ParseRole), "admin", "ADMIN", true},
		{"role padded", wrap(ParseRole), "  Member ", "MEMBER", true},
		{"role unknown", wrap(ParseRole), "owner", "", false},
		{"status", wrap(ParseUserStatus), "inactive", "INACTIVE", true},
		{"level", wrap(ParseSkillLevel), "Expert", "EXPERT", true},
		{"level unknown", wrap(ParseSkillLevel), "BOGUS", "", false},
		{"project status", wrap(ParseProjectStatus), "cancelled", "CANCELLED", true},
		{"member status empty", wrap(ParseMemberStatus), "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.parse(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func wrap[T ~string](parse func(string) (T, bool)) func(string) (string, bool) {
	return func(s string) (string, bool) {
		v, ok := parse(s)
		return string(v), ok
	}
}

func TestJoined(t *testing.T) {
	assert.Equal(t, "BEGINNER, INTERMEDIATE, ADVANCED, EXPERT", Joined(SkillLevels))
	assert.Equal(t, "PLANNING, ONGOING, COMPLETED, CANCELLED", Joined(ProjectStatuses))
}

func TestValidate(t *testing.T) {
	t.Run("valid team", func(t *testing.T) {
		require.NoError(t, Validate(&Team{Name: "Backend"}))
	})

	t.Run("missing name", func(t *testing.T) {
		err := Validate(&Team{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name violates required")
	})

	t.Run("abbreviation too long", func(t *testing.T) {
		err := Validate(&Position{Name: "Lead", Abbreviation: strings.Repeat("x", 51)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "abbreviation violates max=50")
	})

	t.Run("enum must be canonical", func(t *testing.T) {
		u := &User{Name: "A", Email: "a@b.co", PasswordHash: "h", Role: "admin", Status: UserActive}
		err := Validate(u)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "role violates user_role")

		u.Role = RoleAdmin
		assert.NoError(t, Validate(u))
	})

	t.Run("project requires team", func(t *testing.T) {
		err := Validate(&Project{Name: "P", Status: ProjectOngoing})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "teamId violates required")
	})
}

func TestActiveMemberEmails(t *testing.T) {
	p := Project{Members: []ProjectMember{
		{UserEmail: "a@x.io", Status: MemberActive},
		{UserEmail: "b@x.io", Status: MemberInactive},
		{UserEmail: "c@x.io", Status: MemberActive},
	}}
	assert.Equal(t, []string{"a@x.io", "c@x.io"}, p.ActiveMemberEmails())
}
