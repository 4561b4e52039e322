package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_CountsRowsOnce(t *testing.T) {
	l := newLedger("imp-1", "user")

	l.countRow()
	l.addError(2, "email", "Invalid email format")
	l.addError(2, "role", "Role is required")

	l.countRow()
	l.succeed(Created{ID: 7, Label: "a@b.co"})

	l.countRow()
	l.addError(4, "Database", "Failed to save user: boom")

	r := l.seal(12)
	assert.Equal(t, 3, r.TotalRows)
	assert.Equal(t, 1, r.SuccessCount)
	assert.Equal(t, 2, r.ErrorCount)
	assert.Len(t, r.Errors, 3)
	assert.True(t, r.HasErrors())
	assert.Len(t, r.ErrorsForRow(2), 2)
	assert.Equal(t, int64(12), r.DurationMs)
}

func TestLedger_RollBackClearsCreated(t *testing.T) {
	l := newLedger("imp-2", "team")
	l.countRow()
	l.succeed(Created{ID: 1, Label: "Backend"})
	l.countRow()
	l.addError(3, "name", "Team with name 'Backend' already exists")

	l.rollBack()
	r := l.seal(0)

	assert.True(t, r.RolledBack)
	assert.Equal(t, 1, r.SuccessCount)
	assert.Empty(t, r.Created)
	assert.NotNil(t, r.Created)
}

func TestLedger_SealedIsReadOnly(t *testing.T) {
	l := newLedger("imp-3", "skill")
	l.seal(0)

	require.Panics(t, func() { l.countRow() })
	require.Panics(t, func() { l.addError(2, "name", "x") })
}

func TestRow(t *testing.T) {
	r := Row{Number: 2, Cells: []string{"  Backend ", "", "\t"}}
	assert.Equal(t, "Backend", r.Cell(0))
	assert.Equal(t, "", r.Cell(5))
	assert.Equal(t, "", r.Cell(-1))
	assert.False(t, r.Blank())
	assert.True(t, Row{Cells: []string{" ", ""}}.Blank())
}

func TestIssues(t *testing.T) {
	var is Issues
	assert.Nil(t, is.Messages())

	is.Add("name", "Name is required")
	is.Add("name", "Team with name '%s' already exists", "100%")
	assert.Equal(t, []string{"Name is required", "Team with name '100%' already exists"}, is.Messages())
}

func TestCheck_Claimed(t *testing.T) {
	c := NewCheck(nil)
	c.claim([]Key{{Scope: "team.name", Value: " Backend "}, {Scope: "team.name", Value: ""}})

	assert.True(t, c.Claimed("team.name", "backend"))
	assert.False(t, c.Claimed("skill.name", "backend"))
	assert.False(t, c.Claimed("team.name", ""))
}
