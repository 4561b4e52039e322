// Package domain holds the member-management entities shared by the import
// pipeline and the stores.
//
// Struct tags carry the constraints every store enforces before a write; see
// [Validate].
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Team groups users working together.
type Team struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name" validate:"required,max=255"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

// Skill is a named competency users can hold.
type Skill struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name" validate:"required,max=255"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

// Position is a job title. Name and abbreviation are independently unique.
type Position struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name" validate:"required,max=255"`
	Abbreviation string     `json:"abbreviation" validate:"required,max=50"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
}

// User is a member account.
type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name" validate:"required,max=255"`
	Email        string     `json:"email" validate:"required,max=255"`
	PasswordHash string     `json:"-" validate:"required"`
	Birthday     *time.Time `json:"birthday,omitempty"`
	Role         Role       `json:"role" validate:"required,user_role"`
	Status       UserStatus `json:"status" validate:"required,user_status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`

	// Skills is populated by list queries; saving a user does not write it.
	Skills []UserSkill `json:"skills,omitempty"`
}

// UserSkill links a user to a skill at a level. A user holds a skill at most once.
type UserSkill struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"userId" validate:"required"`
	SkillID   int64            `json:"skillId" validate:"required"`
	SkillName string           `json:"skillName,omitempty"`
	Level     SkillLevel       `json:"level" validate:"required,skill_level"`
	UsedYears *decimal.Decimal `json:"usedYears,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Project is owned by a team and staffed by project members.
type Project struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name" validate:"required,max=255"`
	Abbreviation string        `json:"abbreviation" validate:"max=50"`
	StartDate    *time.Time    `json:"startDate,omitempty"`
	EndDate      *time.Time    `json:"endDate,omitempty"`
	Status       ProjectStatus `json:"status" validate:"required,project_status"`
	TeamID       int64         `json:"teamId" validate:"required"`
	LeaderID     *int64        `json:"leaderId,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	DeletedAt    *time.Time    `json:"deletedAt,omitempty"`

	// Read-side fields filled by list queries.
	TeamName    string          `json:"teamName,omitempty"`
	LeaderEmail string          `json:"leaderEmail,omitempty"`
	Members     []ProjectMember `json:"members,omitempty"`
}

// ProjectMember records a user's participation in a project.
type ProjectMember struct {
	ID        int64        `json:"id"`
	ProjectID int64        `json:"projectId" validate:"required"`
	UserID    int64        `json:"userId" validate:"required"`
	UserEmail string       `json:"userEmail,omitempty"`
	Status    MemberStatus `json:"status" validate:"required,member_status"`
	JoinedAt  time.Time    `json:"joinedAt"`
	LeftAt    *time.Time   `json:"leftAt,omitempty"`
}

// ActiveMemberEmails returns the emails of members whose status is ACTIVE,
// in membership order.
func (p Project) ActiveMemberEmails() []string {
	var emails []string
	for _, m := range p.Members {
		if m.Status == MemberActive {
			emails = append(emails, m.UserEmail)
		}
	}
	return emails
}
