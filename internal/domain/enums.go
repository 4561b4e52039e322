package domain

import "strings"

// Role is a user's access level.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// Roles lists every Role in display order.
var Roles = []Role{RoleAdmin, RoleMember}

// UserStatus marks whether a user account is in use.
type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserInactive UserStatus = "INACTIVE"
)

var UserStatuses = []UserStatus{UserActive, UserInactive}

// SkillLevel is a user's proficiency in a skill.
type SkillLevel string

const (
	LevelBeginner     SkillLevel = "BEGINNER"
	LevelIntermediate SkillLevel = "INTERMEDIATE"
	LevelAdvanced     SkillLevel = "ADVANCED"
	LevelExpert       SkillLevel = "EXPERT"
)

var SkillLevels = []SkillLevel{LevelBeginner, LevelIntermediate, LevelAdvanced, LevelExpert}

// ProjectStatus is the lifecycle stage of a project.
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "PLANNING"
	ProjectOngoing   ProjectStatus = "ONGOING"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectCancelled ProjectStatus = "CANCELLED"
)

var ProjectStatuses = []ProjectStatus{ProjectPlanning, ProjectOngoing, ProjectCompleted, ProjectCancelled}

// MemberStatus marks whether a user still belongs to a project.
type MemberStatus string

const (
	MemberActive   MemberStatus = "ACTIVE"
	MemberInactive MemberStatus = "INACTIVE"
)

var MemberStatuses = []MemberStatus{MemberActive, MemberInactive}

func ParseRole(s string) (Role, bool)                   { return parseEnum(s, Roles) }
func ParseUserStatus(s string) (UserStatus, bool)       { return parseEnum(s, UserStatuses) }
func ParseSkillLevel(s string) (SkillLevel, bool)       { return parseEnum(s, SkillLevels) }
func ParseProjectStatus(s string) (ProjectStatus, bool) { return parseEnum(s, ProjectStatuses) }
func ParseMemberStatus(s string) (MemberStatus, bool)   { return parseEnum(s, MemberStatuses) }

// parseEnum upper-cases s and looks it up in values.
func parseEnum[T ~string](s string, values []T) (T, bool) {
	key := strings.ToUpper(strings.TrimSpace(s))
	for _, v := range values {
		if string(v) == key {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Joined renders values as "A, B, C" for error messages.
func Joined[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
