package models

import "time"

type User struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Name     string `json:"name"`
	Username string `gorm:"unique;not null" json:"username"`
	Email    string `gorm:"unique;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Bio      string `json:"bio"`
	Location string `json:"location"`
	Github   string `json:"github"`
	Twitter  string `json:"twitter"`
	Linkedin string `json:"linkedin"`
	Avatar   string `json:"avatar"`

	Stats UserStats `gorm:"embedded;embeddedPrefix:stats_" json:"stats"`

	JoinDate  time.Time `gorm:"autoCreateTime" json:"joinDate"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserStats are aggregate counters kept on the user row.
type UserStats struct {
	Questions  int `gorm:"not null;default:0" json:"questions"`
	Answers    int `gorm:"not null;default:0" json:"answers"`
	Solutions  int `gorm:"not null;default:0" json:"solutions"`
	Reputation int `gorm:"not null;default:0" json:"reputation"`
}

// Stat names a UserStats counter column.
type Stat string

const (
	StatQuestions  Stat = "stats_questions"
	StatAnswers    Stat = "stats_answers"
	StatSolutions  Stat = "stats_solutions"
	StatReputation Stat = "stats_reputation"
)

// UserSummary is the display-safe view of a user embedded in other payloads.
type UserSummary struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Name: u.Name, Email: u.Email, Avatar: u.Avatar}
}

// ProfileUpdate carries the user-editable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
	Location *string `json:"location"`
	Github   *string `json:"github"`
	Twitter  *string `json:"twitter"`
	Linkedin *string `json:"linkedin"`
	Avatar   *string `json:"avatar"`
}

// Columns returns the column/value pairs set in p.
func (p ProfileUpdate) Columns() map[string]any {
	cols := make(map[string]any)
	set := func(col string, v *string) {
		if v != nil {
			cols[col] = *v
		}
	}
	set("name", p.Name)
	set("username", p.Username)
	set("bio", p.Bio)
	set("location", p.Location)
	set("github", p.Github)
	set("twitter", p.Twitter)
	set("linkedin", p.Linkedin)
	set("avatar", p.Avatar)
	return cols
}

// Apply copies the set fields of p onto u.
func (p ProfileUpdate) Apply(u *User) {
	apply := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	apply(&u.Name, p.Name)
	apply(&u.Username, p.Username)
	apply(&u.Bio, p.Bio)
	apply(&u.Location, p.Location)
	apply(&u.Github, p.Github)
	apply(&u.Twitter, p.Twitter)
	apply(&u.Linkedin, p.Linkedin)
	apply(&u.Avatar, p.Avatar)
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
