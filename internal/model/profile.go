package model

import "time"

type UserProfile struct {
	Username string `json:"username" yaml:"username"`
	Role     string `json:"role" yaml:"role"`
	Email    string `json:"email" yaml:"email"`
}

type Session struct {
	Cookie     string      `yaml:"cookie"`
	Profile    UserProfile `yaml:"profile"`
	LoggedInAt time.Time   `yaml:"logged_in_at"`
}

func (s Session) Empty() bool {
	return s.Cookie == "" && s.Profile.Username == ""
}
