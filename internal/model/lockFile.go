package model

// LockFile is written while a command talks to the portal so that a second
// fieldsync process does not race the first one over the session and cache.
type LockFile struct {
	ID        string `yaml:"id"`
	User      string `yaml:"user"`
	Pid       int    `yaml:"pid"`
	Command   string `yaml:"command"`
	TimeStamp string `yaml:"timestamp"`
}
