package store

import "strings"

// Session keeps the logged-in foreman in config.json.
type Session struct{}

func (Session) SaveUser(name string) error {
	_, err := UpdateConfig(func(c *Config) { c.CurrentUser = strings.TrimSpace(name) })
	return err
}

func (Session) ClearUser() error {
	_, err := UpdateConfig(func(c *Config) { c.CurrentUser = "" })
	return err
}

// CurrentUser returns the persisted identity, or "" when logged out or unreadable.
func (Session) CurrentUser() string {
	cfg, err := LoadConfig()
	if err != nil {
		return ""
	}
	return cfg.CurrentUser
}
