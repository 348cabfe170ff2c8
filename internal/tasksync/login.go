package tasksync

import (
	"context"
	"net/http"
	"strings"

	"github.com/nakachan-ing/fieldsync-cli/internal/model"
)

// Login authenticates against /auth/login and installs the returned session.
// Credentials are trimmed; empty ones are rejected before any request is sent.
func (c *Client) Login(ctx context.Context, username, password string) (model.UserProfile, error) {
	const op = "tasksync.Client.Login"
	log := c.log.WithField("operation", op)

	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" {
		return model.UserProfile{}, &ValidationError{Field: "username", Message: "must not be empty"}
	}
	if password == "" {
		return model.UserProfile{}, &ValidationError{Field: "password", Message: "must not be empty"}
	}

	c.ops.Lock()
	defer c.ops.Unlock()

	body := map[string]string{"username": username, "password": password}
	resp, err := c.send(ctx, http.MethodPost, "/auth/login", body)
	if err != nil {
		log.WithError(err).Error("login request failed")
		return model.UserProfile{}, newLoginError(0, "", err)
	}
	if !resp.ok() {
		log.WithField("status", resp.status).Warn("login rejected")
		return model.UserProfile{}, newLoginError(resp.status, strings.TrimSpace(string(resp.body)), nil)
	}

	profile, err := DecodeProfile(resp.body)
	if err != nil {
		return model.UserProfile{}, newLoginError(resp.status, "", err)
	}

	c.mu.Lock()
	c.gen++
	cookie := sessionCookie(resp.header)
	if cookie == "" {
		cookie = c.session.Cookie
		log.Warn("login response carried no session cookie")
	}
	c.session = model.Session{Cookie: cookie, Profile: profile, LoggedInAt: c.now()}
	c.mu.Unlock()

	log.WithField("user", profile.Username).Info("logged in")
	return profile, nil
}

// sessionCookie joins every Set-Cookie pair into a single Cookie header value.
func sessionCookie(h http.Header) string {
	resp := http.Response{Header: h}
	var pairs []string
	for _, ck := range resp.Cookies() {
		pairs = append(pairs, ck.Name+"="+ck.Value)
	}
	return strings.Join(pairs, "; ")
}
