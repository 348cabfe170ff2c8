package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nakachan-ing/fieldsync-cli/internal/tasksync"
)

// explain turns client errors into the message shown to the engineer.
func explain(err error) string {
	var (
		validation *tasksync.ValidationError
		locked     *tasksync.CompletionLockedError
		transition *tasksync.InvalidTransitionError
		loginErr   *tasksync.LoginError
		fetchErr   *tasksync.FetchError
		updateErr  *tasksync.UpdateError
	)

	switch {
	case errors.As(err, &locked):
		return fmt.Sprintf("🔒 %s", locked.Error())
	case errors.As(err, &transition):
		return fmt.Sprintf("❌ Task %s is already %s and cannot go back to %s", transition.TaskID, transition.From, transition.To)
	case errors.As(err, &validation):
		return fmt.Sprintf("❌ %s", validation.Error())
	case errors.As(err, &loginErr):
		if loginErr.StatusCode == http.StatusUnauthorized {
			return "❌ Login failed: invalid username or password"
		}
		return fmt.Sprintf("❌ %s", loginErr.Error())
	case errors.As(err, &fetchErr):
		if fetchErr.StatusCode == http.StatusUnauthorized || fetchErr.StatusCode == http.StatusForbidden {
			return "❌ Session expired or missing. Run `fieldsync login` again"
		}
		return fmt.Sprintf("❌ %s", fetchErr.Error())
	case errors.As(err, &updateErr):
		return fmt.Sprintf("❌ %s", updateErr.Error())
	}

	msg := err.Error()
	if strings.HasPrefix(msg, "❌") || strings.HasPrefix(msg, "⚠️") {
		return msg
	}
	return "❌ " + msg
}
