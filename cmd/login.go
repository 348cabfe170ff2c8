/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/nakachan-ing/fieldsync-cli/internal/store"
	"github.com/nakachan-ing/fieldsync-cli/internal/tasksync"
	"github.com/spf13/cobra"
)

var loginPassword string
var loginPasswordStdin bool

var errPromptCancelled = errors.New("login cancelled")

// passwordModel is a one-field prompt that masks what is typed.
type passwordModel struct {
	input     textinput.Model
	submitted bool
}

func newPasswordModel(username string) passwordModel {
	ti := textinput.New()
	ti.Prompt = fmt.Sprintf("🔑 Password for %s: ", username)
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.Focus()
	return passwordModel{input: ti}
}

func (m passwordModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m passwordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.submitted = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m passwordModel) View() string {
	return m.input.View() + "\n"
}

func promptPassword(username string) (string, error) {
	final, err := tea.NewProgram(newPasswordModel(username)).Run()
	if err != nil {
		return "", fmt.Errorf("❌ Error running password prompt: %w", err)
	}
	m := final.(passwordModel)
	if !m.submitted {
		return "", errPromptCancelled
	}
	return m.input.Value(), nil
}

// readLine reads a single line, e.g. a password piped on stdin.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("❌ Failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func resolvePassword(username string) (string, error) {
	if loginPassword != "" {
		return loginPassword, nil
	}
	if !loginPasswordStdin && isatty.IsTerminal(os.Stdin.Fd()) {
		return promptPassword(username)
	}
	return readLine(os.Stdin)
}

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Sign in to the portal and download your tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		password, err := resolvePassword(args[0])
		if err != nil {
			return err
		}

		release, err := a.lock("login")
		if err != nil {
			return err
		}
		defer release()

		profile, err := a.client.Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		if err := store.SaveSession(a.config, a.client.Session()); err != nil {
			return err
		}

		fmt.Printf("✅ Logged in as %s (%s)\n", profile.Username, profile.Role)

		tasks, err := a.client.FetchTasks(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, explain(err))
			return nil
		}
		fmt.Printf("📋 %d tasks assigned to you\n", len(tasks))
		renderCounts(os.Stdout, tasksync.ComputeStatusCounts(tasks))
		return nil
	},
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the session and the cached tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		release, err := a.lock("logout")
		if err != nil {
			return err
		}
		defer release()

		// The listener mirrors the emptied list into the cache.
		a.client.Logout()
		if err := store.ClearSession(a.config); err != nil {
			return err
		}
		if err := a.cache.Clear(); err != nil {
			return err
		}
		fmt.Println("👋 Logged out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd)
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from stdin")
}
