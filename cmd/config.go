/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mitchellh/mapstructure"
	"github.com/nakachan-ing/fieldsync-cli/internal/model"
	"github.com/nakachan-ing/fieldsync-cli/internal/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const saveAndExit = "Save & Exit"

var (
	configTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	configCursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	configErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	configHelpStyle   = lipgloss.NewStyle().Faint(true)
)

type Model struct {
	cursor     int
	fields     []string
	config     model.Config
	configPath string
	textInput  textinput.Model
	editMode   bool
	err        error
}

func newModel(config model.Config, configPath string) *Model {
	return &Model{
		cursor:     0,
		fields:     generateFieldList(),
		config:     config,
		configPath: configPath,
		textInput:  textinput.New(),
		editMode:   false,
	}
}

// Field names are the mapstructure keys of model.Config.
func generateFieldList() []string {
	return []string{
		"data_dir", "editor",
		"api.base_url", "api.user_agent", "api.update_route", "api.source", "api.timeout_seconds",
		"device.name",
		"log.env", "log.file",
		"watch.interval_minutes",
		"backup.enable", "backup.bucket", "backup.prefix", "backup.aws_profile", "backup.aws_region",
		saveAndExit,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editMode {
			switch msg.String() {
			case "enter":
				m.err = m.updateConfig()
				m.editMode = false
				m.textInput.Blur()
				return m, tea.ClearScreen
			case "esc":
				m.editMode = false
				m.textInput.Blur()
			default:
				var cmd tea.Cmd
				m.textInput, cmd = m.textInput.Update(msg)
				return m, cmd
			}
			return m, nil
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.fields)-1 {
				m.cursor++
			}
		case "enter":
			if m.fields[m.cursor] == saveAndExit {
				if err := store.ValidateConfig(m.config); err != nil {
					m.err = err
					return m, nil
				}
				if err := store.SaveConfig(m.config, m.configPath); err != nil {
					m.err = err
					return m, nil
				}
				return m, tea.Quit
			}
			m.editMode = true
			m.err = nil
			m.textInput.SetValue(m.getFieldValue(m.fields[m.cursor]))
			m.textInput.Focus()
		}
	}

	return m, nil
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(configTitleStyle.Render("📄 Configure fieldsync") + "\n\n")

	for i, field := range m.fields {
		cursor := "  "
		line := field
		if field != saveAndExit {
			line = fmt.Sprintf("%s: %s", field, m.getFieldValue(field))
		}
		if m.cursor == i {
			cursor = "👉"
			line = configCursorStyle.Render(line)
		}
		s.WriteString(fmt.Sprintf("%s %s\n", cursor, line))
	}

	if m.err != nil {
		s.WriteString("\n" + configErrorStyle.Render(m.err.Error()) + "\n")
	}

	if m.editMode {
		s.WriteString("\n✏️  Editing: " + m.fields[m.cursor] + "\n")
		s.WriteString(m.textInput.View() + "\n")
		s.WriteString(configHelpStyle.Render("(Enter to apply, ESC to cancel)") + "\n")
	} else {
		s.WriteString("\n" + configHelpStyle.Render("↑/↓ to move, Enter to edit, q to quit without saving") + "\n")
	}

	return s.String()
}

func (m Model) getFieldValue(field string) string {
	c := m.config
	switch field {
	case "data_dir":
		return c.DataDir
	case "editor":
		return c.Editor
	case "api.base_url":
		return c.API.BaseURL
	case "api.user_agent":
		return c.API.UserAgent
	case "api.update_route":
		return c.API.UpdateRoute
	case "api.source":
		return c.API.Source
	case "api.timeout_seconds":
		return strconv.Itoa(c.API.TimeoutSeconds)
	case "device.name":
		return c.Device.Name
	case "log.env":
		return c.Log.Env
	case "log.file":
		return c.Log.File
	case "watch.interval_minutes":
		return strconv.Itoa(c.Watch.IntervalMinutes)
	case "backup.enable":
		return strconv.FormatBool(c.Backup.Enable)
	case "backup.bucket":
		return c.Backup.Bucket
	case "backup.prefix":
		return c.Backup.Prefix
	case "backup.aws_profile":
		return c.Backup.AWSProfile
	case "backup.aws_region":
		return c.Backup.AWSRegion
	default:
		return "UNKNOWN"
	}
}

// updateConfig applies the edited value to the selected key. Numbers and
// booleans are converted from text by mapstructure.
func (m *Model) updateConfig() error {
	return setConfigValue(&m.config, m.fields[m.cursor], m.textInput.Value())
}

func setConfigValue(config *model.Config, key, value string) error {
	parts := strings.Split(key, ".")
	input := map[string]any{parts[len(parts)-1]: strings.TrimSpace(value)}
	for i := len(parts) - 2; i >= 0; i-- {
		input = map[string]any{parts[i]: input}
	}

	if err := mapstructure.WeakDecode(input, config); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configure config.yaml interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := configFilePath()
		if err != nil {
			return err
		}

		config, err := loadConfig()
		if err != nil {
			log.Printf("⚠️ Failed to load config, starting from defaults: %v", err)
			defaults := model.DefaultConfig()
			config = &defaults
		}

		if _, err := tea.NewProgram(newModel(*config, configPath), tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("❌ Error running TUI: %w", err)
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := configFilePath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), configPath)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config (file, defaults and environment)",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(config)
		if err != nil {
			return fmt.Errorf("❌ Failed to convert config to YAML: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func configFilePath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	path, err := store.GetConfigPath()
	if err != nil {
		return "", fmt.Errorf("❌ Failed to get config path: %w", err)
	}
	return path, nil
}

func init() {
	configCmd.AddCommand(configPathCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
