// Package cli provides the coursemate command line interface.
package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driving"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/logger"
)

// version is set at build time.
var version = "dev"

// Services wired in by the composition root. Commands check for nil so
// that a command whose dependency failed to start reports it clearly.
var (
	assistantService driving.AssistantService
	ingestService    driving.IngestService
	libraryService   driving.LibraryService
	settingsService  driving.SettingsService
)

// Services groups the driving ports the commands use.
type Services struct {
	Assistant driving.AssistantService
	Ingest    driving.IngestService
	Library   driving.LibraryService
	Settings  driving.SettingsService
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "coursemate",
	Short: "Course-aware study assistant",
	Long: `coursemate answers questions from your own course materials.

Upload lecture notes, syllabi, assignments and exams into per-course
collections, then ask questions. Answers are grounded in the uploaded
documents and cite the file and page they came from.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print diagnostic logs to stderr")
}

// SetServices installs the services used by every command.
func SetServices(s Services) {
	assistantService = s.Assistant
	ingestService = s.Ingest
	libraryService = s.Library
	settingsService = s.Settings
}

// SetVersion sets the version reported by 'coursemate version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// commandContext returns the command's context, falling back to Background
// for commands executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func requireAssistant() error {
	if assistantService == nil {
		return errors.New("assistant service not configured")
	}
	return nil
}

func requireIngest() error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	return nil
}

func requireLibrary() error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}
	return nil
}

func requireSettings() error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return nil
}

// formatTime renders upload timestamps in local time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
