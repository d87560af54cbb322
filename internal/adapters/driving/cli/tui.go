package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/adapters/driving/tui"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
)

var (
	chatCourse  string
	chatDocType string
)

// chatCmd represents the interactive chat command.
var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive study chat",
	Long: `Launch a terminal chat over your course materials.

The conversation keeps its history, so follow-up questions work. The course
selector starts at AUTO and can be cycled with Tab.

Controls:
  Enter     - Ask
  Tab       - Next course
  Ctrl+R    - New conversation
  Ctrl+O    - Browse documents
  Esc       - Back
  Ctrl+C    - Quit`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatCourse, "course", "c", domain.AutoCourseID, "initial course ID or AUTO")
	chatCmd.Flags().StringVarP(&chatDocType, "type", "t", "", "only use documents of this type")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	opts, err := askOptions(chatDocType)
	if err != nil {
		return err
	}

	app, err := tui.NewApp(tui.NewPorts(assistantService, libraryService))
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	app.WithContext(commandContext(cmd)).
		WithCourse(chatCourse).
		WithDocType(opts.DocType)

	if err := app.Run(); err != nil {
		return fmt.Errorf("chat error: %w", err)
	}
	return nil
}
