package cli

import (
	"github.com/spf13/cobra"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
)

var checkCourse string

var checkCmd = &cobra.Command{
	Use:   "check [question]",
	Short: "Check whether uploaded documents cover a question",
	Long: `Runs retrieval without calling the language model and reports how many
chunks clear the similarity threshold.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkCourse, "course", "c", domain.AutoCourseID, "course ID or AUTO")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	if err := requireAssistant(); err != nil {
		return err
	}

	report, err := assistantService.CheckRelevance(commandContext(cmd), args[0], checkCourse)
	if err != nil {
		return err
	}

	if !report.HasRelevantDocs {
		cmd.Println(report.Message)
		return nil
	}
	cmd.Printf("Found %d relevant chunk(s), top score %.2f\n", report.NumRelevant, report.TopScore)
	return nil
}
