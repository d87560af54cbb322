package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
)

var (
	coursesJSON    bool
	coursesOptions bool
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List courses with uploaded documents",
	RunE:  runCourses,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE:  runStats,
}

func init() {
	coursesCmd.Flags().BoolVar(&coursesJSON, "json", false, "output as JSON")
	coursesCmd.Flags().BoolVar(&coursesOptions, "options", false, "list course selector choices (AUTO, courses, MISC)")
	rootCmd.AddCommand(coursesCmd)
	rootCmd.AddCommand(statsCmd)
}

func runCourses(cmd *cobra.Command, _ []string) error {
	if err := requireLibrary(); err != nil {
		return err
	}

	courses, err := libraryService.ListCourses(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list courses: %w", err)
	}
	if coursesOptions {
		courses = domain.CourseOptions(courses)
	}

	if coursesJSON {
		data, err := json.Marshal(courses)
		if err != nil {
			return fmt.Errorf("failed to marshal courses: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(courses) == 0 {
		cmd.Println("No courses yet. Upload documents with 'coursemate upload'.")
		return nil
	}
	for _, c := range courses {
		cmd.Println(c)
	}
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	if err := requireLibrary(); err != nil {
		return err
	}

	stats, err := libraryService.Stats(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	cmd.Println("Index Statistics")
	cmd.Println("================")
	cmd.Printf("  Chunks:  %d\n", stats.TotalChunks)
	cmd.Printf("  Courses: %d\n", len(stats.Courses))
	for _, c := range stats.Courses {
		cmd.Printf("    - %s\n", c)
	}
	return nil
}
