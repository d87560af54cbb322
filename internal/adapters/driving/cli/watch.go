package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/connectors/filesystem"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
)

var (
	watchCourse   string
	watchDocType  string
	watchDebounce time.Duration
	watchOnce     bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Keep a course in sync with a local folder",
	Long: `Uploads every PDF and text file under dir into the course, then keeps
watching. Created and modified files are reindexed once they have been quiet
for the debounce period; deleted files are removed from the course.

Files are indexed under their path relative to dir.`,
	Example: `  coursemate watch ~/notes/cs101 --course CS101 --type lecture
  coursemate watch . -c MATH200 --once`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchCourse, "course", "c", "", "course ID (required)")
	watchCmd.Flags().StringVarP(&watchDocType, "type", "t", string(domain.DocTypeMisc),
		"document type: "+docTypeList())
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", filesystem.DefaultDebounce, "quiet period before reindexing")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "sync the folder once and exit")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireIngest(); err != nil {
		return err
	}
	if err := requireLibrary(); err != nil {
		return err
	}
	docType, ok := domain.ParseDocType(watchDocType)
	if !ok {
		return fmt.Errorf("%w: unknown document type %q (use one of %s)", domain.ErrInvalidInput, watchDocType, docTypeList())
	}

	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	w := filesystem.New(dir, watchCourse, ingestService, libraryService,
		filesystem.WithDocType(docType),
		filesystem.WithDebounce(watchDebounce),
	)
	defer w.Close()

	ctx := commandContext(cmd)
	if watchOnce {
		if err := w.Validate(); err != nil {
			return err
		}
		report, err := w.Sync(ctx)
		if err != nil {
			return err
		}
		printUploadReport(cmd, report, report.ErrorMessages())
		return nil
	}

	cmd.PrintErrf("Watching %s for course %s (Ctrl+C to stop)\n", dir, domain.SanitizeCourseID(watchCourse))
	return w.Run(ctx, func(res filesystem.Result) {
		printWatchResult(cmd, res)
	})
}

func printWatchResult(cmd *cobra.Command, res filesystem.Result) {
	name := res.Change.Name
	switch {
	case res.Err != nil:
		cmd.Printf("  ✗ %s: %v\n", name, res.Err)
	case res.Change.Type == filesystem.ChangeDeleted:
		if res.Deleted {
			cmd.Printf("  - %s removed\n", name)
		}
	case res.Report != nil && name == ".":
		cmd.Printf("Synced %d file(s), %d chunks\n", len(res.Report.FilesIndexed), res.Report.ChunksIndexed)
		for _, msg := range res.Report.ErrorMessages() {
			cmd.Printf("  ✗ %s\n", msg)
		}
	case res.Report != nil:
		if res.Report.HasErrors() {
			for _, msg := range res.Report.ErrorMessages() {
				cmd.Printf("  ✗ %s\n", msg)
			}
			return
		}
		cmd.Printf("  + %s %s (%d chunks)\n", name, res.Change.Type, res.Report.ChunksIndexed)
	}
}
