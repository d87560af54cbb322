package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
)

var (
	uploadCourse  string
	uploadDocType string
	uploadJSON    bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload [files...]",
	Short: "Upload course documents",
	Long: `Extracts, chunks and indexes PDF and text files into a course.

Re-uploading a file with the same name replaces its previous version.
A file that cannot be read is reported and the rest are still indexed.`,
	Example: `  coursemate upload --course CS101 --type syllabus syllabus.pdf
  coursemate upload -c "math 200" week*.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadCourse, "course", "c", "", "course ID, e.g. CS101 (required)")
	uploadCmd.Flags().StringVarP(&uploadDocType, "type", "t", string(domain.DocTypeMisc),
		"document type: "+docTypeList())
	uploadCmd.Flags().BoolVar(&uploadJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(uploadCmd)
}

// uploadJSONReport is the JSON shape of an upload report.
type uploadJSONReport struct {
	CourseID      string   `json:"course_id"`
	ChunksIndexed int      `json:"chunks_indexed"`
	FilesIndexed  []string `json:"files_indexed"`
	Errors        []string `json:"errors"`
}

func runUpload(cmd *cobra.Command, args []string) error {
	if err := requireIngest(); err != nil {
		return err
	}
	docType, ok := domain.ParseDocType(uploadDocType)
	if !ok {
		return fmt.Errorf("%w: unknown document type %q (use one of %s)", domain.ErrInvalidInput, uploadDocType, docTypeList())
	}

	files := make([]domain.UploadFile, 0, len(args))
	var readErrs []string
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			fe := &domain.FileError{Filename: filepath.Base(path), Err: err}
			readErrs = append(readErrs, fe.Error())
			continue
		}
		files = append(files, domain.UploadFile{Name: filepath.Base(path), Data: data})
	}

	report := &domain.IngestReport{CourseID: domain.SanitizeCourseID(uploadCourse), FilesIndexed: []string{}}
	if len(files) > 0 {
		var err error
		report, err = ingestService.Upload(commandContext(cmd), domain.UploadRequest{
			CourseID: uploadCourse,
			DocType:  docType,
			Files:    files,
		})
		if err != nil {
			return err
		}
	} else if err := domain.ValidateCourseID(uploadCourse); err != nil {
		return err
	}

	errs := append(readErrs, report.ErrorMessages()...)
	if uploadJSON {
		data, err := json.MarshalIndent(uploadJSONReport{
			CourseID:      report.CourseID,
			ChunksIndexed: report.ChunksIndexed,
			FilesIndexed:  report.FilesIndexed,
			Errors:        append([]string{}, errs...),
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
	} else {
		printUploadReport(cmd, report, errs)
	}

	if len(report.FilesIndexed) == 0 {
		return errors.New("no files were indexed")
	}
	return nil
}

func printUploadReport(cmd *cobra.Command, report *domain.IngestReport, errs []string) {
	if len(report.FilesIndexed) > 0 {
		cmd.Printf("✅ Indexed %d chunks from %d file(s) into %s\n",
			report.ChunksIndexed, len(report.FilesIndexed), report.CourseID)
		for _, name := range report.FilesIndexed {
			cmd.Printf("  • %s\n", name)
		}
	}
	if len(errs) > 0 {
		cmd.Println()
		cmd.Println("Some files could not be indexed:")
		for _, msg := range errs {
			cmd.Printf("  ✗ %s\n", msg)
		}
	}
}

func docTypeList() string {
	types := domain.AllDocTypes()
	names := make([]string, len(types))
	for i, d := range types {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}
