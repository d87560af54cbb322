package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
)

var documentJSON bool

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage indexed documents",
	Long:  `List or delete the documents uploaded to a course.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list [course-id]",
	Short: "List documents in a course",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentList,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [course-id] [file]",
	Short: "Delete a document from a course",
	Long:  `Removes every chunk of the file from the course index.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentDelete,
}

func init() {
	documentListCmd.Flags().BoolVar(&documentJSON, "json", false, "output as JSON")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

type jsonDocument struct {
	CourseID   string `json:"course_id"`
	SourceFile string `json:"source_file"`
	DocType    string `json:"doc_type"`
	FileType   string `json:"file_type"`
	TotalPages int    `json:"total_pages"`
	ChunkCount int    `json:"chunk_count"`
	UploadedAt string `json:"uploaded_at"`
}

func runDocumentList(cmd *cobra.Command, args []string) error {
	if err := requireLibrary(); err != nil {
		return err
	}

	courseID := domain.SanitizeCourseID(args[0])
	docs, err := libraryService.ListDocuments(commandContext(cmd), courseID)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if documentJSON {
		out := make([]jsonDocument, 0, len(docs))
		for i := range docs {
			d := &docs[i]
			out = append(out, jsonDocument{
				CourseID:   d.CourseID,
				SourceFile: d.SourceFile,
				DocType:    string(d.DocType),
				FileType:   string(d.FileType),
				TotalPages: d.TotalPages,
				ChunkCount: d.ChunkCount,
				UploadedAt: d.UploadedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			})
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal documents: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(docs) == 0 {
		cmd.Printf("No documents found for course: %s\n", courseID)
		return nil
	}

	cmd.Printf("Documents in %s:\n\n", courseID)
	for i := range docs {
		d := &docs[i]
		cmd.Printf("  %s\n", d.SourceFile)
		cmd.Printf("    Type:     %s (%s)\n", d.DocType, d.FileType)
		cmd.Printf("    Pages:    %d\n", d.TotalPages)
		cmd.Printf("    Chunks:   %d\n", d.ChunkCount)
		cmd.Printf("    Uploaded: %s\n", formatTime(d.UploadedAt))
		cmd.Println()
	}
	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if err := requireLibrary(); err != nil {
		return err
	}

	courseID, file := domain.SanitizeCourseID(args[0]), args[1]
	deleted, err := libraryService.DeleteDocument(commandContext(cmd), courseID, file)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: %s not found in %s", domain.ErrNotFound, file, courseID)
	}
	cmd.Printf("Deleted %s from %s.\n", file, courseID)
	return nil
}
