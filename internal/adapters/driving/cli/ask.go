package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driving"
)

var (
	askCourse  string
	askDocType string
	askStream  bool
	askJSON    bool
	askNoCite  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your course materials",
	Long: `Answers a question from the uploaded documents and cites its sources.

With --course AUTO (the default) the course is detected from the question
when it names one, otherwise every course is searched. Answers stream to the
terminal as they are generated; use --stream=false for a single reply.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askCourse, "course", "c", domain.AutoCourseID, "course ID or AUTO")
	askCmd.Flags().StringVarP(&askDocType, "type", "t", "", "only use documents of this type")
	askCmd.Flags().BoolVar(&askStream, "stream", true, "stream the answer (default when writing to a terminal)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer and sources as JSON")
	askCmd.Flags().BoolVar(&askNoCite, "no-sources", false, "do not print the sources")
	rootCmd.AddCommand(askCmd)
}

// askJSONResult is the JSON shape of an answer.
type askJSONResult struct {
	Answer     string         `json:"answer"`
	Scope      string         `json:"scope,omitempty"`
	NumSources int            `json:"num_sources"`
	Sources    []jsonCitation `json:"sources"`
}

type jsonCitation struct {
	SourceFile string `json:"source_file"`
	PageNumber int    `json:"page_number"`
	DocType    string `json:"doc_type"`
	CourseID   string `json:"course_id"`
	Snippet    string `json:"snippet"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := requireAssistant(); err != nil {
		return err
	}
	opts, err := askOptions(askDocType)
	if err != nil {
		return err
	}

	session := assistantService.NewSession()
	session.SelectCourse(askCourse)
	ctx := commandContext(cmd)

	if askJSON || !streamOutput(cmd) {
		result, err := assistantService.Ask(ctx, session, args[0], opts)
		if err != nil {
			return err
		}
		if askJSON {
			return printAnswerJSON(cmd, result)
		}
		cmd.Println(result.Answer)
		printSources(cmd, result.Sources)
		return nil
	}

	events, err := assistantService.AskStream(ctx, session, args[0], opts)
	if err != nil {
		return err
	}
	var sources []domain.Citation
	for ev := range events {
		switch ev.Kind {
		case domain.EventSourcesReady:
			if ev.Scope != "" {
				cmd.PrintErrf("Searching %s\n\n", ev.Scope)
			}
		case domain.EventTextDelta:
			cmd.Print(ev.Text)
		case domain.EventDone:
			sources = ev.Sources
		case domain.EventError:
			cmd.Print(ev.Text)
		}
	}
	cmd.Println()
	printSources(cmd, sources)
	return nil
}

func askOptions(docType string) (driving.AskOptions, error) {
	if strings.TrimSpace(docType) == "" {
		return driving.AskOptions{}, nil
	}
	d, ok := domain.ParseDocType(docType)
	if !ok {
		return driving.AskOptions{}, fmt.Errorf("%w: unknown document type %q", domain.ErrInvalidInput, docType)
	}
	return driving.AskOptions{DocType: d}, nil
}

// streamOutput reports whether the answer should stream. An explicit
// --stream wins; otherwise only terminals get a stream.
func streamOutput(cmd *cobra.Command) bool {
	if cmd.Flags().Changed("stream") {
		return askStream
	}
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func printSources(cmd *cobra.Command, sources []domain.Citation) {
	if askNoCite || len(sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for i, c := range sources {
		cmd.Printf("  [%d] %s\n", i+1, c.Label())
	}
}

func printAnswerJSON(cmd *cobra.Command, result *domain.AnswerResult) error {
	out := askJSONResult{
		Answer:     result.Answer,
		Scope:      result.Scope,
		NumSources: result.NumSources,
		Sources:    make([]jsonCitation, 0, len(result.Sources)),
	}
	for _, c := range result.Sources {
		out.Sources = append(out.Sources, jsonCitation{
			SourceFile: c.SourceFile,
			PageNumber: c.PageNumber,
			DocType:    string(c.DocType),
			CourseID:   c.CourseID,
			Snippet:    c.Snippet,
		})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
