package cli

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/services"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change configuration",
	Long: `Show and change the AI providers, retrieval tuning and storage backend.

Settings live in ~/.coursemate/config.toml. Any key can also be set with an
environment variable named COURSEMATE_<SECTION>_<KEY>.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Choose the embedding provider",
	Long:  `Pick the provider that turns chunks and questions into vectors.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Choose the answering model",
	Long:  `Pick the language model that writes grounded answers.`,
	RunE:  runSettingsLLM,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long:  `Set one dotted key, e.g. 'coursemate settings set retrieval.top_k 8'. Run 'settings keys' for the full list.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Run: func(cmd *cobra.Command, _ []string) {
		for _, k := range services.ConfigKeys() {
			cmd.Println(k)
		}
	},
}

// settingsInput is where the interactive commands read answers from.
var settingsInput io.Reader = os.Stdin

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

// sheet prints "[Section]" headers followed by indented "Label: value" rows.
type sheet struct{ w io.Writer }

func (p sheet) section(name string) { fmt.Fprintf(p.w, "\n[%s]\n", name) }

func (p sheet) row(label string, format string, args ...any) {
	fmt.Fprintf(p.w, "  %s: %s\n", label, fmt.Sprintf(format, args...))
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	cur, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	p := sheet{cmd.OutOrStderr()}
	cmd.Println("Current Settings")

	e := cur.Embedding
	p.section("Embedding")
	p.row("Provider", "%s", e.Provider.Description())
	p.row("Model", "%s", e.Model)
	providerRows(p, e.Provider, e.BaseURL, e.APIKey)
	p.row("Status", "%s", configuredStatus(e.IsConfigured()))

	l := cur.LLM
	p.section("LLM")
	if l.Provider == "" {
		p.row("Provider", "(not set)")
	} else {
		p.row("Provider", "%s", l.Provider.Description())
		p.row("Model", "%s", l.Model)
	}
	providerRows(p, l.Provider, l.BaseURL, l.APIKey)
	p.row("Temperature", "%.2f", l.Temperature)
	p.row("Max tokens", "%d", l.MaxTokens)
	p.row("Status", "%s", configuredStatus(l.IsConfigured()))

	r := cur.Retrieval
	p.section("Retrieval")
	p.row("Chunk size", "%d (overlap %d)", r.ChunkSize, r.ChunkOverlap)
	p.row("Top K", "%d", r.TopK)
	p.row("Similarity threshold", "%.2f", r.SimilarityThreshold)
	p.row("History turns", "%d", r.HistoryTurns)

	p.section("Store")
	p.row("Backend", "%s", cur.Store.Backend)
	if cur.Store.DataDir != "" {
		p.row("Data dir", "%s", cur.Store.DataDir)
	}
	if cur.Store.PostgresDSN != "" {
		p.row("Postgres DSN", "(set)")
	}

	pv := cur.Providers
	p.section("Providers")
	p.row("Timeout", "%s", pv.Timeout)
	p.row("Stream timeout", "%s", pv.StreamTimeout)
	if pv.EmbedRatePerSecond > 0 {
		p.row("Embed rate", "%.1f/s (burst %d)", pv.EmbedRatePerSecond, pv.EmbedBurst)
	}
	p.row("Ingest workers", "%d", cur.Ingest.Workers)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'coursemate settings llm' or 'coursemate settings embedding' to fix it.")
		return nil
	}
	cmd.Println("Configuration is valid.")
	return nil
}

func providerRows(p sheet, provider domain.AIProvider, baseURL, apiKey string) {
	if baseURL != "" {
		p.row("Base URL", "%s", baseURL)
	}
	if provider.RequiresAPIKey() {
		p.row("API Key", "%s", apiKeyStatus(apiKey))
	}
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	return configureProvider(cmd, bufio.NewReader(settingsInput), providerPrompt{
		title:     "Select Embedding Provider",
		providers: domain.AllEmbeddingProviders(),
		defaults:  domain.DefaultEmbeddingModels(),
		set:       settingsService.SetEmbeddingProvider,
		validate:  settingsService.ValidateEmbeddingConfig,
		kind:      "Embedding",
	})
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	return configureProvider(cmd, bufio.NewReader(settingsInput), providerPrompt{
		title:     "Select LLM Provider",
		providers: domain.AllLLMProviders(),
		defaults:  domain.DefaultLLMModels(),
		set:       settingsService.SetLLMProvider,
		validate:  settingsService.ValidateLLMConfig,
		kind:      "LLM",
	})
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

// providerPrompt describes one interactive provider setup flow.
type providerPrompt struct {
	title     string
	kind      string
	providers []domain.AIProvider
	defaults  map[domain.AIProvider]string
	set       func(provider domain.AIProvider, model, apiKey string) error
	validate  func() error
}

func configureProvider(cmd *cobra.Command, in *bufio.Reader, p providerPrompt) error {
	cmd.Println(p.title)
	for i, provider := range p.providers {
		cmd.Printf("  %d. %s\n", i+1, provider.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	chosen := p.providers[parseChoice(readLine(in), len(p.providers), 1)-1]

	def := p.defaults[chosen]
	cmd.Printf("Enter model name [%s]: ", def)
	model := cmp.Or(readLine(in), def)

	var apiKey string
	if chosen.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(in)
		cmd.Println()
		if apiKey == "" {
			return fmt.Errorf("API key is required for %s", chosen)
		}
	}

	if err := p.set(chosen, model, apiKey); err != nil {
		return fmt.Errorf("saving %s provider: %w", strings.ToLower(p.kind), err)
	}

	cmd.Print("Validating configuration... ")
	if err := p.validate(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("%s configuration validation failed: %w", p.kind, err)
	}
	cmd.Println("OK")
	cmd.Printf("%s provider configured: %s (%s)\n", p.kind, chosen.Description(), model)
	return nil
}

// readLine returns "" at EOF so piped input with too few lines takes the
// defaults.
func readLine(in *bufio.Reader) string {
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

// parseChoice reads a 1-based menu index, falling back to def.
func parseChoice(input string, n, def int) int {
	if v, err := strconv.Atoi(input); err == nil && v >= 1 && v <= n {
		return v
	}
	return def
}

// readPassword reads without echo from a terminal and falls back to a
// plain line read otherwise.
func readPassword(reader *bufio.Reader) string {
	if f, ok := settingsInput.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if password, err := term.ReadPassword(int(f.Fd())); err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func apiKeyStatus(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

// maskAPIKey keeps four characters at each end of keys long enough to spare
// them.
func maskAPIKey(key string) string {
	const keep = 4
	if len(key) <= 2*keep {
		return "****"
	}
	return key[:keep] + "..." + key[len(key)-keep:]
}
