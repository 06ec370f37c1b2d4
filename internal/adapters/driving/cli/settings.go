package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/services"
)

var errNoSettings = errors.New("settings service not configured")

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change configuration",
	Long: `Show the model, embedding, index, chat and server configuration.

Subcommands change single keys, restore defaults, or walk through provider setup.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting by its dotted key. 'coursemate settings keys' lists them.

Examples:
  coursemate settings set llm.max_tokens 1200
  coursemate settings set index.backend qdrant
  coursemate settings set index.chunk_strategy sentence`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the settable keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, k := range services.SettingKeys() {
			cmd.Println(k)
		}
		return nil
	},
}

var settingsResetAll bool

var settingsResetCmd = &cobra.Command{
	Use:   "reset [key]",
	Short: "Restore a setting to its default",
	Long: `Remove a stored setting so its default applies again.
Pass --all instead of a key to clear every stored setting, API keys included.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsReset,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Set up the model and embedding providers interactively",
	RunE:  runSettingsWizard,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Choose the model that answers questions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return errNoSettings
		}
		return promptProvider(cmd, bufio.NewReader(cmd.InOrStdin()), llmPrompt())
	},
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Choose the embedding model used for semantic search",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return errNoSettings
		}
		return promptProvider(cmd, bufio.NewReader(cmd.InOrStdin()), embeddingPrompt())
	},
}

func init() {
	settingsResetCmd.Flags().BoolVar(&settingsResetAll, "all", false, "reset every setting")
	settingsCmd.AddCommand(
		settingsShowCmd,
		settingsSetCmd,
		settingsKeysCmd,
		settingsResetCmd,
		settingsWizardCmd,
		settingsLLMCmd,
		settingsEmbeddingCmd,
	)
	rootCmd.AddCommand(settingsCmd)
}

// section prints one "[Name]" block of aligned label/value rows.
type section struct {
	name string
	rows [][2]string
}

func (s *section) add(label, value string) {
	s.rows = append(s.rows, [2]string{label, value})
}

func (s *section) addIf(cond bool, label, value string) {
	if cond {
		s.add(label, value)
	}
}

func (s *section) write(w io.Writer) {
	fmt.Fprintf(w, "[%s]\n", s.name)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range s.rows {
		fmt.Fprintf(tw, "  %s\t%s\n", r[0], r[1])
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	st, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	llm := &section{name: "LLM"}
	llm.add("Provider", st.LLM.Provider.Description())
	llm.add("Model", st.LLM.Model)
	llm.addIf(st.LLM.Provider.IsLocal(), "Base URL", st.LLM.BaseURL)
	llm.addIf(st.LLM.Provider.RequiresAPIKey(), "API key", describeAPIKey(st.LLM.Provider, st.LLM.APIKey))
	llm.add("Max tokens", strconv.Itoa(st.LLM.MaxTokens))
	llm.add("Temperature", strconv.FormatFloat(st.LLM.Temperature, 'g', -1, 64))
	llm.addIf(st.LLM.RequestsPerSecond > 0, "Requests/sec", strconv.FormatFloat(st.LLM.RequestsPerSecond, 'g', -1, 64))
	llm.add("Status", configuredText(st.LLM.IsConfigured()))

	emb := &section{name: "Embedding"}
	emb.add("Provider", st.Embedding.Provider.Description())
	emb.add("Model", st.Embedding.Model)
	emb.addIf(st.Embedding.Provider.IsLocal(), "Base URL", st.Embedding.BaseURL)
	emb.addIf(st.Embedding.Provider.RequiresAPIKey(), "API key", describeAPIKey(st.Embedding.Provider, st.Embedding.APIKey))
	emb.add("Status", configuredText(st.Embedding.IsConfigured()))

	idx := &section{name: "Index"}
	idx.add("Backend", st.Index.Backend.String())
	idx.addIf(st.Index.Backend == domain.IndexBackendQdrant, "Qdrant", st.Index.QdrantAddr)
	idx.add("Max results", strconv.Itoa(st.Index.MaxResults))
	idx.add("Chunking", fmt.Sprintf("%s, size %d (overlap %d)",
		st.Index.ChunkStrategy, st.Index.ChunkSize, st.Index.ChunkOverlap))

	chat := &section{name: "Chat"}
	chat.add("Max history", strconv.Itoa(st.Chat.MaxHistory))

	srv := &section{name: "Server"}
	srv.add("Port", strconv.Itoa(st.Server.Port))
	srv.addIf(st.Server.CORSOrigin != "", "CORS origin", st.Server.CORSOrigin)
	srv.addIf(st.Server.StaticDir != "", "Static dir", st.Server.StaticDir)
	srv.addIf(st.Server.RequestsPerSecond > 0, "Requests/sec", strconv.FormatFloat(st.Server.RequestsPerSecond, 'g', -1, 64))

	// cmd.Print* writes to OutOrStderr, so the sections go there too.
	out := cmd.OutOrStderr()
	for _, s := range []*section{llm, emb, idx, chat, srv} {
		s.write(out)
	}

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'coursemate settings wizard' to fix it.")
		return nil
	}
	cmd.Println("Configuration is valid.")
	return nil
}

func describeAPIKey(p domain.AIProvider, key string) string {
	switch {
	case key != "":
		return maskAPIKey(key)
	case p.APIKeyEnv() != "" && os.Getenv(p.APIKeyEnv()) != "":
		return "(from " + p.APIKeyEnv() + ")"
	default:
		return "(not set)"
	}
}

func configuredText(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	if strings.HasSuffix(key, ".api_key") {
		value = maskAPIKey(value)
	}
	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func runSettingsReset(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	switch {
	case settingsResetAll && len(args) > 0:
		return errors.New("pass a key or --all, not both")
	case settingsResetAll:
		if err := settingsService.Reset(""); err != nil {
			return fmt.Errorf("failed to reset settings: %w", err)
		}
		cmd.Println("All settings restored to defaults.")
		return nil
	case len(args) == 0:
		return errors.New("a key or --all is required")
	}

	if err := settingsService.Reset(args[0]); err != nil {
		return fmt.Errorf("failed to reset %s: %w", args[0], err)
	}
	cmd.Printf("%s restored to default.\n", args[0])
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Coursemate setup")
	cmd.Println()
	cmd.Println("1/2  Language model")
	if err := promptProvider(cmd, reader, llmPrompt()); err != nil {
		return err
	}

	cmd.Println("2/2  Embeddings")
	cmd.Println("Without embeddings, course content is searched by keyword only.")
	cmd.Print("Configure embeddings? [Y/n]: ")
	if answer := strings.ToLower(readLine(reader)); answer == "n" || answer == "no" {
		cmd.Println("Skipped.")
		cmd.Println()
	} else if err := promptProvider(cmd, reader, embeddingPrompt()); err != nil {
		return err
	}

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		return nil
	}
	cmd.Println("All settings are valid and saved.")
	return nil
}

// providerPrompt describes one provider choice: the options offered, the
// default model per provider, and how the choice is stored and checked.
type providerPrompt struct {
	kind      string
	providers []domain.AIProvider
	defaults  map[domain.AIProvider]string
	apply     func(p domain.AIProvider, model, apiKey string) error
	validate  func() error
}

func llmPrompt() providerPrompt {
	return providerPrompt{
		kind:      "LLM",
		providers: domain.AllLLMProviders(),
		defaults:  domain.DefaultLLMModels(),
		apply:     settingsService.SetLLMProvider,
		validate:  settingsService.ValidateLLMConfig,
	}
}

func embeddingPrompt() providerPrompt {
	return providerPrompt{
		kind:      "embedding",
		providers: domain.AllEmbeddingProviders(),
		defaults:  domain.DefaultEmbeddingModels(),
		apply:     settingsService.SetEmbeddingProvider,
		validate:  settingsService.ValidateEmbeddingConfig,
	}
}

// promptProvider asks for a provider, a model and, when needed, an API key,
// stores them, and pings the provider.
func promptProvider(cmd *cobra.Command, reader *bufio.Reader, p providerPrompt) error {
	cmd.Printf("Select %s provider\n", p.kind)
	for i, prov := range p.providers {
		cmd.Printf("  %d. %s\n", i+1, prov.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	provider := p.providers[parseChoice(readLine(reader), len(p.providers), 1)-1]

	model := p.defaults[provider]
	cmd.Printf("Enter model name [%s]: ", model)
	if typed := readLine(reader); typed != "" {
		model = typed
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if domain.ResolveAPIKey(provider, apiKey) == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := p.apply(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", p.kind, err)
	}

	cmd.Print("Validating configuration... ")
	if err := p.validate(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("%s configuration validation failed: %w", p.kind, err)
	}
	cmd.Println("OK")
	cmd.Printf("%s provider configured: %s (%s)\n\n", p.kind, provider.Description(), model)
	return nil
}

//nolint:errcheck // a short read is treated as an empty answer
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// parseChoice returns the 1-based choice in input, or def when input is
// empty or out of range.
func parseChoice(input string, n, def int) int {
	v, err := strconv.Atoi(input)
	if err != nil || v < 1 || v > n {
		return def
	}
	return v
}

// readPassword reads a secret without echo when in is a terminal,
// otherwise it reads the next line from reader.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if secret, err := term.ReadPassword(int(f.Fd())); err == nil {
			return string(secret)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
