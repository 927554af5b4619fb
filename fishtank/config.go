package main

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	mrand "math/rand"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/libklein/llm-fishtank/fishtank/agent"
	"github.com/libklein/llm-fishtank/fishtank/crossclues"
	"github.com/libklein/llm-fishtank/fishtank/engine"
	"github.com/libklein/llm-fishtank/fishtank/llm"
	"github.com/libklein/llm-fishtank/fishtank/words"
)

type Config struct {
	endpoint     string
	apiKey       string
	model        string
	temperature  float64
	rows         int
	cols         int
	wordlistFile string
	promptsFile  string
	maxTurns     int
	seed         int64
	timeout      time.Duration
	listen       string
	noColor      bool
	verbose      bool
}

// ConfigError is anything wrong with the invocation, reported before a game
// is created.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func configErr(field string, err error) error { return &ConfigError{Field: field, Err: err} }

func (c *Config) validate(personas []string) error {
	if len(personas) == 0 {
		return configErr("personas", crossclues.ErrNoPersonas)
	}
	for _, p := range personas {
		if strings.TrimSpace(p) == "" {
			return configErr("personas", errors.New("persona names must not be blank"))
		}
	}
	if c.rows < 1 || c.rows > engine.MaxRows {
		return configErr("number-of-rows", fmt.Errorf("must be between 1 and %d inclusive: %d", engine.MaxRows, c.rows))
	}
	if c.cols < 1 {
		return configErr("number-of-cols", fmt.Errorf("must be at least 1: %d", c.cols))
	}
	if c.maxTurns < 1 {
		return configErr("max-turns", fmt.Errorf("must be at least 1: %d", c.maxTurns))
	}
	if c.temperature < 0 || c.temperature > 2 {
		return configErr("temperature", fmt.Errorf("must be between 0 and 2: %g", c.temperature))
	}
	if c.timeout < 0 {
		return configErr("timeout", fmt.Errorf("must not be negative: %s", c.timeout))
	}
	return nil
}

// setup is everything a game needs, resolved from Config.
type setup struct {
	llm      llm.Config
	prompts  agent.Prompts
	grid     *engine.Grid
	seed     int64
	rng      *mrand.Rand
	personas []string
}

func (c *Config) build(personas []string) (*setup, error) {
	if err := c.validate(personas); err != nil {
		return nil, err
	}

	lc, err := llm.ResolveConfig(c.endpoint, c.apiKey, c.model)
	if err != nil {
		return nil, configErr("llm", err)
	}
	lc.Temperature = c.temperature
	lc.Timeout = c.timeout
	lc.Debug = c.verbose

	prompts := agent.DefaultPrompts()
	if c.promptsFile != "" {
		if prompts, err = agent.LoadPrompts(c.promptsFile); err != nil {
			return nil, configErr("prompts", err)
		}
	}

	list := words.Default()
	if c.wordlistFile != "" {
		if list, err = words.Load(c.wordlistFile); err != nil {
			return nil, configErr("wordlist-file", err)
		}
	}

	seed := c.seed
	if seed == 0 {
		seed = secureSeed()
	}
	rng := mrand.New(mrand.NewSource(seed))

	rowWords, colWords, err := words.Axes(rng, list, c.rows, c.cols)
	if err != nil {
		return nil, configErr("wordlist-file", err)
	}
	grid, err := engine.NewGrid(rowWords, colWords)
	if err != nil {
		return nil, configErr("grid", err)
	}

	return &setup{
		llm:      lc,
		prompts:  prompts,
		grid:     grid,
		seed:     seed,
		rng:      rng,
		personas: personas,
	}, nil
}

func secureSeed() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err == nil {
		return int64(binary.LittleEndian.Uint64(b[:]) ^ uint64(time.Now().UnixNano()) ^ uint64(os.Getpid()))
	}
	return time.Now().UnixNano() ^ 0x5A5A5A5A5A5A5A5A
}

// bindEnv copies environment values into flags the user did not set.
func bindEnv(fs *pflag.FlagSet, v *viper.Viper) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func newCmd(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "fishtank",
		Short:         "Watch language models play party games against each other.",
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	clues := &cobra.Command{
		Use:   "cross-clues",
		Short: "The cooperative Cross Clues grid word game.",
	}
	clues.AddCommand(newPlayCmd(cfg))
	root.AddCommand(clues)

	root.CompletionOptions.HiddenDefaultCmd = true
	root.SetHelpCommand(&cobra.Command{Hidden: true})
	root.SetVersionTemplate("fishtank v{{.Version}}\n")
	return root
}

func newPlayCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("FISHTANK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "play PERSONA...",
		Short: "Play one game of Cross Clues with the given personas.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg, args, cmd.OutOrStdout())
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&cfg.endpoint, "llm-endpoint", "", "OpenAI-compatible API base URL (env: LLM_ENDPOINT)")
	fs.StringVar(&cfg.apiKey, "api-key", "", "API key for the endpoint (env: API_KEY)")
	fs.StringVar(&cfg.model, "model", llm.DefaultModel, "model sent with every request (env: FISHTANK_MODEL)")
	fs.Float64Var(&cfg.temperature, "temperature", llm.DefaultTemperature, "sampling temperature (env: FISHTANK_TEMPERATURE)")
	fs.IntVar(&cfg.rows, "number-of-rows", 5, "number of rows in the word grid (env: FISHTANK_NUMBER_OF_ROWS)")
	fs.IntVar(&cfg.cols, "number-of-cols", 5, "number of columns in the word grid (env: FISHTANK_NUMBER_OF_COLS)")
	fs.StringVar(&cfg.wordlistFile, "wordlist-file", "", "path to a line-delimited wordlist (env: FISHTANK_WORDLIST_FILE)")
	fs.StringVar(&cfg.promptsFile, "prompts", "", "YAML file overriding the prompt templates (env: FISHTANK_PROMPTS)")
	fs.IntVar(&cfg.maxTurns, "max-turns", crossclues.DefaultMaxTurns, "discussion turns per round (env: FISHTANK_MAX_TURNS)")
	fs.Int64Var(&cfg.seed, "seed", 0, "random seed, 0 picks one (env: FISHTANK_SEED)")
	fs.DurationVar(&cfg.timeout, "timeout", llm.DefaultTimeout, "timeout for each completion request (env: FISHTANK_TIMEOUT)")
	fs.StringVar(&cfg.listen, "listen", "", "serve the spectator API on this address, e.g. :8080 (env: FISHTANK_LISTEN)")
	fs.BoolVar(&cfg.noColor, "no-color", false, "disable coloured output (env: FISHTANK_NO_COLOR)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "log discarded votes and raw completions (env: FISHTANK_VERBOSE)")

	_ = v.BindEnv("llm-endpoint", "LLM_ENDPOINT", "FISHTANK_LLM_ENDPOINT")
	_ = v.BindEnv("api-key", "API_KEY", "FISHTANK_API_KEY")
	bindEnv(fs, v)

	return cmd
}
