package cli

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/andywolf/ytcomments/internal/config"
	"github.com/andywolf/ytcomments/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ErrNoVideoID is returned when the command is run without a video ID.
var ErrNoVideoID = errors.New("no videoId provided")

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ytcomments <videoId>",
	Short: "ytcomments - export YouTube comments to CSV or JSON",
	Long: `ytcomments fetches every top-level comment of a YouTube video through the
YouTube Data API v3, optionally joins each comment's replies, and writes the
result to <videoId>-comments.json or <videoId>-comments.csv.

Settings are read from .ytcomments.yaml in the working directory, from
YTCOMMENTS_* environment variables, and from flags.

Video IDs starting with "-" are accepted as-is; "ytcomments -- <videoId>"
works as well.

Example:
  ytcomments dQw4w9WgXcQ --include-replies --format csv`,
	Args:          requireVideoID,
	RunE:          runFetch,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return ExecuteArgs(os.Args[1:])
}

// ExecuteArgs runs the root command with args instead of os.Args.
func ExecuteArgs(args []string) error {
	rootCmd.SetArgs(escapeVideoID(rootCmd, args))
	return rootCmd.Execute()
}

// dashVideoID matches an 11-character video ID that starts with "-".
var dashVideoID = regexp.MustCompile(`^-[A-Za-z0-9_-]{10}$`)

// escapeVideoID moves a video ID that looks like a flag behind "--" so
// pflag leaves it alone. Tokens that are registered flags, flag values or
// follow a subcommand name are not touched.
func escapeVideoID(cmd *cobra.Command, args []string) []string {
	cmd.InitDefaultHelpFlag()
	cmd.InitDefaultVersionFlag()

	for i, a := range args {
		if a == "--" {
			return args
		}
		if i == 0 && isSubcommand(cmd, a) {
			return args
		}
		if !dashVideoID.MatchString(a) || isFlag(cmd, a) {
			continue
		}
		if i > 0 && takesValue(cmd, args[i-1]) {
			continue
		}
		out := make([]string, 0, len(args)+1)
		out = append(out, args[:i]...)
		out = append(out, args[i+1:]...)
		return append(out, "--", a)
	}
	return args
}

func isSubcommand(cmd *cobra.Command, name string) bool {
	for _, c := range cmd.Commands() {
		if c.Name() == name || c.HasAlias(name) {
			return true
		}
	}
	return false
}

// isFlag reports whether pflag would parse token as flags of cmd.
func isFlag(cmd *cobra.Command, token string) bool {
	flags := cmd.Flags()
	if strings.HasPrefix(token, "--") {
		name, _, _ := strings.Cut(token[2:], "=")
		return flags.Lookup(name) != nil
	}

	// Shorthands: the first one may take the rest as its value, otherwise
	// every character must be a boolean shorthand.
	for i, r := range token[1:] {
		f := flags.ShorthandLookup(string(r))
		if f == nil {
			return false
		}
		if f.NoOptDefVal == "" {
			return i == 0
		}
	}
	return true
}

// takesValue reports whether token is a flag that consumes the next argument.
func takesValue(cmd *cobra.Command, token string) bool {
	if !strings.HasPrefix(token, "-") || strings.Contains(token, "=") {
		return false
	}
	flags := cmd.Flags()
	if strings.HasPrefix(token, "--") {
		f := flags.Lookup(token[2:])
		return f != nil && f.NoOptDefVal == ""
	}
	if len(token) != 2 {
		return false
	}
	f := flags.ShorthandLookup(token[1:])
	return f != nil && f.NoOptDefVal == ""
}

func requireVideoID(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || args[0] == "" {
		return ErrNoVideoID
	}
	if len(args) > 1 {
		return fmt.Errorf("expected a single videoId, got %d arguments", len(args))
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)

	// Set version for --version flag
	rootCmd.Version = version.Short()
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .ytcomments.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	flags := rootCmd.Flags()
	flags.String("api-key", "", "YouTube Data API key")
	flags.String("api-key-secret", "", "Secret Manager path holding the API key (e.g. projects/p/secrets/youtube-key)")
	flags.StringSlice("part", []string{"snippet"}, "Resource parts to request (comma-separated)")
	flags.Int("max-results", config.DefaultMaxResults, "Comment threads per page (1-100)")
	flags.String("order", config.DefaultOrder, "Thread order (time or relevance)")
	flags.Bool("include-replies", false, "Fetch replies and attach them to their parent comments")
	flags.String("format", config.DefaultSaveFormat, "Output format (json or csv)")
	flags.String("output-dir", config.DefaultOutputDir, "Directory for the output file")
	flags.Int("max-pages", 0, "Stop after this many pages of threads (0 = no limit)")
	flags.Int("reply-concurrency", 1, "Reply listings fetched in parallel")
	flags.Bool("strip-markup", false, "Convert comment HTML to plain text")
	flags.String("request-timeout", config.DefaultRequestTimeout, "Timeout for each API request")
	flags.String("log-format", config.DefaultLogFormat, "Log format (text or json)")

	_ = viper.BindPFlag("api_key", flags.Lookup("api-key"))
	_ = viper.BindPFlag("api_key_secret", flags.Lookup("api-key-secret"))
	_ = viper.BindPFlag("part", flags.Lookup("part"))
	_ = viper.BindPFlag("max_results", flags.Lookup("max-results"))
	_ = viper.BindPFlag("order", flags.Lookup("order"))
	_ = viper.BindPFlag("include_replies", flags.Lookup("include-replies"))
	_ = viper.BindPFlag("save_format", flags.Lookup("format"))
	_ = viper.BindPFlag("output_dir", flags.Lookup("output-dir"))
	_ = viper.BindPFlag("max_pages", flags.Lookup("max-pages"))
	_ = viper.BindPFlag("reply_concurrency", flags.Lookup("reply-concurrency"))
	_ = viper.BindPFlag("strip_markup", flags.Lookup("strip-markup"))
	_ = viper.BindPFlag("request_timeout", flags.Lookup("request-timeout"))
	_ = viper.BindPFlag("logging.format", flags.Lookup("log-format"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error getting working directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(cwd)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".ytcomments")
	}

	viper.SetEnvPrefix("YTCOMMENTS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Keys without a flag must be registered for env lookups to reach Unmarshal.
	viper.SetDefault("logging.gcp_project", "")
	viper.SetDefault("logging.log_name", "")

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}
