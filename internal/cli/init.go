package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/andywolf/ytcomments/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ConfigFilename is the file written by init and read by the root command.
const ConfigFilename = ".ytcomments.yaml"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Create .ytcomments.yaml in the current directory with the default settings.

The API key is not written unless --api-key is given; prefer --api-key-secret
or the YTCOMMENTS_API_KEY environment variable.

Example:
  ytcomments init
  ytcomments init --api-key-secret projects/my-project/secrets/youtube-api-key --format csv`,
	Args: cobra.NoArgs,
	RunE: initProject,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("api-key", "", "YouTube Data API key to store in the file")
	initCmd.Flags().String("api-key-secret", "", "Secret Manager path holding the API key")
	initCmd.Flags().String("format", config.DefaultSaveFormat, "Output format (json or csv)")
	initCmd.Flags().Bool("include-replies", false, "Fetch replies by default")
	initCmd.Flags().Bool("force", false, "Overwrite existing config")
}

type projectConfig struct {
	APIKey           string   `yaml:"api_key"`
	APIKeySecret     string   `yaml:"api_key_secret,omitempty"`
	Part             []string `yaml:"part"`
	MaxResults       int      `yaml:"max_results"`
	Order            string   `yaml:"order"`
	IncludeReplies   bool     `yaml:"include_replies"`
	SaveFormat       string   `yaml:"save_format"`
	OutputDir        string   `yaml:"output_dir"`
	MaxPages         int      `yaml:"max_pages"`
	ReplyConcurrency int      `yaml:"reply_concurrency"`
	StripMarkup      bool     `yaml:"strip_markup"`
	RequestTimeout   string   `yaml:"request_timeout"`
	Logging          struct {
		Format     string `yaml:"format"`
		GCPProject string `yaml:"gcp_project,omitempty"`
		LogName    string `yaml:"log_name"`
	} `yaml:"logging"`
}

func defaultProjectConfig() projectConfig {
	cfg := projectConfig{
		Part:             []string{"snippet"},
		MaxResults:       config.DefaultMaxResults,
		Order:            config.DefaultOrder,
		SaveFormat:       config.DefaultSaveFormat,
		OutputDir:        config.DefaultOutputDir,
		ReplyConcurrency: 1,
		RequestTimeout:   config.DefaultRequestTimeout,
	}
	cfg.Logging.Format = config.DefaultLogFormat
	cfg.Logging.LogName = config.DefaultLogName
	return cfg
}

func initProject(cmd *cobra.Command, args []string) error {
	cfg := defaultProjectConfig()

	// Get values from flags or defaults
	cfg.APIKey, _ = cmd.Flags().GetString("api-key")
	cfg.APIKeySecret, _ = cmd.Flags().GetString("api-key-secret")
	cfg.SaveFormat, _ = cmd.Flags().GetString("format")
	cfg.IncludeReplies, _ = cmd.Flags().GetBool("include-replies")
	force, _ := cmd.Flags().GetBool("force")

	configPath, err := writeProjectConfig(".", cfg, force)
	if err != nil {
		return err
	}

	printNextSteps(cmd.OutOrStdout(), configPath, cfg)
	return nil
}

func writeProjectConfig(dir string, cfg projectConfig, force bool) (string, error) {
	configPath := filepath.Join(dir, ConfigFilename)

	if _, err := os.Stat(configPath); err == nil && !force {
		return "", fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	header := `# ytcomments configuration
# Every key can also be set with a YTCOMMENTS_<KEY> environment variable or a flag.

`

	// 0600: the file may hold an API key
	if err := os.WriteFile(configPath, append([]byte(header), data...), 0600); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return configPath, nil
}

func printNextSteps(w io.Writer, configPath string, cfg projectConfig) {
	fmt.Fprintf(w, "Created %s\n\n", configPath)
	fmt.Fprintln(w, "Next steps:")
	if cfg.APIKey == "" && cfg.APIKeySecret == "" {
		fmt.Fprintln(w, "  1. Set api_key, api_key_secret or YTCOMMENTS_API_KEY")
	} else {
		fmt.Fprintln(w, "  1. Review the generated settings")
	}
	fmt.Fprintln(w, "  2. Run 'ytcomments <videoId>' to export comments")
}
