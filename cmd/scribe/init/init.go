// Package initcmder provides the init command for initializing a local
// .scribe directory with a config.toml in the current working directory.
package initcmder

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/cliui"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/config"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/dotdir"
)

// remoteTimeout bounds fetching a remote preset.
const remoteTimeout = 10 * time.Second

const initLongDesc string = `Initialize a new .scribe/ directory in the current working directory.

Creates a local .scribe/ directory holding config.toml, which takes
precedence over ~/.scribe/. An existing config.toml is left untouched.

--preset selects a provider preset (echo, openai, anthropic, gemini) or the
http(s) URL of a config.toml to download.

Examples:
  scribe init
  scribe init --preset openai
  scribe init --preset https://example.com/scribe/config.toml`

const initShortDesc string = "Initialize a local .scribe/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.Context(), cmd.OutOrStdout(), preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "Provider preset name or URL of a config.toml")

	return cmd
}

func runInit(ctx context.Context, w io.Writer, preset string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := resolvePreset(ctx, preset)
	if err != nil {
		return err
	}

	dir, existed, err := dotdir.NewManager().Init(cwd)
	if err != nil {
		return err
	}

	if existed {
		if _, err := os.Stat(filepath.Join(dir, "config.toml")); err == nil {
			fmt.Fprintf(w, "%s Already initialized: %s\n", cliui.SuccessMark, dir)
			return nil
		}
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s Initialized %s %s\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(dir),
		cliui.DimStyle.Render("(provider: "+cfg.Completion.Provider+")"),
	)
	return nil
}

func resolvePreset(ctx context.Context, preset string) (*config.Config, error) {
	switch {
	case preset == "":
		return config.NewDefaultConfig(), nil
	case strings.HasPrefix(preset, "http://"), strings.HasPrefix(preset, "https://"):
		return fetchPreset(ctx, preset)
	default:
		return config.PresetConfig(preset)
	}
}

func fetchPreset(ctx context.Context, url string) (*config.Config, error) {
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating preset request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching preset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching preset: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading preset: %w", err)
	}

	return config.ParseConfigTOML(data)
}
