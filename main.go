package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ByteMirror/gitscrub/config"
	"github.com/ByteMirror/gitscrub/daemon"
	"github.com/ByteMirror/gitscrub/gitcfg"
	"github.com/ByteMirror/gitscrub/log"
	"github.com/ByteMirror/gitscrub/mcp"
	"github.com/ByteMirror/gitscrub/scrub"
	"github.com/ByteMirror/gitscrub/ui"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	version         = "1.0.0"
	dryRunFlag      bool
	interactiveFlag bool
	storeFlag       string
	gitconfigFlag   string
	copyFlag        bool
	stopGuardFlag   bool

	rootCmd = &cobra.Command{
		Use:   "gitscrub",
		Short: "gitscrub - reset the global git configuration to a known state",
		Long: `gitscrub unsets a fixed allow-list of global git configuration keys
(push, sendemail, http.sslverify, git-lfs filters, url insteadOf aliases),
installs a known identity, and prints the remaining global configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log.Initialize(false)
			defer log.Close()

			cfg := config.LoadConfig()
			store, err := buildStore(cfg)
			if err != nil {
				return err
			}
			scrubber := buildScrubber(cfg, store)

			if dryRunFlag {
				return printPlan(ctx, scrubber)
			}

			if interactiveFlag || (cfg.ConfirmBeforeRun && term.IsTerminal(int(os.Stdin.Fd()))) {
				report, err := ui.RunReview(ctx, scrubber)
				if err != nil {
					return err
				}
				if report == nil {
					// User backed out of the review.
					return nil
				}
				fmt.Print(report.Listing())
				return nil
			}

			report, err := scrubber.Run(ctx)
			if err != nil {
				return err
			}
			// Progress goes to stderr so stdout carries exactly the banner
			// and the listing.
			fmt.Fprint(os.Stderr, report.RenderOps())
			fmt.Print(report.Listing())
			return nil
		},
	}

	planCmd = &cobra.Command{
		Use:   "plan",
		Short: "Print the ordered operations a run would apply, without applying them",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			cfg := config.LoadConfig()
			store, err := buildStore(cfg)
			if err != nil {
				return err
			}
			return printPlan(cmd.Context(), buildScrubber(cfg, store))
		},
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Print the remaining global git configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			cfg := config.LoadConfig()
			store, err := buildStore(cfg)
			if err != nil {
				return err
			}
			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			report := &scrub.Report{Remaining: entries}
			listing := report.Listing()
			fmt.Print(listing)

			if copyFlag {
				if err := clipboard.WriteAll(listing); err != nil {
					return fmt.Errorf("failed to copy listing to clipboard: %w", err)
				}
				fmt.Fprintln(os.Stderr, "listing copied to clipboard")
			}
			return nil
		},
	}

	guardCmd = &cobra.Command{
		Use:   "guard",
		Short: "Watch the global gitconfig and re-apply the scrub when it drifts",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(true)
			defer log.Close()

			if stopGuardFlag {
				return daemon.StopGuard()
			}

			cfg := config.LoadConfig()
			store, err := buildStore(cfg)
			if err != nil {
				return err
			}
			scrubber := buildScrubber(cfg, store)

			watchPath := cfg.GitconfigPath
			if gitconfigFlag != "" {
				watchPath = gitconfigFlag
			}
			if watchPath == "" {
				watchPath, err = gitcfg.DefaultGitconfigPath()
				if err != nil {
					return err
				}
			}

			interval := time.Duration(cfg.GuardPollInterval) * time.Millisecond
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return daemon.RunGuard(ctx, scrubber, watchPath, interval)
		},
	}

	mcpCmd = &cobra.Command{
		Use:   "mcp",
		Short: "Serve the scrub operations over MCP stdio transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()
			mcp.SetLogger(log.InfoLog)

			cfg := config.LoadConfig()
			store, err := buildStore(cfg)
			if err != nil {
				return err
			}
			return mcp.NewScrubMCPServer(store, buildScrubber(cfg, store)).Serve()
		},
	}

	setIdentityCmd = &cobra.Command{
		Use:   "set-identity <email> <name>",
		Short: "Persist an identity override in the app config",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()
			return saveIdentity(args[0], args[1])
		},
	}

	debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "Print debug information like config paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()

			configDir, err := config.GetConfigDir()
			if err != nil {
				return fmt.Errorf("failed to get config directory: %w", err)
			}
			configJson, _ := json.MarshalIndent(cfg, "", "  ")

			fmt.Printf("Config: %s\n%s\n", filepath.Join(configDir, config.ConfigFileName), configJson)
			fmt.Printf("Debug logging: %v\n", log.IsDebugEnabled())
			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of gitscrub",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gitscrub version %s\n", version)
			fmt.Printf("https://github.com/ByteMirror/gitscrub/releases/tag/v%s\n", version)
		},
	}
)

// buildStore selects the store backend from config and flags.
func buildStore(cfg *config.Config) (gitcfg.Store, error) {
	backend := cfg.DefaultStore
	if storeFlag != "" {
		backend = storeFlag
	}
	path := cfg.GitconfigPath
	if gitconfigFlag != "" {
		path = gitconfigFlag
	}

	switch backend {
	case "file":
		if path == "" {
			var err error
			path, err = gitcfg.DefaultGitconfigPath()
			if err != nil {
				return nil, err
			}
		}
		return gitcfg.NewFileStore(path), nil
	case "", "exec":
		if path != "" {
			return gitcfg.NewExecStoreForFile(path)
		}
		return gitcfg.NewExecStore()
	default:
		return nil, fmt.Errorf("unknown store backend %q (want \"exec\" or \"file\")", backend)
	}
}

// buildScrubber applies the config's identity override and extra keys.
func buildScrubber(cfg *config.Config, store gitcfg.Store) *scrub.Scrubber {
	return scrub.New(store,
		scrub.WithIdentity(scrub.Identity{Email: cfg.IdentityEmail, Name: cfg.IdentityName}),
		scrub.WithExtraKeys(cfg.ExtraKeys),
	)
}

// saveIdentity persists an identity override so later runs install it instead
// of the built-in defaults.
func saveIdentity(email, name string) error {
	cfg := config.LoadConfig()
	cfg.IdentityEmail = email
	cfg.IdentityName = name
	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Printf("identity override saved: %s <%s>\n", name, email)
	return nil
}

func printPlan(ctx context.Context, scrubber *scrub.Scrubber) error {
	ops, err := scrubber.Plan(ctx)
	if err != nil {
		return err
	}
	for _, op := range ops {
		if op.Kind == scrub.OpSet {
			fmt.Printf("set   %s = %s\n", log.SanitizeKey(op.Key), op.Value)
		} else {
			fmt.Printf("unset %s\n", log.SanitizeKey(op.Key))
		}
	}
	return nil
}

func init() {
	rootCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false,
		"Print the operations that would run without touching the store")
	rootCmd.Flags().BoolVarP(&interactiveFlag, "interactive", "i", false,
		"Review and toggle the planned operations before running")
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "",
		"Store backend: 'exec' (git binary) or 'file' (edit gitconfig directly)")
	rootCmd.PersistentFlags().StringVar(&gitconfigFlag, "gitconfig", "",
		"Path to the gitconfig file to operate on (defaults to the global scope)")
	listCmd.Flags().BoolVar(&copyFlag, "copy", false, "Copy the listing to the clipboard")
	guardCmd.Flags().BoolVar(&stopGuardFlag, "stop", false, "Stop a running guard process")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(setIdentityCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(guardCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
