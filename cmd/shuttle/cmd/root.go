package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"shuttle/internal/adapters/jsonl"
	"shuttle/internal/adapters/rsync"
	"shuttle/internal/adapters/s3cli"
	"shuttle/internal/adapters/sshprobe"
	"shuttle/internal/adapters/tomlreg"
	"shuttle/internal/application/commands"
	"shuttle/internal/config"
	"shuttle/internal/domain"
	"shuttle/internal/lockfile"
	"shuttle/internal/logging"
	"shuttle/internal/ports"
	"shuttle/internal/staging"
)

var (
	configFile  string
	baseDir     string
	dryRun      bool
	verbose     bool
	policyName  string
	noProbe     bool
	keepStaging bool

	env *commands.Env
)

var rootCmd = &cobra.Command{
	Use:   "shuttle",
	Short: "Move files between SSH hosts through a local hub",
	Long: `shuttle moves files between independently-configured remote hosts
over SSH using a hub-and-spoke model: this machine mediates every
transfer, so remote hosts never need to know about each other.

Files offered for pulling live in per-server outboxes; received files
land in per-server inboxes. A relay pulls from one server and pushes
the result to another in a single audited operation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		return initEnv()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.ServersFile(), "path to servers.toml")
	rootCmd.PersistentFlags().StringVarP(&baseDir, "base", "b", config.BaseDir(), "shuttle base directory")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "show what would be transferred without doing it")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&policyName, "policy", "update", "conflict policy: update, checksum, or backup")
	rootCmd.PersistentFlags().BoolVar(&noProbe, "no-probe", false, "skip the reachability probe before transfers")
	rootCmd.PersistentFlags().BoolVar(&keepStaging, "keep-staging", false, "keep staging directories of failed transfers")
}

func initEnv() error {
	policy, err := parsePolicy(policyName)
	if err != nil {
		return err
	}

	registry, err := tomlreg.Load(configFile)
	if err != nil {
		return err
	}

	level := "info"
	if verbose {
		level = "debug"
	}

	layout := domain.Layout{Base: config.ExpandHome(baseDir)}
	locks := lockfile.New("")

	env = &commands.Env{
		Registry:  registry,
		Transfer:  rsync.New(),
		Prober:    sshprobe.New(),
		Ledger:    jsonl.New(layout.LedgerPath()),
		Archiver:  s3cli.New(),
		Locks:     locks,
		Staging:   &staging.Manager{Layout: layout, Preserve: keepStaging},
		Layout:    layout,
		Log:       logging.New("shuttle", level),
		LocalName: config.LocalName(),
		Policy:    policy,
		DryRun:    dryRun,
		SkipProbe: noProbe,
	}

	// Release held locks even on SIGINT/SIGTERM so an interrupted
	// transfer never deadlocks the next invocation.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		locks.ReleaseAll()
		os.Exit(130)
	}()

	return nil
}

func parsePolicy(name string) (ports.ConflictPolicy, error) {
	switch name {
	case "update", "":
		return ports.PolicyUpdate, nil
	case "checksum":
		return ports.PolicyChecksum, nil
	case "backup":
		return ports.PolicyBackup, nil
	default:
		return "", fmt.Errorf("unknown conflict policy: %s", name)
	}
}

// GetEnv returns the initialized command environment
func GetEnv() *commands.Env {
	return env
}
