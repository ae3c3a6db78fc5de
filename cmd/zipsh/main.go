package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"zipsh/internal/config"
	"zipsh/internal/fs"
	"zipsh/internal/logging"
	"zipsh/internal/shell"
	"zipsh/internal/state"

	"bazil.org/fuse"
	"github.com/spf13/cobra"
)

var (
	logger = logging.GetLogger()

	flagConfigFilePath string // value of --config flag
	flagVerbose        bool   // value of --verbose flag
	flagMountPoint     string // value of --mount flag
	flagVersion        bool   // value of --version flag

	cfg config.Config
)

const longHelp = `Browse an archive through a read-only shell.

Any username is accepted, including one that looks like a flag when it
follows "--":

  zipsh alice site.zip
  zipsh -- -bob site.zip

With --mount the archive is served as a read-only FUSE filesystem
instead of starting a shell:

  zipsh --mount /mnt/site site.zip`

// newRootCmd builds the single zipsh command. Mount and version are flags,
// not subcommands, so every username reaches the shell.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "zipsh [flags] [--] <username> <archive>",
		Short:   "Browse an archive through a read-only shell",
		Long:    longHelp,
		Args:    validateArgs,
		PreRunE: setup,
		RunE:    run,
	}

	rootCmd.Flags().StringVar(&flagConfigFilePath, "config", "", "YAML config file to load")
	rootCmd.Flags().BoolVar(&flagVerbose, "verbose", false, "verbose logging")
	rootCmd.Flags().StringVar(&flagMountPoint, "mount", "", "mount <archive> read-only at this directory instead of starting a shell")
	rootCmd.Flags().BoolVar(&flagVersion, "version", false, "print build information")

	// errors are reported by main
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	return rootCmd
}

func main() {
	if cmd, err := newRootCmd().ExecuteC(); err != nil {
		logger.Error("zipsh failed: %v", err)
		var loadErr *fs.LoadError
		if !errors.As(err, &loadErr) {
			_ = cmd.Usage()
		}
		os.Exit(1)
	}
}

func validateArgs(cmd *cobra.Command, args []string) error {
	switch {
	case flagVersion:
		return cobra.NoArgs(cmd, args)
	case flagMountPoint != "":
		return cobra.ExactArgs(1)(cmd, args)
	default:
		return cobra.ExactArgs(2)(cmd, args)
	}
}

func run(cmd *cobra.Command, args []string) error {
	switch {
	case flagVersion:
		return doVersion(cmd)
	case flagMountPoint != "":
		return doMount(cmd, args[0], flagMountPoint)
	default:
		return doShell(cmd, args[0], args[1])
	}
}

// setup loads the configuration and applies its log level. LOG_LEVEL in the
// environment wins over the file, --verbose wins over both.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(flagConfigFilePath)
	if err != nil {
		return err
	}

	if os.Getenv("LOG_LEVEL") == "" {
		logger.SetLevel(cfg.Level())
	}
	if flagVerbose {
		logger.SetLevel(logging.LevelDebug)
	}
	logger.Debug("Configuration: %+v", cfg)
	return nil
}

func doShell(cmd *cobra.Command, username, archivePath string) error {
	snap, err := fs.Load(archivePath)
	if err != nil {
		return err
	}
	logger.Info("Loaded %d entries from %s", snap.Len(), snap.Source())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runShell(ctx, state.New(username, snap), cmd.InOrStdin(), cmd.OutOrStdout())
}

func runShell(ctx context.Context, session *state.Session, in io.Reader, out io.Writer) error {
	sh := shell.New(session, in, out,
		shell.WithHostname(cfg.Hostname),
		shell.WithFarewell(cfg.Farewell),
		shell.WithColor(shell.ColorEnabled(cfg.Color, out)),
	)
	return sh.Run(ctx)
}

func doMount(cmd *cobra.Command, archivePath, mountPoint string) error {
	mountPoint = filepath.Clean(mountPoint)

	snap, err := fs.Load(archivePath)
	if err != nil {
		return err
	}

	opts := []fuse.MountOption{fuse.FSName(cfg.Mount.FSName)}
	if cfg.Mount.AllowOther {
		opts = append(opts, fuse.AllowOther())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Mounting %s at %s", archivePath, mountPoint)
	if err := fs.NewFS(snap).Serve(ctx, mountPoint, opts...); err != nil {
		return fmt.Errorf("mount %s: %w", mountPoint, err)
	}
	logger.Info("Unmounted %s", mountPoint)
	return nil
}

func doVersion(cmd *cobra.Command) error {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return fmt.Errorf("zipsh: version info not available")
	}

	out := cmd.OutOrStdout()
	if flagConfigFilePath != "" {
		fmt.Fprintf(out, "config: %s\n", flagConfigFilePath)
	}
	fmt.Fprintf(out, "zipsh:  %s\n", info.Main.Version)
	fmt.Fprintf(out, "go:     %s\n", info.GoVersion)
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			fmt.Fprintf(out, "commit: %s\n", s.Value)
		case "vcs.time":
			fmt.Fprintf(out, "date:   %s\n", s.Value)
		case "vcs.modified":
			fmt.Fprintf(out, "dirty:  %s\n", s.Value)
		}
	}
	return nil
}
