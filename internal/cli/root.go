// Package cli implements navctl, a terminal client of the portal server. It
// keeps the browser client's state (theme, cached navigation, favicon urls,
// install prompt) in a local Badger directory.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MrSnakeDoc/navsite/internal/logger"
	"github.com/MrSnakeDoc/navsite/internal/portal"
	"github.com/MrSnakeDoc/navsite/internal/store/badger"
	"github.com/MrSnakeDoc/navsite/internal/version"
)

// Config keys, also settable as NAVCTL_<KEY> or in navctl.yaml.
const (
	keyServer   = "server"
	keyDataDir  = "data_dir"
	keyTimeout  = "timeout"
	keyLogLevel = "log_level"
)

// env carries what every command needs. The app is opened lazily so that
// --help never touches the data directory.
type env struct {
	v   *viper.Viper
	out io.Writer
	log logger.Logger

	storage *badger.Storage
	app     *portal.App
}

// Run executes navctl with args and releases the local store afterwards.
func Run(ctx context.Context, out io.Writer, args []string) error {
	e := &env{v: viper.New(), out: out}
	root := newRootCmd(e)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if cerr := e.close(); err == nil {
		err = cerr
	}
	return err
}

func newRootCmd(e *env) *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           "navctl",
		Short:         "Terminal client of the navigation portal",
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return e.loadConfig(cfgFile)
		},
	}
	root.SetOut(e.out)
	root.SetErr(e.out)

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./navctl.yaml or ~/.config/navctl/navctl.yaml)")
	pf.String(keyServer, "http://localhost:3000", "portal server address")
	pf.String("data-dir", defaultDataDir(), "local state directory (empty keeps state in memory)")
	pf.Duration(keyTimeout, 15*time.Second, "HTTP timeout")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")

	_ = e.v.BindPFlag(keyServer, pf.Lookup(keyServer))
	_ = e.v.BindPFlag(keyDataDir, pf.Lookup("data-dir"))
	_ = e.v.BindPFlag(keyTimeout, pf.Lookup(keyTimeout))
	_ = e.v.BindPFlag(keyLogLevel, pf.Lookup("log-level"))

	root.AddCommand(
		newListCmd(e),
		newSearchCmd(e),
		newAddCmd(e),
		newDeleteCmd(e),
		newThemeCmd(e),
		newRenderCmd(e),
		newFlushFaviconsCmd(e),
		newInstallPromptCmd(e),
	)
	return root
}

// Execute runs navctl with the process arguments.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := Run(ctx, os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "navctl:", err)
		os.Exit(1)
	}
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "navctl", "state")
}

func (e *env) loadConfig(cfgFile string) error {
	e.v.SetEnvPrefix("NAVCTL")
	e.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	e.v.AutomaticEnv()

	if cfgFile != "" {
		e.v.SetConfigFile(cfgFile)
	} else {
		e.v.SetConfigName("navctl")
		e.v.SetConfigType("yaml")
		e.v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			e.v.AddConfigPath(filepath.Join(dir, "navctl"))
		}
	}
	if err := e.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	e.log = logger.New(e.v.GetString(keyLogLevel), true)
	return nil
}

// portal opens the local storage and builds the client on first use.
func (e *env) portal() (*portal.App, error) {
	if e.app != nil {
		return e.app, nil
	}

	dir := e.v.GetString(keyDataDir)
	if dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
	}
	storage, err := badger.Open(dir, e.log)
	if err != nil {
		return nil, err
	}
	e.storage = storage

	e.app = portal.NewApp(portal.Options{
		ServerURL:   e.v.GetString(keyServer),
		HTTPClient:  newHTTPClient(e.v.GetDuration(keyTimeout)),
		Storage:     storage,
		PersistData: true,
	}, e.log)
	return e.app, nil
}

func (e *env) close() error {
	if e.app != nil {
		e.app.Close()
		e.app = nil
	}
	if e.storage != nil {
		err := e.storage.Close()
		e.storage = nil
		return err
	}
	return nil
}
