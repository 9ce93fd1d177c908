// Package cli is the cobra command tree of the reader binary.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/spec-kit/novel-reader/internal/client/api"
	"github.com/spec-kit/novel-reader/internal/client/session"
	"github.com/spec-kit/novel-reader/internal/client/tokenstore"
	"github.com/spec-kit/novel-reader/internal/config"
	"github.com/spec-kit/novel-reader/internal/observability"
)

// app holds what every command needs. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	cfg     *config.ReaderConfig
	logger  *zap.Logger
	client  *api.Client
	store   *tokenstore.FileStore
	session *session.Manager
	in      *bufio.Reader
}

// NewRootCmd builds the reader command tree.
func NewRootCmd(version string) *cobra.Command {
	a := &app{}
	var (
		apiURL   string
		credPath string
		verbose  bool
	)

	root := &cobra.Command{
		Use:           "novel-reader",
		Short:         "Đọc truyện từ dòng lệnh",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadReader()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("api") {
				cfg.APIURL = apiURL
			}
			if cmd.Flags().Changed("credentials") {
				cfg.CredentialPath = credPath
			}
			logCfg := cfg.Logger()
			if verbose {
				logCfg.Level = "debug"
			}
			logger, err := observability.NewLogger(logCfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			a.cfg = cfg
			a.logger = logger
			a.client = api.New(cfg.APIURL, cfg.HTTPTimeout, logger)
			a.store = tokenstore.NewFileStore(cfg.CredentialPath)
			a.session = session.NewManager(a.store, a.client, logger)
			a.in = bufio.NewReader(cmd.InOrStdin())
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (default from READER_API_URL)")
	root.PersistentFlags().StringVar(&credPath, "credentials", "", "credential file (default ~/.novel-reader/credential.json)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")

	root.AddCommand(newVersionCmd(version))
	root.AddCommand(newLoginCmd(a))
	root.AddCommand(newRegisterCmd(a))
	root.AddCommand(newLogoutCmd(a))
	root.AddCommand(newWhoamiCmd(a))
	root.AddCommand(newReadCmd(a))
	root.AddCommand(newStoryCmd(a))
	root.AddCommand(newRawCmd(a))
	return root
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func (a *app) prompt(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, err := a.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword hides input on a terminal and falls back to a plain line
// read when stdin is piped.
func (a *app) promptPassword(cmd *cobra.Command, label string) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.OutOrStdout(), label)
		pass, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		return string(pass), err
	}
	return a.prompt(cmd, label)
}
