package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"industry-console/internal/api"
	"industry-console/internal/config"
	"industry-console/internal/console"
	"industry-console/internal/logging"
	"industry-console/internal/rpc"
)

var (
	cfgPath   string
	industry  string
	transport string
	verbose   bool

	cfg    *config.Config
	logger *zap.Logger
	st     = newStyles()

	// one client per process so commands reuse connections
	httpClient = &http.Client{Timeout: 15 * time.Second}
)

// backend is everything the console sessions call; api.Client (REST) and
// rpc.Client (gRPC) both provide it.
type backend interface {
	console.SettingsAPI
	console.CalendarAPI
}

var rootCmd = &cobra.Command{
	Use:   "console",
	Short: "Terminal admin console: industry content editor and booking calendar",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if industry != "" {
			cfg.Console.Industry = industry
		}
		if transport != "" {
			cfg.Console.Transport = transport
		}
		logger, err = logging.NewConsole(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "YAML config file (default $CONFIG_FILE)")
	pf.StringVarP(&industry, "industry", "i", "", "industry to edit (default $CONSOLE_INDUSTRY or salon)")
	pf.StringVar(&transport, "transport", "", "rest or grpc (default $CONSOLE_TRANSPORT)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(loginCmd, cmsCmd, calendarCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// dial builds the backend client for the configured transport. The returned
// func releases it.
func dial() (backend, func(), error) {
	switch cfg.Console.Transport {
	case "grpc":
		conn, err := grpc.NewClient(cfg.Console.GRPCAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, nil, fmt.Errorf("dial %s: %w", cfg.Console.GRPCAddr, err)
		}
		return rpc.NewClient(conn, cfg.Console.Token), func() { conn.Close() }, nil
	case "rest", "":
		c := api.New(cfg.Console.APIURL, api.WithToken(cfg.Console.Token), api.WithHTTPClient(httpClient), api.WithLogger(logger))
		return c, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown transport %q", cfg.Console.Transport)
}

// printer shows session notifications on w.
func printer(w io.Writer) console.Notifier {
	return console.NotifierFunc(func(n console.Notification) {
		fmt.Fprintln(w, st.toast(n))
	})
}

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in over REST and print an access token for CONSOLE_TOKEN",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := api.New(cfg.Console.APIURL, api.WithHTTPClient(httpClient), api.WithLogger(logger))
		tok, err := c.Login(cmd.Context(), loginEmail, loginPassword)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
