package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"caretalk/internal/app"
)

var (
	home    string
	backend string
	appCtx  *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:   "caretalk",
		Short: "Therapy client: sessions and secure messaging",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			if home != "" {
				cfg.Home = home
			}
			if cfg.Home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				cfg.Home = filepath.Join(dir, ".caretalk")
			}
			if backend != "" {
				cfg.VaultBackend = backend
			}

			log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
			appCtx, err = app.NewWire(cmd.Context(), cfg, log)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if appCtx != nil {
				return appCtx.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "data dir (default ~/.caretalk)")
	root.PersistentFlags().StringVar(&backend, "vault", "", "vault backend: badger or file")

	root.AddCommand(
		loginCmd(),
		registerCmd(),
		logoutCmd(),
		whoamiCmd(),
		forgotPasswordCmd(),
		startCmd(),
		sendCmd(),
		conversationsCmd(),
		openCmd(),
	)

	err := root.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return err
}
