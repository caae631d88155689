package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/studyhall/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quiz and tutor over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = d.cfg.Server.Addr
		}

		handler := api.NewRouter(api.Deps{
			Quiz:        d.quiz,
			Tutor:       d.tutor,
			Credentials: d.creds,
		}, api.Options{AllowedOrigins: d.cfg.Server.AllowedOrigins}, d.log)

		d.log.Info("starting server", zap.String("addr", addr), zap.String("store", d.cfg.Store.Driver))
		return api.NewServer(addr, handler, d.log).Run(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
