package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/fkorder/internal/database"
	"github.com/dbsmedya/fkorder/internal/server"
)

var (
	serveListen     string
	serveSchemaFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve table ordering over HTTP",
	Long: `Serve starts an HTTP server answering ordering requests.

Endpoints:
  POST /api/v1/sort   {"tables": [...], "set": "name", "order": "copy|delete"}
  GET  /api/v1/sets   configured table sets
  GET  /healthz       database reachability

Example:
  fkorder serve --listen :8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "",
		"Override listen address (default: server.listen)")
	serveCmd.Flags().StringVar(&serveSchemaFile, "schema-file", "",
		"Read foreign keys from a YAML schema definition instead of the database")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveListen != "" {
		cfg.Server.Listen = serveListen
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := database.SetupSignalHandler(commandContext(cmd), func(sig os.Signal) {
		log.Warnw("Received shutdown signal", "signal", sig.String())
	})
	defer cancel()

	var srv *server.Server
	if serveSchemaFile != "" {
		src, closeSrc, err := openSource(ctx, cfg, serveSchemaFile)
		if err != nil {
			return err
		}
		defer closeSrc()
		srv = server.New(cfg, src, nil, log)
	} else {
		dbManager, err := connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer dbManager.Close()

		src, err := newSQLSource(dbManager)
		if err != nil {
			return err
		}
		srv = server.New(cfg, src, dbManager, log)
	}

	return srv.Run(ctx)
}
