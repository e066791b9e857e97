// Command plantid-server runs the reference plant identification service:
// sqlite-backed chat storage, image uploads, and the identification endpoint.
package main

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"plantid/internal/config"
	"plantid/internal/server"
)

func main() {
	cfg := config.Load()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	storage, err := server.OpenStorage(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("open database")
	}
	defer storage.Close()

	var identifier server.Identifier = server.CatalogIdentifier{}
	if cfg.OpenRouterKey != "" {
		identifier = server.NewVisionIdentifier(cfg.OpenRouterKey, cfg.IdentifyModel)
	}

	srv := server.New(storage, identifier, cfg.UploadDir, cfg.PublicBase, log)

	log.Info().
		Str("addr", cfg.Addr).
		Str("db", cfg.DatabasePath).
		Str("identifier", identifier.Name()).
		Msg("listening")

	if err := http.ListenAndServe(cfg.Addr, srv.Router()); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
