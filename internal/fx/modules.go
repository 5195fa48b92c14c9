package fx

import (
	"padel-league/internal/config"
	"padel-league/internal/database"
	"padel-league/internal/kfactor"
	"padel-league/internal/logger"
	"padel-league/internal/repository"
	"padel-league/internal/server"
	"padel-league/internal/service"
	"padel-league/internal/store"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(store.NewTxRunner),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewMatchRepository),
	fx.Provide(repository.NewRankingLogRepository),
	fx.Provide(repository.NewPointDetailRepository),
	// rating collaborators
	fx.Provide(kfactor.NewProvider),
	// svc
	fx.Provide(service.NewPlayerService),
	fx.Provide(service.NewMatchService),
	fx.Provide(service.NewProcessor),
	// server
	fx.Provide(server.NewLeagueServer),
)
