package fx

import (
	"attendance-tracker/internal/api"
	"attendance-tracker/internal/config"
	"attendance-tracker/internal/database"
	"attendance-tracker/internal/logger"
	"attendance-tracker/internal/repository"
	"attendance-tracker/internal/scheduler"
	"attendance-tracker/internal/server"
	"attendance-tracker/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideCodeforcesSource(c *api.CodeforcesClient) *service.CodeforcesSource {
	return &service.CodeforcesSource{Client: c}
}

func ProvideLeetCodeSource(c *api.LeetCodeClient) *service.LeetCodeSource {
	return &service.LeetCodeSource{Client: c}
}

func ProvideScheduler(job *service.RolloverJob, cfg *config.Config, log zerolog.Logger) *scheduler.Scheduler {
	return scheduler.New(job, cfg.Location, log)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewMemberRepository),
	fx.Provide(repository.NewAttendanceRepository),
	fx.Provide(repository.NewStreakRepository),
	fx.Provide(repository.NewStatsRepository),
	fx.Provide(repository.NewRunRepository),
	// platform clients
	fx.Provide(api.NewCodeforcesClient),
	fx.Provide(api.NewLeetCodeClient),
	fx.Provide(ProvideCodeforcesSource),
	fx.Provide(ProvideLeetCodeSource),
	// svc
	fx.Provide(service.NewSeeder),
	fx.Provide(service.NewStreakEngine),
	fx.Provide(service.NewRefresher),
	fx.Provide(service.NewLeaderboardService),
	fx.Provide(service.NewRolloverJob),
	// scheduler + server
	fx.Provide(ProvideScheduler),
	fx.Provide(server.New),
)
