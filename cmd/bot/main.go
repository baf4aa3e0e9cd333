package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	discordrouter "github.com/jose-valero/infinity-music-bot/internal/adapters/discord"
	"github.com/jose-valero/infinity-music-bot/internal/adapters/httpstatus"
	"github.com/jose-valero/infinity-music-bot/internal/adapters/lavalink"
	"github.com/jose-valero/infinity-music-bot/internal/app/service"
	"github.com/jose-valero/infinity-music-bot/internal/infra/config"
	"github.com/jose-valero/infinity-music-bot/internal/infra/logging"
	"github.com/jose-valero/infinity-music-bot/internal/infra/storage"
)

const clientName = "infinity-music-bot/1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	// Refs de superficies: Postgres si hay DATABASE_URL, si no en memoria
	var refs discordrouter.RefStore
	if cfg.DatabaseURL != "" {
		db, err := storage.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("db")
		}
		defer db.Close()
		if err := storage.Migrate(ctx, db, logger); err != nil {
			logger.Fatal().Err(err).Msg("migrate")
		}
		refs = storage.NewSurfaceRepo(db)
		logger.Info().Msg("✅ DB lista y migrada")
	}

	auth := strings.TrimSpace(cfg.DiscordToken)
	if !strings.HasPrefix(strings.ToLower(auth), "bot ") {
		auth = "Bot " + auth
	}
	s, err := discordgo.New(auth)
	if err != nil {
		logger.Fatal().Err(err).Msg("discord session")
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates

	// el user id hace falta antes del gateway (Lavalink lo pide en el handshake)
	me, err := s.User("@me")
	if err != nil {
		logger.Fatal().Err(err).Msg("fetch bot user")
	}

	nodes := make([]lavalink.NodeConfig, 0, len(cfg.Nodes))
	for _, n := range cfg.Nodes {
		nodes = append(nodes, lavalink.NodeConfig{Name: n.Name, Address: n.Address, Password: n.Password, Secure: n.Secure})
	}
	cluster := lavalink.NewCluster(me.ID, nodes, cfg.SearchEngine, logger, lavalink.WithClientName(clientName))

	sessions := service.NewSessionService(cluster, discordrouter.NewVoiceBridge(s), logger, service.SessionOptions{
		IdleTimeout:  cfg.IdleTimeout,
		VoiceTimeout: cfg.VoiceTimeout,
	})
	surfaces := discordrouter.NewSurfaces(s, me.ID, refs, logger)
	sessions.SetListener(discordrouter.NewControlPanel(s, sessions, surfaces, me.ID, discordrouter.PanelEmojis{
		NowPlaying: cfg.Emojis.NowPlaying,
		Pause:      cfg.Emojis.Pause,
		Skip:       cfg.Emojis.Skip,
		Stop:       cfg.Emojis.Stop,
	}, logger))

	var dash *service.DashboardService
	if cfg.StatusChannelID != "" {
		board := discordrouter.NewStatusBoard(surfaces, cfg.StatusChannelID, me.AvatarURL(""), logger)
		dash = service.NewDashboardService(cluster, board, cfg.DashboardInterval, logger)
	}

	r := discordrouter.NewRouter(s, cfg.DiscordGuild, sessions, sessions, discordrouter.Presence{
		Name: cfg.ActivityName,
		Type: cfg.ActivityType,
	}, logger)
	r.Handlers()

	if err := s.Open(); err != nil {
		logger.Fatal().Err(err).Msg("gateway")
	}
	defer s.Close()
	logger.Info().Str("user", me.Username).Str("id", me.ID).Msg("✅ Conectado")

	if err := r.Register(); err != nil {
		logger.Fatal().Err(err).Msg("registrando comandos")
	}
	logger.Info().Str("guild", cfg.DiscordGuild).Msg("✅ comandos registrados")

	cluster.Connect(ctx)
	go service.PumpEvents(ctx, cluster.Events(), sessions, dash)
	if dash != nil {
		go dash.Run(ctx)
	}

	web := httpstatus.New(cluster, sessions, logger)
	go web.Start(cfg.Addr())

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sessions.Shutdown(sctx)
	if err := web.Shutdown(sctx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}
}
