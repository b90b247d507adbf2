package initialize

import (
	"fmt"

	"telecloud/app/command"
	"telecloud/app/crypto"
	"telecloud/app/db"
	"telecloud/app/models"
	"telecloud/app/repo"
	"telecloud/app/services"
	"telecloud/config"
	"telecloud/global"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type App struct {
	Cfg        *config.Config
	DB         *gorm.DB
	Codec      *crypto.Codec
	Tree       *services.TreeService
	Nav        *services.NavigationService
	Dispatcher *command.Dispatcher
}

// Build assembles the application from configuration: logger, database,
// codec, repositories, services and the command dispatcher.
func Build(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	global.Config = *cfg

	if err := setupLogger(cfg.Log.Level, cfg.Log.Path); err != nil {
		return nil, err
	}

	gdb, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	global.Mdb = gdb

	if err := gdb.AutoMigrate(&models.Directory{}, &models.MediaEntry{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	codec, err := crypto.New(cfg.Crypto.Secret, cfg.Crypto.Salt)
	if err != nil {
		return nil, err
	}

	// Pointers live in redis when configured, in memory otherwise.
	var pointers repo.PointerStore
	if cfg.Redis.Addr != "" {
		global.Rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		pointers = repo.NewRedisPointerStore(global.Rdb)
	} else {
		pointers = repo.NewMemoryPointerStore()
	}

	dirRepo := repo.NewDirectoryRepository(gdb)
	mediaRepo := repo.NewMediaRepository(gdb)
	tree := services.NewTreeService(dirRepo, mediaRepo, cfg.Bot.RootDirectory)
	nav := services.NewNavigationService(tree, pointers)

	dispatcher := command.NewDispatcher()
	handlers := &command.Handlers{
		Tree:         tree,
		Nav:          nav,
		Codec:        codec,
		CancelButton: cfg.Bot.CancelButton,
	}
	handlers.Install(dispatcher)

	global.Logger.Info().Str("driver", cfg.DB.Driver).Msg("telecloud initialized")
	return &App{
		Cfg:        cfg,
		DB:         gdb,
		Codec:      codec,
		Tree:       tree,
		Nav:        nav,
		Dispatcher: dispatcher,
	}, nil
}
