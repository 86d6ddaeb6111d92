package main

import (
	"context"
	"errors"
	"os"
	"path"

	"github.com/minicast/minicast/cli/commands"
	app_info "github.com/minicast/minicast/internal/app-info"
	"github.com/minicast/minicast/internal/config"
	"github.com/minicast/minicast/internal/core"
	"github.com/minicast/minicast/internal/device"
	"github.com/minicast/minicast/internal/logger"
	"github.com/minicast/minicast/internal/ui"
	"github.com/spf13/viper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

/**
 * Main entry point for all commands
 * Here we setup environment config via viper
 */

func setRunTimeConfig() error {
	userHomeDir, err := os.UserHomeDir()

	if err != nil {
		return err
	}

	configDir := path.Join(userHomeDir, ".config", app_info.NAME)

	if err := os.MkdirAll(configDir, 0755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}

	logFile := path.Join(configDir, app_info.NAME+".log")

	configFile := path.Join(configDir, "config.yml")

	dbFile := path.Join(configDir, app_info.NAME+".db")

	// share run-time config globally using viper
	viper.Set("log-file", logFile)
	viper.Set("config-dir", configDir)
	viper.Set("config-file", configFile)
	viper.Set("database-file", dbFile)

	return nil
}

func getConfig() config.Config {
	configFile := viper.Get("config-file").(string)

	conf, err := config.New(configFile)

	if err != nil {
		return *config.Default()
	}

	return *conf
}

func getCore(conf config.Config) (*core.Core, error) {
	dbFile := viper.Get("database-file").(string)

	db, err := gorm.Open(sqlite.Open(dbFile), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})

	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&device.Device{}); err != nil {
		return nil, err
	}

	deviceRepo := device.NewSqliteRepo(db)
	deviceService := device.NewService(deviceRepo)

	return core.New(conf, deviceService), nil
}

// Entry point for the cli
func main() {
	log := logger.New()

	if err := setRunTimeConfig(); err != nil {
		log.Fatal().Err(err).Msg("")
	}

	conf := getConfig()

	appCore, err := getCore(conf)

	if err != nil {
		log.Fatal().Err(err).Msg("")
	}

	appUI := ui.NewUI(appCore)

	// Get the "root" cobra cli command
	cmd := commands.Root(&commands.CommandProps{
		Core: appCore,
		UI:   appUI,
	})

	// execute the cobra command and exit with error code if necessary
	err = cmd.ExecuteContext(context.Background())

	if err != nil {
		log.Fatal().Err(err).Msg("")
	}
}
