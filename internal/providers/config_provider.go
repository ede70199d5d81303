package providers

import (
	"fmt"
	"github.com/spf13/viper"
	"path/filepath"
	"spd/internal/structures"
	"strings"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "SPD_LOG_LEVEL")
	viper.BindEnv("profiles.rootDir", "SPD_PROFILES_DIR")
	viper.BindEnv("backup.autoBackupEnabled", "SPD_AUTO_BACKUP")
	viper.BindEnv("backup.backupInterval", "SPD_BACKUP_INTERVAL")
	viper.BindEnv("backup.maxBackupCount", "SPD_MAX_BACKUP_COUNT")
	viper.BindEnv("cache.enabled", "SPD_CACHE_ENABLED")
	viper.BindEnv("cache.size", "SPD_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "SoundboardProfileDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
