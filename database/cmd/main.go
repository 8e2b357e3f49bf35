package main

import (
	"flag"

	"idcard.link/configs"
	"idcard.link/configs/configsdatabase"
	"idcard.link/configs/configslog"
	"idcard.link/database"

	"go.uber.org/zap"
)

func main() {
	configs.LoadEnv()
	configslog.InitLogger()
	defer configslog.SyncLogger()
	migrateFlag := flag.Bool("migrate", false, "run the schema migrations")
	seedFlag := flag.Bool("seed", false, "run the seeders (system user, card sequences)")
	flag.Parse()

	configs.LoadConfig()

	configsdatabase.InitDB()
	defer configsdatabase.CloseDB()

	if err := database.Initialize(configsdatabase.GetDB(), *migrateFlag, *seedFlag); err != nil {
		configslog.Log.Fatal("Database initialization failed", zap.Error(err))
	}
	configslog.SLog.Info("Database initialization finished.")
}
