package main

import (
	"github.com/constructoken/openpay/worker/archiver"
	"github.com/constructoken/openpay/worker/installment"
	"github.com/google/wire"
	"github.com/spf13/viper"
)

var workerSet = wire.NewSet(
	provideArchiverConfig,
	installment.New,
	archiver.New,
)

func provideArchiverConfig(v *viper.Viper) archiver.Config {
	v.SetDefault("archiver.batch_size", 100)

	return archiver.Config{
		BatchSize: v.GetInt("archiver.batch_size"),
	}
}
