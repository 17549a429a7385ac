// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "FungID-Go")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "fungid.log")

	viper.SetDefault("webserver.host", "0.0.0.0")
	viper.SetDefault("webserver.port", "8888")

	viper.SetDefault("detector.modelpath", "weights/best.onnx")
	viper.SetDefault("detector.labelspath", "")
	viper.SetDefault("detector.threshold", 0.25)
	viper.SetDefault("detector.inputsize", 640)
	viper.SetDefault("detector.timeout", "30s")

	viper.SetDefault("media.uploadpath", "static/uploads")
	viper.SetDefault("media.resultspath", "static/results")

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "fungid.db")

	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "root")
	viper.SetDefault("output.mysql.password", "")
	viper.SetDefault("output.mysql.database", "yunnanyeshengjun")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")
}
