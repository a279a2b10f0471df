package util

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/lwalter/unisock/ipc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupSocketFlags adds the socket configuration flags shared by all commands
func SetupSocketFlags(cmd *cobra.Command) {
	key := "base-dir"
	cmd.PersistentFlags().String(key, common.DefaultBaseDir, WrapString("Directory relative socket names are resolved against. Absolute socket names bypass it"))

	key = "buffer-size"
	cmd.PersistentFlags().Int(key, common.DefaultBufferSize, WrapString("Size in bytes of the internal read buffer. One read returns at most this many bytes"))

	key = "timeout"
	cmd.PersistentFlags().Int64(key, 0, WrapString("Per-operation read/write timeout in seconds for blocking connections (0 disables deadlines)"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "info", WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("unisock")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetConfig reads the socket configuration from viper
func GetConfig() common.Config {
	return common.Config{
		BaseDir:       viper.GetString("base-dir"),
		BufferSize:    viper.GetInt("buffer-size"),
		TimeoutSecond: viper.GetInt64("timeout"),
		LogLevel:      viper.GetString("log-level"),
	}.Normalized()
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
