package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline.
type Flag struct {
	// Name is the long flag name (e.g. "provider").
	Name string

	// Shorthand is the one-letter short flag (e.g. "p"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "completion.provider").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
const (
	FlagListen         = "listen"
	FlagProvider       = "provider"
	FlagBaseURL        = "base-url"
	FlagChatModel      = "chat-model"
	FlagReasoningModel = "reasoning-model"
	FlagStreamMode     = "stream-mode"
	FlagChunkSize      = "chunk-size"
	FlagStorageDriver  = "storage"
	FlagSQLite         = "sqlite"
	FlagPostgresDSN    = "postgres-dsn"
	FlagEvents         = "events"
	FlagKafkaBrokers   = "kafka-brokers"
	FlagTarget         = "target"
)

// Flags is the registry shared by every scribe command.
var Flags = FlagSet{
	FlagListen: {
		Name: "listen", Shorthand: "l", ViperKey: "server.listen",
		Description: "Address for the tutor server to listen on",
	},
	FlagProvider: {
		Name: "provider", Shorthand: "p", ViperKey: "completion.provider",
		Description: "Completion provider (echo, openai, anthropic, gemini)",
	},
	FlagBaseURL: {
		Name: "base-url", ViperKey: "completion.base_url",
		Description: "Completion provider base URL",
	},
	FlagChatModel: {
		Name: "chat-model", ViperKey: "completion.chat_model",
		Description: "Model used for chat, recap, hints and checks",
	},
	FlagReasoningModel: {
		Name: "reasoning-model", ViperKey: "completion.reasoning_model",
		Description: "Model used to draft step-by-step solutions",
	},
	FlagStreamMode: {
		Name: "stream-mode", ViperKey: "stream.mode",
		Description: "Reply streaming mode (auto, native, split)",
	},
	FlagChunkSize: {
		Name: "chunk-size", ViperKey: "stream.chunk_size",
		Description: "Characters per chunk when splitting a whole reply",
	},
	FlagStorageDriver: {
		Name: "storage", ViperKey: "storage.driver",
		Description: "Timer store driver (memory, sqlite, postgres)",
	},
	FlagSQLite: {
		Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path",
		Description: "Path to SQLite database",
	},
	FlagPostgresDSN: {
		Name: "postgres-dsn", ViperKey: "storage.postgres_dsn",
		Description: "PostgreSQL connection string",
	},
	FlagEvents: {
		Name: "events", ViperKey: "events.provider",
		Description: "Event publisher (nop, kafka)",
	},
	FlagKafkaBrokers: {
		Name: "kafka-brokers", ViperKey: "events.brokers",
		Description: "Comma separated Kafka brokers",
	},
	FlagTarget: {
		Name: "target", Shorthand: "t", ViperKey: "client.target",
		Description: "URL of a running scribe server",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
