package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Configuration struct {
	Server struct {
		Host string `envconfig:"SERVER_HOST"`
		Port string `envconfig:"SERVER_PORT" default:"8080"`
	}
	Database struct {
		Address          string `envconfig:"MONGO_ADDRESS"`
		DatabaseName     string `envconfig:"MONGO_DATABASE" default:"chesscoach"`
		PuzzleCollection string `envconfig:"MONGO_PUZZLE_COLLECTION" default:"puzzles"`
		ReportCollection string `envconfig:"MONGO_REPORT_COLLECTION" default:"reports"`
	}
	Engine struct {
		Path           string   `envconfig:"ENGINE_PATH" default:"stockfish"`
		Args           []string `envconfig:"ENGINE_ARGS"`
		Depth          int      `envconfig:"ENGINE_DEPTH" default:"18"`
		Hash           int      `envconfig:"ENGINE_HASH" default:"128"`
		Threads        int      `envconfig:"ENGINE_THREADS" default:"1"`
		ReadyTimeoutMS int      `envconfig:"ENGINE_READY_TIMEOUT_MS" default:"5000"`
	}
	Analysis struct {
		GoodThreshold       int `envconfig:"ANALYSIS_GOOD_THRESHOLD" default:"50"`
		InaccuracyThreshold int `envconfig:"ANALYSIS_INACCURACY_THRESHOLD" default:"150"`
		MistakeThreshold    int `envconfig:"ANALYSIS_MISTAKE_THRESHOLD" default:"300"`
	}
	Puzzle struct {
		WrongMovePolicy string `envconfig:"PUZZLE_WRONG_MOVE_POLICY" default:"retry"`
		ReplyDelayMS    int    `envconfig:"PUZZLE_REPLY_DELAY_MS" default:"300"`
	}
	Live struct {
		FeedURL string `envconfig:"LIVE_FEED_URL" default:"https://lichess.org/api/tv/feed"`
		Enabled bool   `envconfig:"LIVE_FEED_ENABLED" default:"false"`
	}
}

func InitConfig() (*Configuration, error) {
	config := &Configuration{}
	err := envconfig.Process("", config)
	return config, err
}
