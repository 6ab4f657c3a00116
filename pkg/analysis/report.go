package analysis

import (
	"time"

	"github.com/notnil/chess"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Layout is the PGN date tag format.
const Layout = "2006.01.02"

// GameReport is the persisted outcome of a whole-game batch analysis.
type GameReport struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	WhitePlayer string             `bson:"white_player" json:"white_player"`
	BlackPlayer string             `bson:"black_player" json:"black_player"`
	Date        primitive.DateTime `bson:"date" json:"date"`
	Moves       []MoveRecord       `bson:"moves" json:"moves"`
}

// NewGameReport builds a report from the game's tag pairs and the finished
// batch records.
func NewGameReport(game *chess.Game, records []MoveRecord) GameReport {
	gameTime := time.Now()
	if parsed, err := time.Parse(Layout, tagValue(game, "Date")); err == nil {
		gameTime = parsed
	}
	return GameReport{
		WhitePlayer: tagValue(game, "White"),
		BlackPlayer: tagValue(game, "Black"),
		Date:        primitive.NewDateTimeFromTime(gameTime),
		Moves:       records,
	}
}

func tagValue(game *chess.Game, key string) string {
	if pair := game.GetTagPair(key); pair != nil {
		return pair.Value
	}
	return ""
}
