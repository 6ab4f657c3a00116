package lichess

import (
	"fmt"
	"net/http"

	"github.com/notnil/chess"
)

// BaseURL is the lichess API root. Overridable for tests.
var BaseURL = "https://lichess.org"

// FetchUserGames downloads the user's most recent games as parsed PGN.
func FetchUserGames(username string, last int) ([]*chess.Game, error) {
	url := fmt.Sprintf("%s/api/games/user/%s?max=%d", BaseURL, username, last)
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("error fetching %s games: %w", username, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("user %s doesn't exist on lichess", username)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lichess returned status %d for %s", resp.StatusCode, username)
	}

	scanner := chess.NewScanner(resp.Body)
	games := make([]*chess.Game, 0)
	for scanner.Scan() {
		games = append(games, scanner.Next())
	}
	return games, nil
}
