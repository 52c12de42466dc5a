package igdb

// IGDB game modes, per https://api-docs.igdb.com/#game-mode
const (
	GameModeSinglePlayer = 1
	GameModeMultiplayer  = 2
	GameModeCoop         = 3
	GameModeSplitscreen  = 4
	GameModeMMO          = 5
	GameModeBattleRoyale = 6
)

// externalGamePlatformIDs maps release-key platforms to IGDB external-game
// categories, per https://api-docs.igdb.com/#external-game-enums. The full
// mapping is much longer, but only Steam and GOG ids actually line up with
// what IGDB stores.
var externalGamePlatformIDs = map[string]int{
	"steam": 1,
	"gog":   5,
}

// IsMultiplayerGameMode reports whether mode counts as multiplayer when
// classifying a title by its game modes alone.
func IsMultiplayerGameMode(mode int) bool {
	switch mode {
	case GameModeMultiplayer, GameModeMMO, GameModeBattleRoyale:
		return true
	}
	return false
}
