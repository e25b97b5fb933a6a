package journal

const Schema = `
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	game_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	turn INTEGER NOT NULL,
	player_id TEXT NOT NULL,
	player_name TEXT NOT NULL,
	severity TEXT NOT NULL,
	message TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_game_turn ON events(game_id, turn);
CREATE INDEX IF NOT EXISTS idx_events_time ON events(time);
`
