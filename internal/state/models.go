package state

// Vector3 is a position in game units.
type Vector3 struct {
	X Float `json:"x"`
	Y Float `json:"y"`
	Z Float `json:"z"`
}

// Touch is the last contact with the ball.
type Touch struct {
	PlayerName  string  `json:"player_name"`
	TimeSeconds Float   `json:"time_seconds"`
	HitLocation Vector3 `json:"hit_location"`
	Team        int     `json:"team"`
	PlayerIndex int     `json:"player_index"`
}

type BallInfo struct {
	Location    Vector3 `json:"location"`
	LatestTouch *Touch  `json:"latest_touch"`
}

type ScoreInfo struct {
	Score       int `json:"score"`
	Goals       int `json:"goals"`
	OwnGoals    int `json:"own_goals"`
	Assists     int `json:"assists"`
	Saves       int `json:"saves"`
	Shots       int `json:"shots"`
	Demolitions int `json:"demolitions"`
}

type PlayerInfo struct {
	Location     Vector3 `json:"location"`
	IsDemolished bool    `json:"is_demolished"`
	// True when wheels touch the ground, a wall or the ceiling.
	HasWheelContact bool      `json:"has_wheel_contact"`
	IsSupersonic    bool      `json:"is_supersonic"`
	IsBot           bool      `json:"is_bot"`
	Name            string    `json:"name"`
	Team            int       `json:"team"`
	Boost           int       `json:"boost"`
	ScoreInfo       ScoreInfo `json:"score_info"`
}

type GameInfo struct {
	SecondsElapsed    Float `json:"seconds_elapsed"`
	GameTimeRemaining Float `json:"game_time_remaining"`
	IsOvertime        bool  `json:"is_overtime"`
	IsUnlimitedTime   bool  `json:"is_unlimited_time"`
	// True while cars may move and during the pause menu. False during replays.
	IsRoundActive bool `json:"is_round_active"`
	// Only true during a kickoff before the ball is hit and the clock starts.
	IsKickoffPause bool `json:"is_kickoff_pause"`
	// True from the winner screen until the next team selection.
	IsMatchEnded bool `json:"is_match_ended"`
	// Physics frames elapsed. Can advance by more than one between packets.
	FrameNum int `json:"frame_num"`
}

type TeamInfo struct {
	TeamIndex int `json:"team_index"`
	Score     int `json:"score"`
}

// GameState is the snapshot broadcast to viewers as the "packet" event.
type GameState struct {
	GameCars []PlayerInfo `json:"game_cars"`
	GameBall BallInfo     `json:"game_ball"`
	GameInfo GameInfo     `json:"game_info"`
	Teams    []TeamInfo   `json:"teams"`
}

// Spectate is the "spectate" event payload. Both fields are nil when no
// player is spectated.
type Spectate struct {
	PlayerIndex *int        `json:"player_index"`
	Player      *PlayerInfo `json:"player"`
}
