package relay

// Vector3 is a raw position or direction as reported by the game.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Physics holds the physical state of a car or the ball.
type Physics struct {
	Location        Vector3 `json:"location"`
	Rotation        Vector3 `json:"rotation"`
	Velocity        Vector3 `json:"velocity"`
	AngularVelocity Vector3 `json:"angular_velocity"`
}

// TouchFrame is the last contact with the ball.
type TouchFrame struct {
	PlayerName  string  `json:"player_name"`
	GameSeconds float64 `json:"game_seconds"`
	Location    Vector3 `json:"location"`
	Normal      Vector3 `json:"normal"`
	Team        int     `json:"team"`
	PlayerIndex int     `json:"player_index"`
}

// BallFrame is the raw ball state. LatestTouch is nil until someone hits the ball.
type BallFrame struct {
	Physics     Physics     `json:"physics"`
	LatestTouch *TouchFrame `json:"latest_touch"`
}

// ScoreFrame holds per-player scoreboard counters.
type ScoreFrame struct {
	Score       int `json:"score"`
	Goals       int `json:"goals"`
	OwnGoals    int `json:"own_goals"`
	Assists     int `json:"assists"`
	Saves       int `json:"saves"`
	Shots       int `json:"shots"`
	Demolitions int `json:"demolitions"`
}

// PlayerFrame is the raw state of one car.
type PlayerFrame struct {
	Physics         Physics    `json:"physics"`
	ScoreInfo       ScoreFrame `json:"score_info"`
	IsDemolished    bool       `json:"is_demolished"`
	HasWheelContact bool       `json:"has_wheel_contact"`
	IsSupersonic    bool       `json:"is_supersonic"`
	IsBot           bool       `json:"is_bot"`
	Jumped          bool       `json:"jumped"`
	DoubleJumped    bool       `json:"double_jumped"`
	Name            string     `json:"name"`
	Team            int        `json:"team"`
	Boost           int        `json:"boost"`
}

// GameInfoFrame holds match clock and state flags.
// FrameNum never decreases within a session but may skip values.
type GameInfoFrame struct {
	SecondsElapsed    float64 `json:"seconds_elapsed"`
	GameTimeRemaining float64 `json:"game_time_remaining"`
	IsOvertime        bool    `json:"is_overtime"`
	IsUnlimitedTime   bool    `json:"is_unlimited_time"`
	IsRoundActive     bool    `json:"is_round_active"`
	IsKickoffPause    bool    `json:"is_kickoff_pause"`
	IsMatchEnded      bool    `json:"is_match_ended"`
	WorldGravityZ     float64 `json:"world_gravity_z"`
	GameSpeed         float64 `json:"game_speed"`
	FrameNum          int     `json:"frame_num"`
}

// TeamFrame carries the raw team score. The source stores it in a byte,
// so it can wrap around.
type TeamFrame struct {
	TeamIndex int `json:"team_index"`
	Score     int `json:"score"`
}

// Frame is one game tick packet from the upstream source.
type Frame struct {
	Players  []PlayerFrame `json:"players"`
	Ball     BallFrame     `json:"ball"`
	GameInfo GameInfoFrame `json:"game_info"`
	Teams    []TeamFrame   `json:"teams"`
}

// SpectateEvent reports which player the game camera follows.
// PlayerIndex is NoPlayer when nobody is spectated.
type SpectateEvent struct {
	PlayerIndex int     `json:"player_index"`
	Seconds     float64 `json:"seconds"`
	FrameNum    int     `json:"frame_num"`
}

// NoPlayer is the documented spectate sentinel for "no player".
const NoPlayer = -1

// ControllerState is a player's input at one tick.
type ControllerState struct {
	Throttle  float64 `json:"throttle"`
	Steer     float64 `json:"steer"`
	Pitch     float64 `json:"pitch"`
	Yaw       float64 `json:"yaw"`
	Roll      float64 `json:"roll"`
	Jump      bool    `json:"jump"`
	Boost     bool    `json:"boost"`
	Handbrake bool    `json:"handbrake"`
	UseItem   bool    `json:"use_item"`
}

// InputChangeEvent reports a change in a player's controller input.
type InputChangeEvent struct {
	PlayerIndex     int             `json:"player_index"`
	ControllerState ControllerState `json:"controller_state"`
	DodgeForward    float64         `json:"dodge_forward"`
	DodgeRight      float64         `json:"dodge_right"`
	Seconds         float64         `json:"seconds"`
	FrameNum        int             `json:"frame_num"`
}
