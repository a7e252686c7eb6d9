// Package state converts raw game tick packets into the snapshot viewers receive.
package state

import "github.com/twobackfromtheend/rlbot-overlay-script/internal/relay"

// FromFrame builds a GameState from one game tick packet. It does not modify frame.
func FromFrame(frame *relay.Frame) GameState {
	cars := make([]PlayerInfo, 0, len(frame.Players))
	for _, p := range frame.Players {
		cars = append(cars, PlayerFromFrame(p))
	}

	teams := make([]TeamInfo, 0, len(frame.Teams))
	for _, t := range frame.Teams {
		teams = append(teams, TeamInfo{
			TeamIndex: t.TeamIndex,
			Score:     t.Score,
		})
	}

	return GameState{
		GameCars: cars,
		GameBall: ballFromFrame(frame.Ball),
		GameInfo: gameInfoFromFrame(frame.GameInfo),
		Teams:    teams,
	}
}

// PlayerFromFrame converts a single car.
func PlayerFromFrame(p relay.PlayerFrame) PlayerInfo {
	return PlayerInfo{
		Location:        vectorFromFrame(p.Physics.Location),
		IsDemolished:    p.IsDemolished,
		HasWheelContact: p.HasWheelContact,
		IsSupersonic:    p.IsSupersonic,
		IsBot:           p.IsBot,
		Name:            p.Name,
		Team:            p.Team,
		Boost:           p.Boost,
		ScoreInfo: ScoreInfo{
			Score:       p.ScoreInfo.Score,
			Goals:       p.ScoreInfo.Goals,
			OwnGoals:    p.ScoreInfo.OwnGoals,
			Assists:     p.ScoreInfo.Assists,
			Saves:       p.ScoreInfo.Saves,
			Shots:       p.ScoreInfo.Shots,
			Demolitions: p.ScoreInfo.Demolitions,
		},
	}
}

func ballFromFrame(b relay.BallFrame) BallInfo {
	ball := BallInfo{Location: vectorFromFrame(b.Physics.Location)}
	if t := b.LatestTouch; t != nil {
		ball.LatestTouch = &Touch{
			PlayerName:  t.PlayerName,
			TimeSeconds: Float(t.GameSeconds),
			HitLocation: vectorFromFrame(t.Location),
			Team:        t.Team,
			PlayerIndex: t.PlayerIndex,
		}
	}
	return ball
}

func gameInfoFromFrame(g relay.GameInfoFrame) GameInfo {
	return GameInfo{
		SecondsElapsed:    Float(g.SecondsElapsed),
		GameTimeRemaining: Float(g.GameTimeRemaining),
		IsOvertime:        g.IsOvertime,
		IsUnlimitedTime:   g.IsUnlimitedTime,
		IsRoundActive:     g.IsRoundActive,
		IsKickoffPause:    g.IsKickoffPause,
		IsMatchEnded:      g.IsMatchEnded,
		FrameNum:          g.FrameNum,
	}
}

func vectorFromFrame(v relay.Vector3) Vector3 {
	return Vector3{X: Float(v.X), Y: Float(v.Y), Z: Float(v.Z)}
}
