package model

// Standing is one row of a ranked Swiss table
type Standing struct {
	Rank            int
	PlayerID        PlayerID
	Name            string
	Rating          float64
	Points          float64
	Buchholz        float64
	SonnebornBerger float64
	Wins            int
	Draws           int
	Losses          int
	Byes            int
}

// PlayerRanking is one row of the global leaderboard
type PlayerRanking struct {
	Rank     int
	PlayerID PlayerID
	Name     string
	Rating   float64
	Wins     int
	Draws    int
	Losses   int
}
