package standings

// fallbackTable is shown when the standings sheet cannot be read.
var fallbackTable = []TeamRecord{
	{Team: "Red Wings", Wins: 5, Losses: 2, Ties: 1, GamesPlayed: 8, GoalsScored: 25, Points: 11},
	{Team: "Maple Leafs", Wins: 4, Losses: 3, Ties: 1, GamesPlayed: 8, GoalsScored: 22, Points: 9},
	{Team: "Bruins", Wins: 3, Losses: 3, Ties: 2, GamesPlayed: 8, GoalsScored: 19, Points: 8},
	{Team: "Canadiens", Wins: 2, Losses: 5, Ties: 1, GamesPlayed: 8, GoalsScored: 15, Points: 5},
	{Team: "Lightning", Wins: 1, Losses: 6, Ties: 1, GamesPlayed: 8, GoalsScored: 12, Points: 3},
}

// Fallback returns a ranked copy of the static fallback table.
func Fallback() []TeamRecord {
	return Rank(fallbackTable)
}
