package database

import "time"

// MapStatsRecord represents a map stats row in the database.
type MapStatsRecord struct {
	Filename  string
	Detected  time.Time
	ForcedOld bool
	Likes     int
	Dislikes  int
}
