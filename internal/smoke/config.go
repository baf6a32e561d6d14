package smoke

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL string        // Base URL of the service
	Votes   int           // Number of random votes to cast
	Timeout time.Duration // HTTP request timeout (refresh included)
	Seed    uint64        // Seed for vote selection; 0 picks one from the clock
	Verbose bool          // Log every vote
}

// Joke is one board entry as returned by the API.
type Joke struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

// Status is the board status as returned by the API.
type Status struct {
	State      string    `json:"state"`
	Generation uint64    `json:"generation"`
	LastError  string    `json:"last_error"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Board is the body of every /jokes response.
type Board struct {
	Status Status `json:"status"`
	Jokes  []Joke `json:"jokes"`
}

// Stats holds run statistics.
type Stats struct {
	JokesLoaded    int
	VotesCast      int
	VotesUp        int
	VotesDown      int
	ChecksPassed   int
	RoundTrips     int
	UnknownVotes   int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	RefreshTook    time.Duration
	MaxVoteLatency time.Duration
}
