package domain

import (
	"time"
)

// DateLayout is the canonical form for calendar dates in the store.
// Every day and month boundary is computed in the club's fixed timezone.
const DateLayout = "2006-01-02"

type Platform string

const (
	PlatformCodeforces Platform = "codeforces"
	PlatformLeetCode   Platform = "leetcode"
	PlatformNone       Platform = ""
)

type Member struct {
	ID        int64
	RollNo    string
	Name      string
	Email     string
	Hostel    string
	Year      int
	DiscordID string

	// Competitive-programming link. An empty handle means the member never
	// opted in; Platform selects which client the refresher uses.
	Handle   string
	Platform Platform
	Rating   int

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Attendance struct {
	MemberID  int64
	Date      time.Time
	IsPresent bool
	TimeIn    string
	TimeOut   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StreakState is one row per member per calendar month. Month is the first
// day of that month in the fixed timezone.
type StreakState struct {
	MemberID int64
	Month    time.Time
	Streak   int
}

type CodeforcesStats struct {
	MemberID       int64
	Handle         string
	Rating         int
	MaxRating      int
	ProblemsSolved int
	Contests       int
	UpdatedAt      time.Time
}

type LeetCodeStats struct {
	MemberID       int64
	Username       string
	Ranking        int
	ProblemsSolved int
	EasySolved     int
	MediumSolved   int
	HardSolved     int
	UpdatedAt      time.Time
}

// PlatformStats is what a leaderboard client returns for one handle. A nil
// *PlatformStats with a nil error means the platform has no data for that
// handle, which is not a failure.
type PlatformStats struct {
	Rating         int
	MaxRating      int
	Ranking        int
	ProblemsSolved int
	EasySolved     int
	MediumSolved   int
	HardSolved     int
	Contests       int
}

// LeaderboardEntry is a member ranked by cached rating.
type LeaderboardEntry struct {
	MemberID int64
	Name     string
	Handle   string
	Platform Platform
	Rating   int
	Rank     int
}

// RunSummary aggregates one nightly rollover run.
type RunSummary struct {
	ID              string
	RunDate         time.Time
	Members         int
	Seeded          int
	SeedFailures    int
	Refreshed       int
	RefreshSkipped  int
	RefreshFailures int
	StreaksAdvanced int
	StreakFailures  int
	Anomalies       int
	StartedAt       time.Time
	FinishedAt      time.Time
}

type DailyCount struct {
	Date  string
	Count int
}
