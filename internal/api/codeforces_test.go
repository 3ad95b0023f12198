package api

import (
	"testing"
)

func TestParseCodeforcesRating(t *testing.T) {
	body := []byte(`{
		"status": "OK",
		"result": [
			{"contestId": 1, "oldRating": 0, "newRating": 1450},
			{"contestId": 2, "oldRating": 1450, "newRating": 1580},
			{"contestId": 3, "oldRating": 1580, "newRating": 1510}
		]
	}`)

	stats, notFound, err := parseCodeforcesRating(body)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if notFound {
		t.Fatal("handle should be found")
	}
	if stats == nil {
		t.Fatal("expected stats")
	}
	if stats.Rating != 1510 {
		t.Errorf("rating = %d, want latest 1510", stats.Rating)
	}
	if stats.MaxRating != 1580 {
		t.Errorf("max rating = %d, want 1580", stats.MaxRating)
	}
	if stats.Contests != 3 {
		t.Errorf("contests = %d, want 3", stats.Contests)
	}
}

func TestParseCodeforcesRatingUnknownHandle(t *testing.T) {
	body := []byte(`{"status": "FAILED", "comment": "handles: User with handle nosuchuser not found"}`)

	stats, notFound, err := parseCodeforcesRating(body)
	if err != nil {
		t.Fatalf("unknown handle must not be an error: %v", err)
	}
	if !notFound {
		t.Fatal("expected notFound")
	}
	if stats != nil {
		t.Fatal("expected nil stats")
	}
}

func TestParseCodeforcesRatingUnrated(t *testing.T) {
	body := []byte(`{"status": "OK", "result": []}`)

	stats, notFound, err := parseCodeforcesRating(body)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if notFound {
		t.Fatal("unrated is not unknown")
	}
	if stats != nil {
		t.Fatal("unrated handle has no stats yet")
	}
}

func TestParseCodeforcesRatingFailure(t *testing.T) {
	if _, _, err := parseCodeforcesRating([]byte(`{"status": "FAILED", "comment": "Call limit exceeded"}`)); err == nil {
		t.Fatal("expected error for non-handle failure")
	}
	if _, _, err := parseCodeforcesRating([]byte(`<html>502</html>`)); err == nil {
		t.Fatal("expected error for junk body")
	}
}

func TestParseCodeforcesSolvedCountsDistinctProblems(t *testing.T) {
	body := []byte(`{
		"status": "OK",
		"result": [
			{"verdict": "OK", "problem": {"contestId": 100, "index": "A"}},
			{"verdict": "OK", "problem": {"contestId": 100, "index": "A"}},
			{"verdict": "WRONG_ANSWER", "problem": {"contestId": 100, "index": "B"}},
			{"verdict": "OK", "problem": {"contestId": 200, "index": "C"}}
		]
	}`)

	solved, err := parseCodeforcesSolved(body)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if solved != 2 {
		t.Errorf("solved = %d, want 2 distinct accepted problems", solved)
	}
}
