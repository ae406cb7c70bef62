package models

import "testing"

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare name", "kojied", "kojied"},
		{"full profile url", "https://www.reddit.com/user/kojied/", "kojied"},
		{"profile url without trailing slash", "https://www.reddit.com/user/kojied", "kojied"},
		{"old reddit url", "https://old.reddit.com/user/spez/", "spez"},
		{"short form", "/u/kojied", "kojied"},
		{"short form with trailing slash", "/u/kojied/", "kojied"},
		{"surrounding whitespace", "  kojied  ", "kojied"},
		{"leading slash only", "/kojied/", "kojied"},
		{"underscore name", "Hungry-Move-6603", "Hungry-Move-6603"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeUsername(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeUsername(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUsable(t *testing.T) {
	var nilResult *AcquisitionResult
	if nilResult.Usable() {
		t.Error("nil result should not be usable")
	}

	empty := &AcquisitionResult{Username: "kojied"}
	if empty.Usable() {
		t.Error("empty result should not be usable")
	}

	onlyComments := &AcquisitionResult{
		Username: "kojied",
		Comments: []Comment{{ID: "c1", Body: "hello"}},
	}
	if !onlyComments.Usable() {
		t.Error("result with only comments should be usable")
	}

	onlyPosts := &AcquisitionResult{
		Username:    "kojied",
		Submissions: []Post{{ID: "p1", Title: "hello"}},
	}
	if !onlyPosts.Usable() {
		t.Error("result with only submissions should be usable")
	}
}
