package docs

import (
	"bufio"
	"regexp"
	"slices"
	"strings"
	"testing"
)

// TestTopics checks the readme lists every topic, and only existing ones.
func TestTopics(t *testing.T) {
	readme, err := GetTopic(Readme)
	if err != nil {
		t.Fatalf("GetTopic(readme) error: %v", err)
	}

	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	var listed []string
	scanner := bufio.NewScanner(strings.NewReader(readme))
	for scanner.Scan() {
		if m := topicRegex.FindStringSubmatch(scanner.Text()); len(m) > 1 {
			listed = append(listed, strings.TrimSpace(m[1]))
		}
	}

	for _, topic := range listed {
		t.Run("load_"+topic, func(t *testing.T) {
			if _, err := GetTopic(topic); err != nil {
				t.Errorf("GetTopic(%q) error: %v", topic, err)
			}
		})
	}

	all, err := GetAllTopics()
	if err != nil {
		t.Fatalf("GetAllTopics() error: %v", err)
	}
	for _, topic := range all {
		if !slices.Contains(listed, topic) {
			t.Errorf("topic %q is not listed in the readme", topic)
		}
	}
}

func TestGetTopics(t *testing.T) {
	all, err := GetTopics("*")
	if err != nil {
		t.Fatalf("GetTopics(*) error: %v", err)
	}
	for _, heading := range []string{"# Configuration", "# Ledger", "# Valuation", "# API"} {
		if !strings.Contains(all, heading) {
			t.Errorf("GetTopics(*) does not contain %q", heading)
		}
	}
	if strings.Contains(all, "# dash\n") {
		t.Error("GetTopics(*) contains the readme")
	}
	if _, err := GetTopics("nope"); err == nil {
		t.Error("GetTopics(nope) want error")
	}
}
