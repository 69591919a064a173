package queue

import "testing"

func TestFeedEventRoundTrip(t *testing.T) {
	event := NewPostCreatedEvent(21, 3, 10, 5)

	values, err := event.ToMap()
	if err != nil {
		t.Fatalf("ToMap failed: %v", err)
	}
	if values["type"] != EventPostCreated {
		t.Errorf("type field = %v, want %s", values["type"], EventPostCreated)
	}

	parsed, err := ParseFeedEvent(values)
	if err != nil {
		t.Fatalf("ParseFeedEvent failed: %v", err)
	}
	if parsed.PostID != 21 || parsed.AuthorID != 3 || parsed.ParentID != 10 || parsed.ParentAuthorID != 5 {
		t.Errorf("parsed = %+v", parsed)
	}
	if parsed.Timestamp == 0 {
		t.Error("timestamp should be set")
	}
}

func TestParseFeedEvent_Malformed(t *testing.T) {
	for name, values := range map[string]map[string]interface{}{
		"missing data": {"type": EventPostLiked},
		"bad json":     {"type": EventPostLiked, "data": "{nope"},
	} {
		if _, err := ParseFeedEvent(values); err == nil {
			t.Errorf("%s: expected a parse error", name)
		}
	}
}
