package model

import "testing"

func TestSortLinks_DisplayOrderThenID(t *testing.T) {
	t.Parallel()

	links := []Link{
		{ID: 1, DisplayOrder: 3},
		{ID: 3, DisplayOrder: 1},
		{ID: 2, DisplayOrder: 1},
		{ID: 4, DisplayOrder: 2},
	}

	SortLinks(links)

	want := []int64{2, 3, 4, 1}
	for i, id := range want {
		if links[i].ID != id {
			t.Errorf("links[%d].ID = %d, want %d", i, links[i].ID, id)
		}
	}
}

func TestSortLinks_Empty(t *testing.T) {
	t.Parallel()

	SortLinks(nil)
	SortLinks([]Link{})
}

func TestActiveLinks(t *testing.T) {
	t.Parallel()

	links := []Link{
		{ID: 1, IsActive: true},
		{ID: 2, IsActive: false},
		{ID: 3, IsActive: true},
	}

	got := ActiveLinks(links)
	if len(got) != 2 {
		t.Fatalf("len(ActiveLinks) = %d, want 2", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 3 {
		t.Errorf("ActiveLinks ids = [%d %d], want [1 3]", got[0].ID, got[1].ID)
	}
}

func TestNextDisplayOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		links []Link
		want  int
	}{
		{"empty", nil, 0},
		{"single", []Link{{DisplayOrder: 0}}, 1},
		{"gaps", []Link{{DisplayOrder: 2}, {DisplayOrder: 9}, {DisplayOrder: 4}}, 10},
		{"duplicates", []Link{{DisplayOrder: 5}, {DisplayOrder: 5}}, 6},
		{"negative", []Link{{DisplayOrder: -3}}, -2},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NextDisplayOrder(tt.links); got != tt.want {
				t.Errorf("NextDisplayOrder() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestProfileUpdate_IsEmpty(t *testing.T) {
	t.Parallel()

	var u ProfileUpdate
	if !u.IsEmpty() {
		t.Error("zero ProfileUpdate should be empty")
	}

	name := "Ada"
	u.DisplayName = &name
	if u.IsEmpty() {
		t.Error("ProfileUpdate with DisplayName should not be empty")
	}
}

func TestEventType_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   EventType
		want bool
	}{
		{EventProfileView, true},
		{EventLinkClick, true},
		{"click", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := tt.in.IsValid(); got != tt.want {
			t.Errorf("EventType(%q).IsValid() = %v, want %v", tt.in, got, tt.want)
		}
	}
}
