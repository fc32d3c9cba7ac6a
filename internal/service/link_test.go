package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkpage/linkpage/internal/apperror"
	"github.com/linkpage/linkpage/internal/metrics"
)

func newLinkService(store *fakeStore, c ProfileCache) (*LinkService, *metrics.InMemoryRecorder) {
	rec := metrics.NewInMemory()
	return NewLinkService(store, store, c, nil, rec), rec
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

func TestAddLink_Defaults(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	p := store.addProfile(1, "ada", true)
	store.addLink(p.ID, 4, true)
	c := newFakeCache()
	svc, rec := newLinkService(store, c)

	link, err := svc.AddLink(context.Background(), 1, AddLinkInput{Platform: "Instagram", Input: " @ada.codes "})
	require.NoError(t, err)

	assert.Equal(t, p.ID, link.ProfileID)
	assert.Equal(t, "instagram", link.Platform)
	assert.Equal(t, "https://instagram.com/ada.codes", link.URL)
	assert.Equal(t, "Instagram", link.Title)
	assert.Equal(t, "instagram", link.Icon)
	assert.Equal(t, 5, link.DisplayOrder)
	assert.True(t, link.IsActive)
	assert.Equal(t, uint64(1), rec.Snapshot().LinksCreated)
	assert.Contains(t, c.invalidated, "ada")
}

func TestAddLink_FirstLinkAndExplicitFields(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.addProfile(1, "grace", true)
	svc, _ := newLinkService(store, nil)
	ctx := context.Background()

	first, err := svc.AddLink(ctx, 1, AddLinkInput{Platform: "github", Input: "grace"})
	require.NoError(t, err)
	assert.Equal(t, 0, first.DisplayOrder)

	custom, err := svc.AddLink(ctx, 1, AddLinkInput{
		Platform:     "custom",
		Input:        "example.com/shop",
		Title:        "My shop",
		Icon:         "cart",
		DisplayOrder: intPtr(-1),
		IsActive:     boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/shop", custom.URL)
	assert.Equal(t, "My shop", custom.Title)
	assert.Equal(t, "cart", custom.Icon)
	assert.Equal(t, -1, custom.DisplayOrder)
	assert.False(t, custom.IsActive)
}

func TestAddLink_Errors(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.addProfile(1, "linus", true)
	svc, _ := newLinkService(store, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		userID int64
		in     AddLinkInput
		kind   error
		field  string
	}{
		{"no profile", 2, AddLinkInput{Platform: "github", Input: "x"}, apperror.ErrNotFound, ""},
		{"unknown platform", 1, AddLinkInput{Platform: "myspace", Input: "x"}, apperror.ErrValidation, "platform"},
		{"empty input", 1, AddLinkInput{Platform: "github", Input: "  "}, apperror.ErrValidation, "input"},
		{"bad email", 1, AddLinkInput{Platform: "email", Input: "not-an-email"}, apperror.ErrValidation, "input"},
		{"short phone", 1, AddLinkInput{Platform: "whatsapp", Input: "123"}, apperror.ErrValidation, "input"},
		{"script url", 1, AddLinkInput{Platform: "custom", Input: "javascript:alert(1)"}, apperror.ErrValidation, "input"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.AddLink(ctx, tt.userID, tt.in)
			require.ErrorIs(t, err, tt.kind)
			if tt.field != "" {
				var ae *apperror.Error
				require.ErrorAs(t, err, &ae)
				assert.Equal(t, tt.field, ae.Field)
				assert.NotEmpty(t, ae.Message)
			}
		})
	}
}

func TestUpdateLink(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	p := store.addProfile(1, "owner", true)
	store.addProfile(2, "intruder", true)
	link := store.addLink(p.ID, 0, true)
	svc, rec := newLinkService(store, newFakeCache())
	ctx := context.Background()

	_, err := svc.UpdateLink(ctx, 2, link.ID, UpdateLinkInput{Title: strPtr("Hijacked")})
	require.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.UpdateLink(ctx, 3, link.ID, UpdateLinkInput{Title: strPtr("No profile")})
	require.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.UpdateLink(ctx, 1, 9999, UpdateLinkInput{Title: strPtr("Missing")})
	require.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.UpdateLink(ctx, 1, link.ID, UpdateLinkInput{Platform: strPtr("telegram")})
	require.ErrorIs(t, err, apperror.ErrValidation, "switching platform needs new input")

	got, err := svc.UpdateLink(ctx, 1, link.ID, UpdateLinkInput{Platform: strPtr("telegram"), Input: strPtr("@ada")})
	require.NoError(t, err)
	assert.Equal(t, "telegram", got.Platform)
	assert.Equal(t, "https://t.me/ada", got.URL)

	got, err = svc.UpdateLink(ctx, 1, link.ID, UpdateLinkInput{Input: strPtr("grace")})
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/grace", got.URL)

	got, err = svc.UpdateLink(ctx, 1, link.ID, UpdateLinkInput{Title: strPtr(" "), IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, "Telegram", got.Title, "blank title falls back to the platform name")
	assert.False(t, got.IsActive)

	assert.Equal(t, uint64(3), rec.Snapshot().LinksUpdated)
}

func TestReorderLinks(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	p := store.addProfile(1, "sorter", true)
	other := store.addProfile(2, "other", true)
	a := store.addLink(p.ID, 0, true)
	b := store.addLink(p.ID, 1, true)
	foreign := store.addLink(other.ID, 0, true)
	svc, _ := newLinkService(store, nil)
	ctx := context.Background()

	err := svc.ReorderLinks(ctx, 1, []int64{b.ID, foreign.ID, a.ID})
	require.ErrorIs(t, err, apperror.ErrUnauthorized)

	err = svc.ReorderLinks(ctx, 1, []int64{a.ID, a.ID})
	require.ErrorIs(t, err, apperror.ErrValidation)

	require.NoError(t, svc.ReorderLinks(ctx, 1, nil))
	require.NoError(t, svc.ReorderLinks(ctx, 1, []int64{b.ID, a.ID}))

	links, err := svc.ListLinks(ctx, 1)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, b.ID, links[0].ID)
	assert.Equal(t, 0, links[0].DisplayOrder)
	assert.Equal(t, a.ID, links[1].ID)
	assert.Equal(t, 1, links[1].DisplayOrder)
}

func TestDeleteLink(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	p := store.addProfile(1, "deleter", true)
	store.addProfile(2, "other", true)
	l := store.addLink(p.ID, 0, true)
	svc, rec := newLinkService(store, nil)
	ctx := context.Background()

	require.ErrorIs(t, svc.DeleteLink(ctx, 2, l.ID), apperror.ErrUnauthorized)
	require.NoError(t, svc.DeleteLink(ctx, 1, l.ID))
	require.ErrorIs(t, svc.DeleteLink(ctx, 1, l.ID), apperror.ErrNotFound)
	assert.Equal(t, uint64(1), rec.Snapshot().LinksDeleted)
}

func TestPublicLink(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	live := store.addProfile(1, "live", true)
	hidden := store.addProfile(2, "hidden", false)
	ok := store.addLink(live.ID, 0, true)
	off := store.addLink(live.ID, 1, false)
	onHidden := store.addLink(hidden.ID, 0, true)
	svc, _ := newLinkService(store, nil)
	ctx := context.Background()

	got, err := svc.PublicLink(ctx, ok.ID)
	require.NoError(t, err)
	assert.Equal(t, ok.URL, got.URL)

	for _, id := range []int64{off.ID, onHidden.ID, 12345} {
		_, err := svc.PublicLink(ctx, id)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	}
}
