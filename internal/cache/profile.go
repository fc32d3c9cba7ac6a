package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/linkpage/linkpage/internal/model"
)

const (
	profileKeyPrefix  = "profile:"
	negCacheKeySuffix = ":neg"
	genKeySuffix      = ":gen"
)

// ErrStaleGeneration is returned when a write is skipped because the
// username was invalidated after its generation was read.
var ErrStaleGeneration = errors.New("profile cache generation changed")

// setProfileScript writes the positive entry and clears the negative one only
// while the generation still matches ARGV[1].
var setProfileScript = redis.NewScript(`
	local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
	if cur ~= tonumber(ARGV[1]) then
		return 0
	end
	redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
	redis.call('DEL', KEYS[3])
	return 1
`)

// setNegativeScript writes the negative entry under the same generation check.
var setNegativeScript = redis.NewScript(`
	local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
	if cur ~= tonumber(ARGV[1]) then
		return 0
	end
	redis.call('SET', KEYS[2], '', 'PX', ARGV[2])
	return 1
`)

// cachedProfile keeps the fields model.Profile hides from JSON.
type cachedProfile struct {
	Profile            model.Profile `json:"profile"`
	UserID             int64         `json:"user_id"`
	BackgroundSettings string        `json:"background_settings"`
	Links              []model.Link  `json:"links"`
}

func profileKey(username string) string {
	return profileKeyPrefix + username
}

func negativeProfileKey(username string) string {
	return profileKeyPrefix + username + negCacheKeySuffix
}

func generationKey(username string) string {
	return profileKeyPrefix + username + genKeySuffix
}

func encodeProfile(p *model.PublicProfile) ([]byte, error) {
	return json.Marshal(cachedProfile{
		Profile:            p.Profile,
		UserID:             p.Profile.UserID,
		BackgroundSettings: p.Profile.BackgroundSettings,
		Links:              p.Links,
	})
}

func decodeProfile(data []byte) (*model.PublicProfile, error) {
	var cached cachedProfile
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	p := &model.PublicProfile{Profile: cached.Profile, Links: cached.Links}
	p.Profile.UserID = cached.UserID
	p.Profile.BackgroundSettings = cached.BackgroundSettings
	if p.Links == nil {
		p.Links = []model.Link{}
	}
	model.SortLinks(p.Links)
	return p, nil
}

// GetPublicProfile retrieves a resolved profile by normalized username.
// Returns ErrCacheMiss if absent; corrupted entries are dropped and reported
// as a miss.
func (c *Cache) GetPublicProfile(ctx context.Context, username string) (*model.PublicProfile, error) {
	key := profileKey(username)

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	p, err := decodeProfile(data)
	if err != nil {
		c.client.Del(ctx, key)
		return nil, ErrCacheMiss
	}

	return p, nil
}

// ProfileGeneration returns the invalidation counter for username. Read it
// before loading from the database and pass it to SetPublicProfile or
// SetNegativeCache.
func (c *Cache) ProfileGeneration(ctx context.Context, username string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(username)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read profile generation: %w", err)
	}
	return gen, nil
}

// SetPublicProfile stores a resolved profile and clears any negative entry.
// Returns ErrStaleGeneration without writing if the username was invalidated
// since gen was read.
func (c *Cache) SetPublicProfile(ctx context.Context, p *model.PublicProfile, gen int64) error {
	data, err := encodeProfile(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	name := p.Profile.Username
	written, err := setProfileScript.Run(ctx, c.client,
		[]string{generationKey(name), profileKey(name), negativeProfileKey(name)},
		gen, data, c.profileTTL.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("failed to cache profile: %w", err)
	}
	if written == 0 {
		return ErrStaleGeneration
	}

	return nil
}

// IsNegativelyCached checks if a username is in negative cache.
func (c *Cache) IsNegativelyCached(ctx context.Context, username string) (bool, error) {
	exists, err := c.client.Exists(ctx, negativeProfileKey(username)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check negative cache: %w", err)
	}

	return exists > 0, nil
}

// SetNegativeCache marks a username as not resolvable, under the same
// generation check as SetPublicProfile.
func (c *Cache) SetNegativeCache(ctx context.Context, username string, gen int64) error {
	written, err := setNegativeScript.Run(ctx, c.client,
		[]string{generationKey(username), negativeProfileKey(username)},
		gen, c.negativeTTL.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("failed to set negative cache: %w", err)
	}
	if written == 0 {
		return ErrStaleGeneration
	}

	return nil
}

// InvalidateProfile removes positive and negative entries for every given
// username and bumps its generation, so loads that started earlier cannot
// write their result back. A rename passes both the old and the new name.
func (c *Cache) InvalidateProfile(ctx context.Context, usernames ...string) error {
	if len(usernames) == 0 {
		return nil
	}

	pipe := c.client.TxPipeline()
	queued := false
	for _, u := range usernames {
		if u == "" {
			continue
		}
		pipe.Incr(ctx, generationKey(u))
		pipe.Del(ctx, profileKey(u), negativeProfileKey(u))
		queued = true
	}
	if !queued {
		return nil
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate profile cache: %w", err)
	}

	return nil
}
