// Package soundtrack is the resilient client for the Soundtrack GraphQL
// API: a rate-limited low-level request runner, a token lifecycle manager
// for user-mode deployments, and typed operations with cursor pagination
// and cache-aside reads.
package soundtrack

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/zonetune/zonetune/internal/cache"
)

const (
	cacheKeyAccounts = "accounts"
	cacheKeyZones    = "zones"
)

func cacheKeyLibrary(accountID string) string {
	return "library:" + accountID
}

// Api exposes the typed Soundtrack operations the scheduler and the HTTP
// surface depend on. Cache may be nil to disable cache-aside reads.
type Api struct {
	client *Client
	cache  cache.Cache
}

func NewApi(client *Client, c cache.Cache) *Api {
	return &Api{client: client, cache: c}
}

// UserMode reports the underlying client's auth mode.
func (a *Api) UserMode() bool {
	return a.client.UserMode()
}

// Accounts lists all accounts visible to the credential.
func (a *Api) Accounts(ctx context.Context, skipCache bool) ([]Account, error) {
	return fetchCached(ctx, a.cache, cacheKeyAccounts, skipCache, func(ctx context.Context) ([]Account, error) {
		resp, err := a.client.Query(ctx, accountsQuery, map[string]any{}, nil)
		if err != nil {
			return nil, err
		}
		var data struct {
			Me struct {
				Accounts struct {
					Edges []struct {
						Node Account `json:"node"`
					} `json:"edges"`
				} `json:"accounts"`
			} `json:"me"`
		}
		if err := json.Unmarshal(resp.Data, &data); err != nil {
			return nil, fmt.Errorf("soundtrack: failed to parse accounts: %w", err)
		}
		accounts := make([]Account, 0, len(data.Me.Accounts.Edges))
		for _, edge := range data.Me.Accounts.Edges {
			accounts = append(accounts, edge.Node)
		}
		return accounts, nil
	})
}

func (a *Api) Account(ctx context.Context, accountID string) (*Account, error) {
	resp, err := a.client.Query(ctx, accountQuery, map[string]any{"id": accountID}, nil)
	if err != nil {
		return nil, err
	}
	var data struct {
		Account Account `json:"account"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("soundtrack: failed to parse account: %w", err)
	}
	return &data.Account, nil
}

type accountZoneNode struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Location *Location `json:"location"`
}

// AccountZones lists every zone of one account, following the cursor until
// the last page. Pages are accumulated in order.
func (a *Api) AccountZones(ctx context.Context, accountID string) ([]Zone, error) {
	var zones []Zone
	var cursor *string

	for {
		resp, err := a.client.Query(ctx, accountZonesQuery, map[string]any{
			"id":     accountID,
			"cursor": cursor,
		}, nil)
		if err != nil {
			return nil, err
		}

		var data struct {
			Account struct {
				ID         string `json:"id"`
				SoundZones struct {
					PageInfo PageInfo `json:"pageInfo"`
					Edges    []struct {
						Node accountZoneNode `json:"node"`
					} `json:"edges"`
				} `json:"soundZones"`
			} `json:"account"`
		}
		if err := json.Unmarshal(resp.Data, &data); err != nil {
			return nil, fmt.Errorf("soundtrack: failed to parse zones: %w", err)
		}

		for _, edge := range data.Account.SoundZones.Edges {
			zones = append(zones, Zone{
				ID:       edge.Node.ID,
				Name:     edge.Node.Name,
				Location: edge.Node.Location,
				Account:  AccountRef{ID: accountID},
			})
		}

		pageInfo := data.Account.SoundZones.PageInfo
		if !pageInfo.HasNextPage || pageInfo.EndCursor == nil {
			return zones, nil
		}
		cursor = pageInfo.EndCursor
	}
}

func (a *Api) Zone(ctx context.Context, zoneID string) (*Zone, error) {
	resp, err := a.client.Query(ctx, zoneQuery, map[string]any{"id": zoneID}, nil)
	if err != nil {
		return nil, err
	}
	var data struct {
		SoundZone Zone `json:"soundZone"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("soundtrack: failed to parse zone: %w", err)
	}
	return &data.SoundZone, nil
}

// Zones lists the zones of every visible account.
func (a *Api) Zones(ctx context.Context, skipCache bool) ([]Zone, error) {
	return fetchCached(ctx, a.cache, cacheKeyZones, skipCache, func(ctx context.Context) ([]Zone, error) {
		accounts, err := a.Accounts(ctx, skipCache)
		if err != nil {
			return nil, err
		}
		var zones []Zone
		for _, account := range accounts {
			accountZones, err := a.AccountZones(ctx, account.ID)
			if err != nil {
				return nil, err
			}
			zones = append(zones, accountZones...)
		}
		return zones, nil
	})
}

type libraryItem struct {
	Typename string `json:"__typename"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Display  struct {
		Image struct {
			Sizes struct {
				Thumbnail string `json:"thumbnail"`
			} `json:"sizes"`
		} `json:"image"`
	} `json:"display"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func (i libraryItem) assignable() Assignable {
	return Assignable{
		Kind:      i.Typename,
		ID:        i.ID,
		Name:      i.Name,
		ImageURL:  i.Display.Image.Sizes.Thumbnail,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

// Library lists the playlists and schedules of one account's music library.
func (a *Api) Library(ctx context.Context, accountID string, skipCache bool) (*Library, error) {
	library, err := fetchCached(ctx, a.cache, cacheKeyLibrary(accountID), skipCache, func(ctx context.Context) (Library, error) {
		resp, err := a.client.Query(ctx, libraryQuery, map[string]any{"accountId": accountID}, nil)
		if err != nil {
			return Library{}, err
		}
		var data struct {
			Account struct {
				MusicLibrary struct {
					Playlists struct {
						Edges []struct {
							Node libraryItem `json:"node"`
						} `json:"edges"`
					} `json:"playlists"`
					Schedules struct {
						Edges []struct {
							Node libraryItem `json:"node"`
						} `json:"edges"`
					} `json:"schedules"`
				} `json:"musicLibrary"`
			} `json:"account"`
		}
		if err := json.Unmarshal(resp.Data, &data); err != nil {
			return Library{}, fmt.Errorf("soundtrack: failed to parse library: %w", err)
		}

		library := Library{
			Playlists: make([]Assignable, 0, len(data.Account.MusicLibrary.Playlists.Edges)),
			Schedules: make([]Assignable, 0, len(data.Account.MusicLibrary.Schedules.Edges)),
		}
		for _, edge := range data.Account.MusicLibrary.Playlists.Edges {
			library.Playlists = append(library.Playlists, edge.Node.assignable())
		}
		for _, edge := range data.Account.MusicLibrary.Schedules.Edges {
			library.Schedules = append(library.Schedules, edge.Node.assignable())
		}
		return library, nil
	})
	if err != nil {
		return nil, err
	}
	return &library, nil
}

// Assignable resolves an opaque content id to a playlist or schedule. The
// remote API errors on whichever branch does not match, so partial data is
// requested and a nil result means not found.
func (a *Api) Assignable(ctx context.Context, assignableID string) (*Assignable, error) {
	resp, err := a.client.Query(ctx, assignableQuery, map[string]any{"assignableId": assignableID}, &RequestOptions{
		ErrorPolicy: ErrorPolicyAll,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		log.Info().Str("assignable_id", assignableID).Msg("Failed to get assignable")
		return nil, &ResponseError{Errors: resp.Errors}
	}

	var data struct {
		Playlist *libraryItem `json:"playlist"`
		Schedule *libraryItem `json:"schedule"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("soundtrack: failed to parse assignable: %w", err)
	}

	item := data.Playlist
	if item == nil {
		item = data.Schedule
	}
	if item == nil {
		return nil, nil
	}
	assignable := item.assignable()
	return &assignable, nil
}

// AssignMusic pushes a playable source onto one zone.
func (a *Api) AssignMusic(ctx context.Context, zoneID, playFromID string) error {
	_, err := a.client.Mutate(ctx, assignMutation, map[string]any{
		"zoneId":     zoneID,
		"playFromId": playFromID,
	}, nil)
	return err
}

// fetchCached is the cache-aside path: read the key, on a miss run fetch
// and write the serialized result through. skip forces a live fetch and
// suppresses the write-through.
func fetchCached[T any](ctx context.Context, c cache.Cache, key string, skip bool, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	if c != nil && !skip {
		raw, ok, err := c.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		} else if ok {
			var value T
			if err := json.Unmarshal([]byte(raw), &value); err == nil {
				return value, nil
			}
			log.Warn().Str("key", key).Msg("Discarding undecodable cache entry")
		}
	}

	value, err := fetch(ctx)
	if err != nil {
		return zero, err
	}

	if c != nil && !skip {
		if raw, err := json.Marshal(value); err == nil {
			if err := c.Set(ctx, key, string(raw)); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
			}
		}
	}
	return value, nil
}
