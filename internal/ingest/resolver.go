package ingest

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/ludic-labs/gamerec/internal/domain"
	"github.com/ludic-labs/gamerec/internal/igdb"
)

// tagStore is the consumer interface over the catalog repository.
type tagStore interface {
	FindTags(ctx context.Context, class string, igdbIDs []int64) ([]domain.GameTag, error)
	UpsertTag(ctx context.Context, tag *domain.GameTag) (domain.GameTag, error)
}

// tagClient is the consumer interface over the API client.
type tagClient interface {
	FetchTags(ctx context.Context, class string, igdbIDs []int64) ([]igdb.Tag, error)
}

// TagResolver resolves packed tag numbers against the local tag cache,
// fetching and persisting unknown tags from the API.
type TagResolver struct {
	store  tagStore
	client tagClient
	logger *zap.Logger
}

// NewTagResolver creates a resolver.
func NewTagResolver(store tagStore, client tagClient, logger *zap.Logger) *TagResolver {
	return &TagResolver{store: store, client: client, logger: logger}
}

// Resolve decodes tag numbers and returns the matching tags in input order.
// Undecodable numbers are dropped; decoded ids the API no longer knows are
// logged and skipped.
func (r *TagResolver) Resolve(ctx context.Context, tagNumbers []int64) ([]domain.GameTag, error) {
	refs := decodeAll(tagNumbers)
	if len(refs) == 0 {
		return nil, nil
	}

	resolved := map[tagKey]domain.GameTag{}
	for class, ids := range groupByClass(refs) {
		if err := r.resolveClass(ctx, class, ids, resolved); err != nil {
			return nil, err
		}
	}

	var tags []domain.GameTag
	seen := map[tagKey]struct{}{}
	for _, ref := range refs {
		key := tagKey{class: ref.Class, igdbID: ref.IGDBID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		tag, ok := resolved[key]
		if !ok {
			r.logger.Warn("tag not resolvable",
				zap.String("class", ref.Class), zap.Int64("igdb_id", ref.IGDBID))
			continue
		}
		tags = append(tags, tag)
	}

	r.logger.Debug("tags resolved",
		zap.Int("requested", len(refs)), zap.Int("resolved", len(tags)))
	return tags, nil
}

type tagKey struct {
	class  string
	igdbID int64
}

func (r *TagResolver) resolveClass(
	ctx context.Context, class string, ids []int64, resolved map[tagKey]domain.GameTag,
) error {
	cached, err := r.store.FindTags(ctx, class, ids)
	if err != nil {
		return fmt.Errorf("lookup cached tags: %w", err)
	}
	known := map[int64]struct{}{}
	for _, tag := range cached {
		resolved[tagKey{class: class, igdbID: tag.IGDBID}] = tag
		known[tag.IGDBID] = struct{}{}
	}

	var missing []int64
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	fetched, err := r.client.FetchTags(ctx, class, missing)
	if err != nil {
		return fmt.Errorf("fetch %s tags: %w", class, err)
	}
	for _, apiTag := range fetched {
		stored, err := r.store.UpsertTag(ctx, &domain.GameTag{
			Slug:   normalizeSlug(apiTag.Slug, apiTag.Name, apiTag.ID),
			Label:  apiTag.Name,
			Class:  class,
			IGDBID: apiTag.ID,
		})
		if err != nil {
			return fmt.Errorf("save tag %q: %w", apiTag.Name, err)
		}
		resolved[tagKey{class: class, igdbID: stored.IGDBID}] = stored
	}
	return nil
}

func decodeAll(tagNumbers []int64) []TagRef {
	var refs []TagRef
	for _, number := range tagNumbers {
		if ref, ok := DecodeTagNumber(number); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

func groupByClass(refs []TagRef) map[string][]int64 {
	grouped := map[string][]int64{}
	for _, ref := range refs {
		ids := grouped[ref.Class]
		if !containsID(ids, ref.IGDBID) {
			grouped[ref.Class] = append(ids, ref.IGDBID)
		}
	}
	return grouped
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

var slugCleanup = regexp.MustCompile(`[^a-z0-9]+`)

func normalizeSlug(slug, name string, igdbID int64) string {
	if slug != "" {
		return slug
	}
	normalized := strings.Trim(slugCleanup.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if normalized == "" {
		return fmt.Sprintf("tag-%d", igdbID)
	}
	return normalized
}
