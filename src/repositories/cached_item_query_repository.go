package repositories

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"agendaapi/src/domain"
	"agendaapi/src/domain/entities"
	"agendaapi/src/infra/redis"
)

const (
	itemListRegistryKey    = "registry:item-list"
	itemListGenerationKey  = "generation:item-list"
	cacheSetTimeout        = 2 * time.Second
	cacheInvalidateTimeout = 5 * time.Second
)

type ItemReader interface {
	GetItem(ctx context.Context, id int64) (entities.Item, error)
	ListItems(ctx context.Context, filter domain.ItemFilter) ([]entities.Item, error)
}

// CachedItemQueryRepository decora o repositório de leitura com Redis.
// Com redisClient nil as leituras vão direto ao Postgres.
type CachedItemQueryRepository struct {
	itemQueryRepository ItemReader
	redisClient         *redis.RedisClient
}

func NewCachedItemQueryRepository(itemQueryRepository ItemReader, redisClient *redis.RedisClient) *CachedItemQueryRepository {
	return &CachedItemQueryRepository{
		itemQueryRepository: itemQueryRepository,
		redisClient:         redisClient,
	}
}

func (r *CachedItemQueryRepository) GetItem(ctx context.Context, id int64) (entities.Item, error) {
	if r.redisClient == nil {
		return r.itemQueryRepository.GetItem(ctx, id)
	}

	cacheKey := fmt.Sprintf("agenda:item:%d", id)

	var cached entities.Item
	found, err := r.getFromCache(ctx, cacheKey, &cached)
	if found && err == nil {
		return cached, nil
	}
	if err != nil {
		log.Printf("Cache error for key %s: %v", cacheKey, err)
	}

	generationKeys := []string{itemGenerationKey(id)}
	generations, genErr := r.redisClient.Generations(ctx, generationKeys)

	item, err := r.itemQueryRepository.GetItem(ctx, id)
	if err != nil {
		return entities.Item{}, err
	}

	if genErr != nil {
		log.Printf("Cache generation error for key %s: %v", cacheKey, genErr)
	} else {
		r.fill(ctx, cacheKey, item, []entities.Item{item}, false, generationKeys, generations)
	}

	return item, nil
}

func (r *CachedItemQueryRepository) ListItems(ctx context.Context, filter domain.ItemFilter) ([]entities.Item, error) {
	if r.redisClient == nil {
		return r.itemQueryRepository.ListItems(ctx, filter)
	}

	cacheKey := r.generateListCacheKey(filter)

	var cached []entities.Item
	found, err := r.getFromCache(ctx, cacheKey, &cached)
	if found && err == nil {
		return cached, nil
	}
	if err != nil {
		log.Printf("Cache error for key %s: %v", cacheKey, err)
	}

	generationKeys := []string{itemListGenerationKey}
	generations, genErr := r.redisClient.Generations(ctx, generationKeys)

	items, err := r.itemQueryRepository.ListItems(ctx, filter)
	if err != nil {
		return nil, err
	}

	if genErr != nil {
		log.Printf("Cache generation error for key %s: %v", cacheKey, genErr)
	} else {
		r.fill(ctx, cacheKey, items, items, true, generationKeys, generations)
	}

	return items, nil
}

// InvalidateByItemIDs apaga toda chave que contém algum dos itens e todas as listagens,
// já que uma escrita pode mudar quem entra em um filtro. Antes disso incrementa as
// gerações, para que leituras em andamento não gravem o estado anterior.
func (r *CachedItemQueryRepository) InvalidateByItemIDs(ctx context.Context, itemIDs []int64) error {
	if r.redisClient == nil {
		return nil
	}

	generationKeys := make([]string, 0, len(itemIDs)+1)
	for _, itemID := range itemIDs {
		generationKeys = append(generationKeys, itemGenerationKey(itemID))
	}
	generationKeys = append(generationKeys, itemListGenerationKey)
	if err := r.redisClient.BumpGenerations(ctx, generationKeys); err != nil {
		return fmt.Errorf("failed to bump generations: %w", err)
	}

	registryKeys := make([]string, 0, len(itemIDs)+1)
	for _, itemID := range itemIDs {
		registryKeys = append(registryKeys, itemRegistryKey(itemID))
	}
	registryKeys = append(registryKeys, itemListRegistryKey)

	registryResults, err := r.redisClient.GetMultipleSetMembers(ctx, registryKeys)
	if err != nil {
		return fmt.Errorf("failed to get registry data: %w", err)
	}

	keysToDelete := make([]string, 0)
	seen := make(map[string]bool)
	for registryKey, relatedKeys := range registryResults {
		for _, key := range append(relatedKeys, registryKey) {
			if !seen[key] {
				seen[key] = true
				keysToDelete = append(keysToDelete, key)
			}
		}
	}
	for _, itemID := range itemIDs {
		key := fmt.Sprintf("agenda:item:%d", itemID)
		if !seen[key] {
			keysToDelete = append(keysToDelete, key)
		}
	}

	return r.redisClient.InvalidateKeys(ctx, keysToDelete)
}

func (r *CachedItemQueryRepository) generateListCacheKey(filter domain.ItemFilter) string {
	keyData, _ := json.Marshal(filter)
	hash := md5.Sum(keyData)
	return fmt.Sprintf("agenda:items:%x", hash)
}

func (r *CachedItemQueryRepository) getFromCache(ctx context.Context, cacheKey string, dst interface{}) (bool, error) {
	cachedJSON, found, err := r.redisClient.GetKey(ctx, cacheKey)
	if !found || err != nil {
		return found, err
	}

	if err := json.Unmarshal([]byte(cachedJSON), dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached data: %w", err)
	}

	return true, nil
}

// fill grava o resultado lido do banco, a menos que uma escrita tenha
// invalidado as chaves desde que a leitura começou.
func (r *CachedItemQueryRepository) fill(
	ctx context.Context,
	cacheKey string,
	value interface{},
	items []entities.Item,
	isList bool,
	generationKeys []string,
	readGenerations map[string]int64,
) {
	registryKeys := make([]string, 0, len(items)+1)
	for _, item := range items {
		registryKeys = append(registryKeys, itemRegistryKey(item.ID))
	}
	if isList {
		registryKeys = append(registryKeys, itemListRegistryKey)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheSetTimeout)
	defer cancel()

	current, err := r.redisClient.Generations(ctx, generationKeys)
	if err != nil {
		log.Printf("Cache generation error for key %s: %v", cacheKey, err)
		return
	}
	for _, key := range generationKeys {
		if current[key] != readGenerations[key] {
			return
		}
	}

	dataJSON, err := json.Marshal(value)
	if err != nil {
		log.Printf("Failed to marshal cache data for key %s: %v", cacheKey, err)
		return
	}

	if err := r.redisClient.SetWithRegistry(ctx, cacheKey, string(dataJSON), registryKeys); err != nil {
		log.Printf("Failed to set cache with registry for key %s: %v", cacheKey, err)
	}
}

func itemRegistryKey(itemID int64) string {
	return fmt.Sprintf("registry:item:%d", itemID)
}

func itemGenerationKey(itemID int64) string {
	return fmt.Sprintf("generation:item:%d", itemID)
}
