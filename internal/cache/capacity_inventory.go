package cache

import (
	"context"
	"errors"
	"fmt"

	apperrors "supper-club/pkg/app_errors"

	"github.com/redis/go-redis/v9"
)

// RedisCapacityInventoryManager 在 Redis 維護活動剩餘名額的快取，
// 作為報名高峰時的快速擋板；資料庫 transaction 仍是最終依據。
type RedisCapacityInventoryManager interface {
	// 預熱：把活動的剩餘名額載入 Redis
	WarmUpInventory(ctx context.Context, eventID int, spotsLeft int) error
	// 獲取：讀取活動的剩餘名額
	GetSpotsLeft(ctx context.Context, eventID int) (int, error)
	// 預留：扣掉名額 (使用Lua腳本確保原子性)
	ReserveSpots(ctx context.Context, eventID int, quantity int) (bool, error)
	// 回滾：歸還名額 (只在 key 存在時生效)
	ReleaseSpots(ctx context.Context, eventID int, quantity int) error
	// 移除：活動刪除時清掉快取
	DropInventory(ctx context.Context, eventID int) error
}

type RedisCapacityInventoryManagerImpl struct {
	client *redis.Client
}

func NewRedisCapacityInventoryManager(client *redis.Client) RedisCapacityInventoryManager {
	return &RedisCapacityInventoryManagerImpl{
		client: client,
	}
}

func (m *RedisCapacityInventoryManagerImpl) getSpotsKey(eventID int) string {
	return fmt.Sprintf("event:%d:spots", eventID)
}

func (m *RedisCapacityInventoryManagerImpl) WarmUpInventory(ctx context.Context, eventID int, spotsLeft int) error {
	key := m.getSpotsKey(eventID)
	return m.client.Set(ctx, key, spotsLeft, 0).Err()
}

func (m *RedisCapacityInventoryManagerImpl) GetSpotsLeft(ctx context.Context, eventID int) (int, error) {
	key := m.getSpotsKey(eventID)
	val, err := m.client.Get(ctx, key).Int()
	if err == redis.Nil {
		return -1, apperrors.ErrEventNotFound
	}
	return val, err
}

/*
	預留名額 (使用Lua腳本確保原子性)
	1. 檢查快取是否預熱
	2. 檢查剩餘名額
	3. 執行扣減
*/
func (m *RedisCapacityInventoryManagerImpl) ReserveSpots(ctx context.Context, eventID int, quantity int) (bool, error) {
	key := m.getSpotsKey(eventID)

	script := `
		local spots_key = KEYS[1]
		local request_qty = tonumber(ARGV[1])

		local spots = redis.call('GET', spots_key)

		-- 快取未預熱：交給資料庫判斷
		if not spots then
			return -2
		end

		-- 剩餘名額不足
		if tonumber(spots) < request_qty then
			return -1
		end

		redis.call('DECRBY', spots_key, request_qty)
		return 1
	`

	result, err := m.client.Eval(ctx, script, []string{key}, quantity).Result()
	if err != nil {
		return false, err
	}

	code := result.(int64)
	switch code {
	case 1:
		return true, nil
	case -1:
		return false, apperrors.ErrCapacityExceeded
	case -2:
		return false, apperrors.ErrEventNotFound
	default:
		return false, errors.New("unexpected result")
	}
}

func (m *RedisCapacityInventoryManagerImpl) ReleaseSpots(ctx context.Context, eventID int, quantity int) error {
	key := m.getSpotsKey(eventID)

	// key 不存在時不要憑空造出名額
	script := `
		local spots_key = KEYS[1]
		local release_qty = tonumber(ARGV[1])

		if redis.call('EXISTS', spots_key) == 0 then
			return 0
		end

		redis.call('INCRBY', spots_key, release_qty)
		return 1
	`

	_, err := m.client.Eval(ctx, script, []string{key}, quantity).Result()
	if err != nil {
		return err
	}

	return nil
}

func (m *RedisCapacityInventoryManagerImpl) DropInventory(ctx context.Context, eventID int) error {
	key := m.getSpotsKey(eventID)
	return m.client.Del(ctx, key).Err()
}
