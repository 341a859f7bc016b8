package config

type StoreKind string

const (
	StoreMemory StoreKind = "memory"
	StoreRedis  StoreKind = "redis"
)

func (k StoreKind) Valid() bool {
	return k == StoreMemory || k == StoreRedis
}

type Store struct {
	settings Settings
}

var _ StoreConfig = Store{}

func (s Store) GetRefreshStore() StoreKind {
	return StoreKind(s.settings.RefreshStore)
}

func (s Store) GetRedisAddr() string {
	return s.settings.RedisAddr
}

func (s Store) GetRefreshKeyPrefix() string {
	return s.settings.RefreshKeyPrefix
}
