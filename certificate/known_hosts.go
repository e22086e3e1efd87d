package certificate

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// KnownHostsは、サーバー名ごとに信頼済みのフィンガープリントを保持するストアです。
//
// 実装はゴルーチンセーフである必要があります。
type KnownHosts interface {
	Lookup(serverName string) (Fingerprint, bool)
	Store(serverName string, fp Fingerprint) error
}

// MemoryKnownHostsは、件数上限付きのインメモリのKnownHostsです。
//
// 上限を超えた場合は、最も参照されていないホストから削除します。
type MemoryKnownHosts struct {
	cache *lru.Cache[string, Fingerprint]
}

// NewMemoryKnownHostsは、最大size件を保持するMemoryKnownHostsを返却します。
func NewMemoryKnownHosts(size int) (*MemoryKnownHosts, error) {
	cache, err := lru.New[string, Fingerprint](size)
	if err != nil {
		return nil, err
	}
	return &MemoryKnownHosts{cache: cache}, nil
}

// MustNewMemoryKnownHostsは、NewMemoryKnownHostsと同様ですが、失敗した場合はpanicします。
func MustNewMemoryKnownHosts(size int) *MemoryKnownHosts {
	h, err := NewMemoryKnownHosts(size)
	if err != nil {
		panic(err)
	}
	return h
}

func (h *MemoryKnownHosts) Lookup(serverName string) (Fingerprint, bool) {
	return h.cache.Get(serverName)
}

func (h *MemoryKnownHosts) Store(serverName string, fp Fingerprint) error {
	h.cache.Add(serverName, fp)
	return nil
}

// Lenは、保持しているホスト数を返却します。
func (h *MemoryKnownHosts) Len() int {
	return h.cache.Len()
}
