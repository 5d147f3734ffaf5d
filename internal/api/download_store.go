package api

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

type download struct {
	filePath string
	workDir  string // 请求的临时目录，下载或过期后整体删除
	filename string
	expires  time.Time
}

type downloadStore struct {
	mu    sync.Mutex
	items map[string]download
}

func newDownloadStore() *downloadStore {
	return &downloadStore{
		items: make(map[string]download),
	}
}

func (s *downloadStore) put(d download, ttl time.Duration) (token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(time.Now())

	token = uuid.NewString()
	d.expires = time.Now().Add(ttl)
	s.items[token] = d
	return token
}

// take 取出并移除下载项，只能下载一次
func (s *downloadStore) take(token string) (download, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(time.Now())

	d, ok := s.items[token]
	if !ok {
		return download{}, false
	}
	delete(s.items, token)
	return d, true
}

func (s *downloadStore) purgeExpiredLocked(now time.Time) {
	for k, d := range s.items {
		if now.After(d.expires) {
			delete(s.items, k)
			_ = os.RemoveAll(d.workDir)
		}
	}
}
