package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"faq_matcher/internal/apperr"
	"faq_matcher/internal/knowledge"
	"faq_matcher/internal/logger"
	"faq_matcher/internal/matcher"
	"faq_matcher/internal/metrics"
	"faq_matcher/internal/responder"
)

// reloadDelay gives editors time to finish writing before the file is read.
var reloadDelay = 100 * time.Millisecond

// KnowledgeCache holds the responder built from the knowledge file and
// swaps it when the file changes.
type KnowledgeCache struct {
	sync.RWMutex
	responder *responder.Responder
	path      string
	loadedAt  time.Time
	reloads   int
	watcher   *fsnotify.Watcher
	log       logger.Logger
	opts      []responder.Option
}

// KnowledgeInfo is the admin view of the loaded knowledge base.
type KnowledgeInfo struct {
	FilePath   string         `json:"file_path"`
	Entries    int            `json:"entries"`
	Categories map[string]int `json:"categories"`
	LoadedAt   time.Time      `json:"loaded_at"`
	Reloads    int            `json:"reloads"`
	Watching   bool           `json:"watching"`
}

func NewKnowledgeCache(path string, log logger.Logger, opts ...responder.Option) (*KnowledgeCache, error) {
	kc := &KnowledgeCache{path: path, log: log, opts: opts}
	r, err := kc.build()
	if err != nil {
		return nil, err
	}
	kc.responder = r
	kc.loadedAt = time.Now()
	metrics.KnowledgeEntries.Set(float64(r.Base().Len()))
	return kc, nil
}

func (kc *KnowledgeCache) build() (*responder.Responder, error) {
	base, err := knowledge.Load(kc.path)
	if err != nil {
		return nil, apperr.NewKnowledgeBaseInvalidError(err)
	}
	return responder.New(matcher.New(base), kc.opts...), nil
}

// Process answers with the current responder.
func (kc *KnowledgeCache) Process(message string) responder.Reply {
	kc.RLock()
	r := kc.responder
	kc.RUnlock()
	return r.Process(message)
}

// Reload re-reads the knowledge file. On failure the previous knowledge
// base stays in use.
func (kc *KnowledgeCache) Reload() error {
	r, err := kc.build()
	if err != nil {
		metrics.KnowledgeReloads.WithLabelValues("failed").Inc()
		kc.log.WithError(err).Error("Knowledge reload failed, keeping previous knowledge base", map[string]interface{}{
			"file": kc.path,
		})
		return err
	}

	kc.Lock()
	kc.responder = r
	kc.loadedAt = time.Now()
	kc.reloads++
	kc.Unlock()

	metrics.KnowledgeReloads.WithLabelValues("ok").Inc()
	metrics.KnowledgeEntries.Set(float64(r.Base().Len()))
	kc.log.Info("Knowledge base reloaded", map[string]interface{}{
		"file":    kc.path,
		"entries": r.Base().Len(),
	})
	return nil
}

func (kc *KnowledgeCache) Info() KnowledgeInfo {
	kc.RLock()
	defer kc.RUnlock()

	base := kc.responder.Base()
	return KnowledgeInfo{
		FilePath:   kc.path,
		Entries:    base.Len(),
		Categories: base.Categories(),
		LoadedAt:   kc.loadedAt,
		Reloads:    kc.reloads,
		Watching:   kc.watcher != nil,
	}
}

// StartWatching watches the directory holding the knowledge file. The
// directory is watched rather than the file so atomic renames are seen.
func (kc *KnowledgeCache) StartWatching() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(kc.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch knowledge directory: %w", err)
	}

	kc.Lock()
	kc.watcher = watcher
	kc.Unlock()

	kc.log.Info("File watcher initialized", map[string]interface{}{"dir": dir})
	return nil
}

// WatchFiles reloads on Write and Create events for the knowledge file
// until ctx is done or the watcher is closed.
func (kc *KnowledgeCache) WatchFiles(ctx context.Context) error {
	kc.RLock()
	watcher := kc.watcher
	kc.RUnlock()
	if watcher == nil {
		return fmt.Errorf("file watcher not started")
	}

	target := filepath.Clean(kc.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || filepath.Clean(event.Name) != target {
				continue
			}

			time.Sleep(reloadDelay)
			kc.log.Info("Knowledge file changed", map[string]interface{}{"file": event.Name, "op": event.Op.String()})
			_ = kc.Reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			kc.log.WithError(err).Warn("File watcher error", nil)
		}
	}
}

func (kc *KnowledgeCache) Close() error {
	kc.Lock()
	defer kc.Unlock()
	if kc.watcher != nil {
		err := kc.watcher.Close()
		kc.watcher = nil
		return err
	}
	return nil
}
