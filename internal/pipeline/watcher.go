package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai-resume-analyst/pkg/log"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce 同一文件在该时间内的多次写事件只触发一次导入。
const watchDebounce = 500 * time.Millisecond

// Watcher 监听源目录，新建或修改的简历文件会被重新导入。
type Watcher struct {
	runner *Runner
}

// NewWatcher 创建基于 fsnotify 的目录监听器。
func NewWatcher(runner *Runner) *Watcher {
	return &Watcher{runner: runner}
}

// Watch 阻塞直到 ctx 取消。源目录下的子目录（含运行期间新建的）都会被监听。
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if _, err := w.addTree(fw, w.runner.sourceDir); err != nil {
		return fmt.Errorf("watch %s: %w", w.runner.sourceDir, err)
	}
	log.Infof("[Watcher] 正在监听目录: %s", w.runner.sourceDir)

	pending := make(map[string]*time.Timer)
	fire := make(chan string)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()
	schedule := func(path string) {
		if t, exists := pending[path]; exists {
			t.Reset(watchDebounce)
			return
		}
		pending[path] = time.AfterFunc(watchDebounce, func() {
			select {
			case fire <- path:
			case <-ctx.Done():
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if dir, ok := w.newDirectory(event); ok {
				// 目录可能是整体移入的，里面已有的文件不会再产生事件
				files, err := w.addTree(fw, dir)
				if err != nil {
					log.Warnf("[Watcher] 监听子目录失败, Dir: %s, Error: %v", dir, err)
				}
				for _, f := range files {
					schedule(f)
				}
				continue
			}
			if path, ok := w.handleEvent(event); ok {
				schedule(path)
			}
		case path := <-fire:
			delete(pending, path)
			if _, err := w.runner.IngestFile(ctx, path); err != nil {
				log.Errorf("[Watcher] 导入失败, File: %s, Error: %v", path, err)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warnf("[Watcher] fsnotify error: %v", err)
		}
	}
}

// addTree 监听 root 及其全部非隐藏子目录，返回其中已存在且匹配模式的文件。
func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		if MatchesSource(w.runner.sourceDir, w.runner.patterns, path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// newDirectory 判断事件是否为新建的非隐藏子目录。
func (w *Watcher) newDirectory(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) || strings.HasPrefix(filepath.Base(event.Name), ".") {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return event.Name, true
}

// handleEvent 过滤事件：只处理匹配模式的非隐藏普通文件的新建与写入。
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return "", false
	}
	if !MatchesSource(w.runner.sourceDir, w.runner.patterns, event.Name) {
		return "", false
	}
	return event.Name, true
}
