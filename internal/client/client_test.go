package client

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/lawnchairsociety/mazeforge/internal/config"
	"github.com/lawnchairsociety/mazeforge/internal/content"
	"github.com/lawnchairsociety/mazeforge/internal/level"
	"github.com/lawnchairsociety/mazeforge/internal/maze"
	"github.com/lawnchairsociety/mazeforge/internal/server"
)

func startServer(t *testing.T) (*level.Level, string) {
	t.Helper()
	lvl, err := level.New(level.Options{
		Cols: 10, Rows: 8, Algorithm: maze.Backtracker, Seed: 5,
		Overlays: map[content.Kind]int{content.Heart: 2},
	}, nil)
	if err != nil {
		t.Fatalf("level.New failed: %v", err)
	}

	srv := server.New(lvl, config.DefaultConfig().Server, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return lvl, "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *Client {
	t.Helper()
	c, err := Dial(context.Background(), url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestDialReadsWelcome(t *testing.T) {
	lvl, url := startServer(t)
	c := dial(t, url)

	if c.Session() == "" {
		t.Error("no session id")
	}
	if w := c.Welcome(); w.Cols != 10 || w.Rows != 8 || w.Portal != lvl.Portal() {
		t.Errorf("welcome = %+v", w)
	}
}

func TestRequests(t *testing.T) {
	lvl, url := startServer(t)
	c := dial(t, url)
	ctx := context.Background()

	info, err := c.Info(ctx)
	if err != nil || info.Algorithm != "backtracker" {
		t.Fatalf("Info = %+v, %v", info, err)
	}

	view, err := c.View(ctx, 5, 4, 2, 2)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if view.Width != 5 || view.Height != 5 || len(view.Opacity) != 5 {
		t.Errorf("view = %dx%d", view.Width, view.Height)
	}

	path, err := c.Path(ctx, nil, nil)
	if err != nil {
		t.Fatalf("Path failed: %v", err)
	}
	want, _ := lvl.PathToPortal(maze.Point{X: 1, Y: 1})
	if path.Length != len(want) {
		t.Errorf("path length = %d, want %d", path.Length, len(want))
	}

	entities, err := c.Entities(ctx)
	if err != nil || len(entities) != 3 {
		t.Errorf("Entities = %v, %v", entities, err)
	}
}

func TestRemoteError(t *testing.T) {
	_, url := startServer(t)
	c := dial(t, url)

	_, err := c.View(context.Background(), 0, 0, 0, 0)
	if !errors.Is(err, ErrRemote) || !strings.Contains(err.Error(), "out of bounds") {
		t.Errorf("View(0,0) error = %v", err)
	}

	if _, err := c.Info(context.Background()); err != nil {
		t.Errorf("client unusable after a remote error: %v", err)
	}
}

func TestConcurrentRequests(t *testing.T) {
	_, url := startServer(t)
	c := dial(t, url)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			view, err := c.View(context.Background(), 1+i%10, 1+i%8, 1, 1)
			if err == nil && view.CX != 2*(i%10)+1 {
				err = errors.New("reply for the wrong cell")
			}
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Error(err)
		}
	}
}

func TestDialRefused(t *testing.T) {
	_, url := startServer(t)
	if _, err := Dial(context.Background(), strings.Replace(url, "/ws", "/nope", 1), nil); err == nil {
		t.Error("Dial to a non-websocket path should fail")
	}
}
