// Package probe runs end-to-end checks against a live maze server.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lawnchairsociety/mazeforge/internal/client"
	"github.com/lawnchairsociety/mazeforge/internal/logger"
	"github.com/lawnchairsociety/mazeforge/internal/maze"
	"github.com/lawnchairsociety/mazeforge/internal/tilemap"
)

// Result is the outcome of one check.
type Result struct {
	Name    string
	Passed  bool
	Message string
}

type check struct {
	name string
	run  func(ctx context.Context, c *client.Client) (string, error)
}

var checks = []check{
	{"Info", checkInfo},
	{"ViewAtStart", checkViewAtStart},
	{"ViewOutOfBounds", checkViewOutOfBounds},
	{"PathToPortal", checkPathToPortal},
	{"Entities", checkEntities},
}

// RunAll runs every check on its own connection to url, followed by a
// check with two clients at once.
func RunAll(ctx context.Context, url string) []Result {
	results := make([]Result, 0, len(checks)+1)
	for _, chk := range checks {
		results = append(results, runOne(ctx, url, chk))
	}
	return append(results, checkSessions(ctx, url))
}

func runOne(ctx context.Context, url string, chk check) Result {
	log := logger.With("check", chk.name)
	log.Debug("Connecting", "url", url)

	c, err := client.Dial(ctx, url, nil)
	if err != nil {
		return Result{Name: chk.name, Message: err.Error()}
	}
	defer c.Close()

	msg, err := chk.run(ctx, c)
	if err != nil {
		log.Debug("FAIL", "error", err)
		return Result{Name: chk.name, Message: err.Error()}
	}
	log.Debug("OK", "detail", msg)
	return Result{Name: chk.name, Passed: true, Message: msg}
}

func checkInfo(ctx context.Context, c *client.Client) (string, error) {
	info, err := c.Info(ctx)
	if err != nil {
		return "", err
	}
	if *info != c.Welcome() {
		return "", fmt.Errorf("info %+v differs from welcome %+v", *info, c.Welcome())
	}
	if info.MapCols != 2*info.Cols+1 || info.MapRows != 2*info.Rows+1 {
		return "", fmt.Errorf("map %dx%d does not fit maze %dx%d", info.MapCols, info.MapRows, info.Cols, info.Rows)
	}
	return fmt.Sprintf("%dx%d %s, seed %d", info.Cols, info.Rows, info.Algorithm, info.Seed), nil
}

func checkViewAtStart(ctx context.Context, c *client.Client) (string, error) {
	view, err := c.View(ctx, 1, 1, 0, 0)
	if err != nil {
		return "", err
	}
	if view.CX != 1 || view.CY != 1 || view.X0 != 0 || view.Y0 != 0 {
		return "", fmt.Errorf("view of (1,1) centred on (%d,%d) from (%d,%d)", view.CX, view.CY, view.X0, view.Y0)
	}
	if corner, _ := view.At(0, 0); corner != tilemap.CornerEast|tilemap.CornerSouth {
		return "", fmt.Errorf("top-left corner is %d", corner)
	}
	return fmt.Sprintf("%dx%d window", view.Width, view.Height), nil
}

func checkViewOutOfBounds(ctx context.Context, c *client.Client) (string, error) {
	info := c.Welcome()
	_, err := c.View(ctx, info.Cols+1, 1, 0, 0)
	if !errors.Is(err, client.ErrRemote) {
		return "", fmt.Errorf("expected a server error, got %v", err)
	}
	return "rejected", nil
}

func checkPathToPortal(ctx context.Context, c *client.Client) (string, error) {
	path, err := c.Path(ctx, nil, nil)
	if err != nil {
		return "", err
	}
	portal := c.Welcome().Portal
	if path.To != portal || path.Length != len(path.Steps) {
		return "", fmt.Errorf("path to %s has length %d and %d steps", path.To, path.Length, len(path.Steps))
	}
	if len(path.Steps) == 0 {
		if portal != path.From {
			return "", fmt.Errorf("empty path between distinct cells")
		}
		return "already at the portal", nil
	}
	if path.Steps[0] != path.From {
		return "", fmt.Errorf("path starts at %s, not %s", path.Steps[0], path.From)
	}

	cells := append(append([]maze.Point{}, path.Steps...), portal)
	for i := 1; i < len(cells); i++ {
		dx, dy := cells[i].X-cells[i-1].X, cells[i].Y-cells[i-1].Y
		if dx*dx+dy*dy != 1 {
			return "", fmt.Errorf("step %s -> %s is not between neighbours", cells[i-1], cells[i])
		}
	}
	return fmt.Sprintf("%d steps", path.Length), nil
}

func checkEntities(ctx context.Context, c *client.Client) (string, error) {
	entities, err := c.Entities(ctx)
	if err != nil {
		return "", err
	}
	portals := 0
	for _, e := range entities {
		if e.Kind == "portal" {
			portals++
			if p := (maze.Point{X: e.X, Y: e.Y}); p != c.Welcome().Portal {
				return "", fmt.Errorf("portal listed at %s", p)
			}
		}
	}
	if portals != 1 {
		return "", fmt.Errorf("%d portals listed", portals)
	}
	return fmt.Sprintf("%d entities", len(entities)), nil
}

func checkSessions(ctx context.Context, url string) Result {
	const name = "MultipleClients"

	a, err := client.Dial(ctx, url, nil)
	if err != nil {
		return Result{Name: name, Message: err.Error()}
	}
	defer a.Close()
	b, err := client.Dial(ctx, url, nil)
	if err != nil {
		return Result{Name: name, Message: err.Error()}
	}
	defer b.Close()

	if a.Session() == b.Session() {
		return Result{Name: name, Message: "both clients got session " + a.Session()}
	}
	if a.Welcome() != b.Welcome() {
		return Result{Name: name, Message: "clients see different levels"}
	}
	return Result{Name: name, Passed: true, Message: "distinct sessions, same level"}
}

// PrintResults writes a report and returns the pass and fail counts.
func PrintResults(w io.Writer, results []Result) (passed, failed int) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Probe Results")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)

	for _, r := range results {
		status := "PASS"
		if r.Passed {
			passed++
		} else {
			status = "FAIL"
			failed++
		}
		fmt.Fprintf(w, "[%s] %s: %s\n", status, r.Name, r.Message)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "Total: %d | Passed: %d | Failed: %d\n", len(results), passed, failed)
	fmt.Fprintln(w, strings.Repeat("-", 60))
	return passed, failed
}
