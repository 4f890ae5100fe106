package resolving

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/tunegate/tunegate/src/features/config"
)

func newTestApp(exec *fakeExecutor) *fiber.App {
	cfg := config.NewManager(&config.Config{
		Server:   config.Server{Port: 0},
		Defaults: config.Defaults{Bitrate: 320, ArtworkSize: 300, Limit: 20},
	})
	app := fiber.New()
	RegisterRoutes(app, NewService(exec, nil), cfg)
	return app
}

func TestHandlerSearch(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]string{"cloudsearch": neteaseSearchBody}}
	app := newTestApp(exec)

	resp, err := app.Test(httptest.NewRequest("GET", "/api?type=search&name=海阔天空", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var tracks []map[string]any
	if err := json.Unmarshal(body, &tracks); err != nil {
		t.Fatalf("body is not a JSON list: %v (%s)", err, body)
	}
	if len(tracks) != 1 || tracks[0]["source"] != "netease" {
		t.Errorf("tracks = %v", tracks)
	}
}

func TestHandlerDefaultsApplied(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]string{"searchMusicBykeyWord": `{"abslist":[]}`}}
	app := newTestApp(exec)

	resp, err := app.Test(httptest.NewRequest("GET", "/api?server=kuwo&type=search&name=x", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	if len(exec.requests) != 1 {
		t.Fatalf("expected 1 upstream call, got %d", len(exec.requests))
	}
	if got := exec.requests[0].Params.Get("rn"); got != "20" {
		t.Errorf("limit default not applied, rn = %q", got)
	}
}

func TestHandlerValidation(t *testing.T) {
	app := newTestApp(&fakeExecutor{})

	cases := []string{
		"/api?type=search",                  // missing name
		"/api?type=url",                     // missing id
		"/api?type=download&id=1",           // unknown operation
		"/api?server=spotify&type=url&id=1", // unknown platform
		"/api?type=search&name=x&page=-1",   // invalid page
	}
	for _, target := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", target, nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != 400 {
			t.Errorf("%s: status = %d, want 400", target, resp.StatusCode)
		}
	}
}

func TestHandlerDefaultPlatform(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]string{"cloudsearch": `{"result":{"songs":[]}}`}}
	app := newTestApp(exec)

	resp, err := app.Test(httptest.NewRequest("GET", "/api?type=search&name=x", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(exec.requests) != 1 || exec.requests[0].Provider != "netease" {
		t.Error("omitted server must default to netease")
	}
}
