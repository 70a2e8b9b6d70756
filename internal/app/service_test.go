package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	service "github.com/okian/snipe/internal/app"
	"github.com/okian/snipe/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should not be started", func() {
			So(svc, ShouldNotBeNil)
			So(svc.GetStats()["started"], ShouldBeFalse)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithUsername("ash"),
			service.WithSnipeList("snipe.json"),
			service.WithTickInterval(50*time.Millisecond),
		)

		Convey("Then the options show up in its stats", func() {
			stats := svc.GetStats()
			So(stats["username"], ShouldEqual, "ash")
			So(stats["snipeList"], ShouldEqual, "snipe.json")
			So(stats["tickInterval"], ShouldEqual, "50ms")
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service without a snipe list", t, func() {
		svc := service.New(
			service.WithPokedex(""),
			service.WithSimLatencyRange(0, 0),
			service.WithTickInterval(10*time.Millisecond),
		)
		defer svc.Stop()

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldBeTrue)
				So(stats["historyCount"], ShouldEqual, int64(0))
			})

			Convey("And starting twice is a no-op", func() {
				So(svc.Start(context.Background()), ShouldBeNil)
			})

			Convey("And stopping twice is safe", func() {
				svc.Stop()
				svc.Stop()
				So(svc.GetStats()["started"], ShouldBeFalse)
			})
		})
	})

	Convey("Given a pokedex path that does not exist", t, func() {
		svc := service.New(service.WithPokedex(filepath.Join(t.TempDir(), "missing.json")))
		defer svc.Stop()

		Convey("Then the service still starts", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
		})
	})
}

func TestService_SnipePass(t *testing.T) {
	Convey("Given a service over a snipe list", t, func() {
		dir := t.TempDir()
		list := filepath.Join(dir, "snipe.json")
		err := os.WriteFile(list, []byte(`{"snipe_wait_interval": 3600, "locations": ["40.7829,-73.9654", "bad", "51.5007, -0.1246"]}`), 0o600)
		So(err, ShouldBeNil)

		svc := service.New(
			service.WithSnipeList(list),
			service.WithPokedex(""),
			service.WithWebDir(filepath.Join(dir, "web")),
			service.WithUsername("ash"),
			service.WithRetryDelay(0),
			service.WithSimLatencyRange(0, 0),
			service.WithSimSeed(42),
			service.WithTickInterval(10*time.Millisecond),
		)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("When the first pass has run", func() {
			ctx := context.Background()
			readLocations := func() []string {
				var doc struct {
					Locations []string `json:"locations"`
				}
				data, err := os.ReadFile(list)
				if err != nil || json.Unmarshal(data, &doc) != nil {
					return nil
				}
				return doc.Locations
			}

			deadline := time.Now().Add(5 * time.Second)
			var history int
			for time.Now().Before(deadline) {
				attempts, err := svc.History(ctx, 10)
				So(err, ShouldBeNil)
				history = len(attempts)
				if locs := readLocations(); history == 2 && locs != nil && len(locs) == 0 {
					break
				}
				time.Sleep(5 * time.Millisecond)
			}

			Convey("Then both valid locations were attempted and the file drained", func() {
				So(history, ShouldEqual, 2)

				data, err := os.ReadFile(list)
				So(err, ShouldBeNil)
				var doc struct {
					Wait      int      `json:"snipe_wait_interval"`
					Locations []string `json:"locations"`
				}
				So(json.Unmarshal(data, &doc), ShouldBeNil)
				So(doc.Wait, ShouldEqual, 3600)
				So(doc.Locations, ShouldBeEmpty)
			})

			Convey("And the pass counters reflect it", func() {
				stats := svc.GetStats()
				snipeStats, ok := stats["snipe"].(map[string]interface{})
				So(ok, ShouldBeTrue)
				So(snipeStats["attempts"], ShouldEqual, int64(2))
				So(snipeStats["skippedLocations"], ShouldEqual, int64(1))
			})
		})
	})
}

func TestService_StopDuringPass(t *testing.T) {
	Convey("Given a service working through a long snipe list", t, func() {
		dir := t.TempDir()
		list := filepath.Join(dir, "snipe.json")
		locs := make([]string, 40)
		for i := range locs {
			locs[i] = fmt.Sprintf("40.%04d,-73.9654", i)
		}
		data, err := json.Marshal(map[string]any{"snipe_wait_interval": 3600, "locations": locs})
		So(err, ShouldBeNil)
		So(os.WriteFile(list, data, 0o600), ShouldBeNil)

		svc := service.New(
			service.WithSnipeList(list),
			service.WithPokedex(""),
			service.WithRetryDelay(0),
			service.WithSimLatencyRange(30*time.Millisecond, 30*time.Millisecond),
			service.WithTickInterval(10*time.Millisecond),
			service.WithCacheLimits(time.Hour, 1000),
		)
		So(svc.Start(context.Background()), ShouldBeNil)

		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			attempts, err := svc.History(context.Background(), 10)
			So(err, ShouldBeNil)
			if len(attempts) > 0 {
				break
			}
			time.Sleep(5 * time.Millisecond)
		}

		Convey("When it is stopped mid-pass", func() {
			stopStarted := time.Now()
			svc.Stop()
			elapsed := time.Since(stopStarted)

			Convey("Then the pass stops at the next location and the rest stays on disk", func() {
				So(elapsed, ShouldBeLessThan, 2*time.Second)

				var doc struct {
					Locations []string `json:"locations"`
				}
				data, err := os.ReadFile(list)
				So(err, ShouldBeNil)
				So(json.Unmarshal(data, &doc), ShouldBeNil)
				So(len(doc.Locations), ShouldBeGreaterThan, 0)
			})
		})
	})
}
