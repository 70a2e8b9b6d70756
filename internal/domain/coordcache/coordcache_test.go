package coordcache_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/snipe/internal/domain/coordcache"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestExpiringCache(t *testing.T) {
	Convey("Given a coordinate cache with a fake clock", t, func() {
		ctx := context.Background()
		clock := &fakeClock{now: time.Date(2016, 8, 1, 12, 0, 0, 0, time.UTC)}
		c := coordcache.New(coordcache.WithClock(clock.Now))

		Convey("When a coordinate is seen for the first time", func() {
			admitted := c.Admit(ctx, "1.5,2.5")

			Convey("Then it is admitted with the full budget", func() {
				So(admitted, ShouldBeTrue)
				budget, ok := c.Budget(ctx, "1.5,2.5")
				So(ok, ShouldBeTrue)
				So(budget, ShouldEqual, 2)
				So(c.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a coordinate keeps coming back inside the window", func() {
			results := []bool{}
			for i := 0; i < 5; i++ {
				results = append(results, c.Admit(ctx, "1.5,2.5"))
			}

			Convey("Then it gets three tries and is then refused", func() {
				So(results, ShouldResemble, []bool{true, true, true, false, false})
				budget, _ := c.Budget(ctx, "1.5,2.5")
				So(budget, ShouldEqual, 0)
			})
		})

		Convey("When an exhausted coordinate's entry expires", func() {
			for i := 0; i < 3; i++ {
				c.Admit(ctx, "1.5,2.5")
			}
			So(c.Admit(ctx, "1.5,2.5"), ShouldBeFalse)

			clock.Advance(5 * time.Minute)

			Convey("Then it is treated as absent again", func() {
				_, ok := c.Budget(ctx, "1.5,2.5")
				So(ok, ShouldBeFalse)
				So(c.Admit(ctx, "1.5,2.5"), ShouldBeTrue)
				budget, _ := c.Budget(ctx, "1.5,2.5")
				So(budget, ShouldEqual, 2)
			})
		})

		Convey("When an entry is used it does not extend its lifetime", func() {
			c.Admit(ctx, "1.5,2.5")
			clock.Advance(4 * time.Minute)
			c.Admit(ctx, "1.5,2.5")
			clock.Advance(time.Minute)

			Convey("Then it still expires five minutes after insertion", func() {
				_, ok := c.Budget(ctx, "1.5,2.5")
				So(ok, ShouldBeFalse)
				So(c.Size(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a bounded cache", t, func() {
		ctx := context.Background()
		c := coordcache.New(coordcache.WithMaxLen(3), coordcache.WithBudget(1))

		for i := 0; i < 4; i++ {
			c.Admit(ctx, fmt.Sprintf("%d,0", i))
		}

		Convey("Then the oldest entry is evicted first", func() {
			So(c.Size(), ShouldEqual, 3)
			_, ok := c.Budget(ctx, "0,0")
			So(ok, ShouldBeFalse)
			budget, ok := c.Budget(ctx, "3,0")
			So(ok, ShouldBeTrue)
			So(budget, ShouldEqual, 1)
		})
	})

	Convey("Given concurrent callers", t, func() {
		ctx := context.Background()
		c := coordcache.New(coordcache.WithMaxLen(0))

		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					c.Admit(ctx, fmt.Sprintf("%d,%d", g, i))
				}
			}(g)
		}
		wg.Wait()

		So(c.Size(), ShouldEqual, 400)
	})
}
