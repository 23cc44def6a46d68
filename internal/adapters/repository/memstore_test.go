package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/frostline/restcurve/internal/adapters/repository"
	"github.com/frostline/restcurve/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func record(entity, id string, day int) model.GameRecord {
	return model.GameRecord{
		RecordID: id,
		EntityID: entity,
		Season:   "2023",
		GameDate: time.Date(2023, 1, day, 0, 0, 0, 0, time.UTC),
		GoalsFor: model.Float(float64(day)),
	}
}

func TestMemStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given records for two entities", t, func() {
		store := repository.NewMemStore()
		So(store.Add(ctx,
			record("TOR", "t1", 1),
			record("BOS", "b1", 2),
			record("TOR", "t2", 3),
		), ShouldBeNil)

		Convey("Then Count reflects every add", func() {
			n, err := store.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 3)
		})

		Convey("And Entities lists ids sorted ascending", func() {
			ids, err := store.Entities(ctx)
			So(err, ShouldBeNil)
			So(ids, ShouldResemble, []string{"BOS", "TOR"})
		})

		Convey("And Entity preserves insertion order", func() {
			records, err := store.Entity(ctx, "TOR")
			So(err, ShouldBeNil)
			So(records, ShouldHaveLength, 2)
			So(records[0].RecordID, ShouldEqual, "t1")
			So(records[1].RecordID, ShouldEqual, "t2")
		})

		Convey("And All groups records by sorted entity", func() {
			all, err := store.All(ctx)
			So(err, ShouldBeNil)
			So(all, ShouldHaveLength, 3)
			So(all[0].EntityID, ShouldEqual, "BOS")
			So(all[1].EntityID, ShouldEqual, "TOR")
		})

		Convey("And repeated reads are identical", func() {
			first, _ := store.All(ctx)
			second, _ := store.All(ctx)
			So(second, ShouldResemble, first)
		})

		Convey("And mutating a read copy leaves the store untouched", func() {
			got, _ := store.Entity(ctx, "TOR")
			got[0].EntityID = "HACKED"
			again, _ := store.Entity(ctx, "TOR")
			So(again[0].EntityID, ShouldEqual, "TOR")
		})
	})

	Convey("Given an unknown entity", t, func() {
		store := repository.NewMemStore(repository.WithInitialCapacity(8))
		_, err := store.Entity(ctx, "nobody")

		Convey("Then the lookup fails with a not-found error", func() {
			So(errors.Is(err, repository.ErrEntityNotFound), ShouldBeTrue)
		})
	})

	Convey("Given concurrent writers and readers", t, func() {
		store := repository.NewMemStore()
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				_ = store.Add(ctx, record("TOR", fmt.Sprintf("c%d", i), 1+i%20))
			}(i)
			go func() {
				defer wg.Done()
				_, _ = store.All(ctx)
			}()
		}
		wg.Wait()

		Convey("Then every record lands exactly once", func() {
			n, err := store.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 8)
		})
	})
}
