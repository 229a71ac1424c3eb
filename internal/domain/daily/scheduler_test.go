package daily_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/rosterquiz/internal/adapters/repository"
	"github.com/okian/rosterquiz/internal/domain/daily"
	. "github.com/smartystreets/goconvey/convey"
)

var est = time.FixedZone("EST", -5*60*60)

// sequenceDrawer hands out T1, T2, ... and counts draws.
type sequenceDrawer struct {
	draws int
	err   error
}

func (d *sequenceDrawer) Draw(context.Context) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	d.draws++
	return fmt.Sprintf("T%d", d.draws), nil
}

func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.March, day, hour, minute, 0, 0, est)
}

func TestScheduler_TodaysTeam(t *testing.T) {
	ctx := context.Background()

	Convey("Given a scheduler with no prior state", t, func() {
		store := repository.NewMemoryStore()
		drawer := &sequenceDrawer{}
		s := daily.New(store, drawer, daily.WithLocation(est))

		Convey("When asking for today's team", func() {
			team, err := s.TodaysTeam(ctx, at(5, 10, 0))

			Convey("Then it should rotate immediately and persist the state", func() {
				So(err, ShouldBeNil)
				So(team, ShouldEqual, "T1")

				state, ok, err := s.State(ctx)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(state.CurrentTeam, ShouldEqual, "T1")
				So(state.LastRotation.Equal(at(5, 10, 0)), ShouldBeTrue)
			})
		})

		Convey("When asking twice after the boundary on the same day", func() {
			first, err := s.TodaysTeam(ctx, at(5, 4, 0))
			So(err, ShouldBeNil)
			second, err := s.TodaysTeam(ctx, at(5, 23, 59))
			So(err, ShouldBeNil)

			Convey("Then both calls should return the same team", func() {
				So(second, ShouldEqual, first)
				So(drawer.draws, ShouldEqual, 1)
			})
		})

		Convey("When asking twice before the boundary on the same day", func() {
			first, err := s.TodaysTeam(ctx, at(5, 0, 30))
			So(err, ShouldBeNil)
			second, err := s.TodaysTeam(ctx, at(5, 2, 59))
			So(err, ShouldBeNil)

			Convey("Then both calls should return the same team", func() {
				So(second, ShouldEqual, first)
				So(drawer.draws, ShouldEqual, 1)
			})
		})

		Convey("When the boundary passes between calls", func() {
			before, err := s.TodaysTeam(ctx, at(5, 2, 0))
			So(err, ShouldBeNil)
			onBoundary, err := s.TodaysTeam(ctx, at(5, 3, 0))
			So(err, ShouldBeNil)
			later, err := s.TodaysTeam(ctx, at(5, 9, 0))
			So(err, ShouldBeNil)

			Convey("Then it should rotate exactly once at the boundary", func() {
				So(before, ShouldEqual, "T1")
				So(onBoundary, ShouldEqual, "T2")
				So(later, ShouldEqual, "T2")
			})
		})

		Convey("When the next day starts before its boundary", func() {
			today, err := s.TodaysTeam(ctx, at(5, 12, 0))
			So(err, ShouldBeNil)
			earlyTomorrow, err := s.TodaysTeam(ctx, at(6, 1, 0))
			So(err, ShouldBeNil)
			tomorrow, err := s.TodaysTeam(ctx, at(6, 3, 1))
			So(err, ShouldBeNil)

			Convey("Then the team should carry over until the boundary", func() {
				So(earlyTomorrow, ShouldEqual, today)
				So(tomorrow, ShouldEqual, "T2")
			})
		})

		Convey("When several days pass without a visit", func() {
			_, err := s.TodaysTeam(ctx, at(1, 12, 0))
			So(err, ShouldBeNil)
			team, err := s.TodaysTeam(ctx, at(9, 12, 0))

			Convey("Then it should rotate only once", func() {
				So(err, ShouldBeNil)
				So(team, ShouldEqual, "T2")
				So(drawer.draws, ShouldEqual, 2)
			})
		})

		Convey("When the drawer fails", func() {
			drawer.err = errors.New("no teams")
			_, err := s.TodaysTeam(ctx, at(5, 10, 0))

			Convey("Then the error should propagate and nothing be persisted", func() {
				So(errors.Is(err, drawer.err), ShouldBeTrue)
				_, ok, err := s.State(ctx)
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})
		})
	})

	Convey("Given a custom boundary", t, func() {
		drawer := &sequenceDrawer{}
		s := daily.New(repository.NewMemoryStore(), drawer,
			daily.WithLocation(est),
			daily.WithBoundary(daily.TimeOfDay{Hour: 12, Minute: 30}),
		)
		So(s.Boundary().String(), ShouldEqual, "12:30")

		Convey("Then rotation should follow it", func() {
			_, err := s.TodaysTeam(ctx, at(5, 11, 0))
			So(err, ShouldBeNil)
			team, err := s.TodaysTeam(ctx, at(5, 12, 29))
			So(err, ShouldBeNil)
			So(team, ShouldEqual, "T1")
			team, err = s.TodaysTeam(ctx, at(5, 12, 30))
			So(err, ShouldBeNil)
			So(team, ShouldEqual, "T2")
		})
	})
}

func TestScheduler_CorruptState(t *testing.T) {
	ctx := context.Background()

	cases := map[string]string{
		"unreadable JSON":     `{"currentTeam":`,
		"missing team":        `{"lastRotationInstant":"2024-03-05T10:00:00-05:00"}`,
		"missing instant":     `{"currentTeam":"Lakers"}`,
		"unknown team":        `{"currentTeam":"Sonics","lastRotationInstant":"2024-03-05T10:00:00-05:00"}`,
		"wrong shape":         `["Lakers"]`,
		"unparseable instant": `{"currentTeam":"Lakers","lastRotationInstant":"yesterday"}`,
	}

	for name, raw := range cases {
		Convey("Given persisted state with "+name, t, func() {
			store := repository.NewMemoryStore()
			So(store.Set(ctx, repository.KeyDailyChallengeState, []byte(raw)), ShouldBeNil)
			drawer := &sequenceDrawer{}
			s := daily.New(store, drawer,
				daily.WithLocation(est),
				daily.WithTeamValidator(func(team string) bool { return team != "Sonics" }),
			)

			Convey("When asking for today's team after the boundary", func() {
				team, err := s.TodaysTeam(ctx, at(5, 11, 0))

				Convey("Then it should rotate and overwrite the state", func() {
					So(err, ShouldBeNil)
					So(team, ShouldEqual, "T1")

					stored, err := store.Get(ctx, repository.KeyDailyChallengeState)
					So(err, ShouldBeNil)
					var state daily.State
					So(json.Unmarshal(stored, &state), ShouldBeNil)
					So(state.CurrentTeam, ShouldEqual, "T1")
				})
			})
		})
	}

	Convey("Given valid persisted state from earlier today", t, func() {
		store := repository.NewMemoryStore()
		raw := `{"currentTeam":"Lakers","lastRotationInstant":"2024-03-05T04:00:00-05:00"}`
		So(store.Set(ctx, repository.KeyDailyChallengeState, []byte(raw)), ShouldBeNil)
		drawer := &sequenceDrawer{}
		s := daily.New(store, drawer, daily.WithLocation(est))

		Convey("Then it should be reused without drawing", func() {
			team, err := s.TodaysTeam(ctx, at(5, 20, 0))
			So(err, ShouldBeNil)
			So(team, ShouldEqual, "Lakers")
			So(drawer.draws, ShouldEqual, 0)
		})
	})
}

func TestBoundaryInstant(t *testing.T) {
	Convey("Given an instant late in the evening UTC", t, func() {
		now := time.Date(2024, time.March, 10, 2, 30, 0, 0, time.UTC)

		Convey("When computing the boundary in a western zone", func() {
			b := daily.BoundaryInstant(now, est, daily.TimeOfDay{Hour: 3})

			Convey("Then it should use the local calendar date", func() {
				So(b.Equal(time.Date(2024, time.March, 9, 3, 0, 0, 0, est)), ShouldBeTrue)
			})
		})

		Convey("When the location is nil", func() {
			b := daily.BoundaryInstant(now, nil, daily.TimeOfDay{Hour: 3})

			Convey("Then it should fall back to UTC", func() {
				So(b.Equal(time.Date(2024, time.March, 10, 3, 0, 0, 0, time.UTC)), ShouldBeTrue)
			})
		})
	})

	Convey("Given the New York zone across a DST change", t, func() {
		ny, err := time.LoadLocation("America/New_York")
		if err != nil {
			SkipSo(err, ShouldBeNil)
			return
		}

		Convey("Then the boundary should stay at 03:00 local time", func() {
			winter := daily.BoundaryInstant(time.Date(2024, time.March, 9, 12, 0, 0, 0, ny), ny, daily.TimeOfDay{Hour: 3})
			summer := daily.BoundaryInstant(time.Date(2024, time.March, 11, 12, 0, 0, 0, ny), ny, daily.TimeOfDay{Hour: 3})
			So(winter.UTC().Hour(), ShouldEqual, 8)
			So(summer.UTC().Hour(), ShouldEqual, 7)
		})
	})
}

func TestParseTimeOfDay(t *testing.T) {
	Convey("Given time of day strings", t, func() {
		Convey("When parsing a valid value", func() {
			tod, err := daily.ParseTimeOfDay(" 03:00 ")
			So(err, ShouldBeNil)
			So(tod, ShouldResemble, daily.TimeOfDay{Hour: 3})
			So(tod.String(), ShouldEqual, "03:00")
		})

		Convey("When parsing invalid values", func() {
			for _, in := range []string{"", "3", "24:00", "12:60", "ab:cd", "-1:00"} {
				_, err := daily.ParseTimeOfDay(in)
				So(err, ShouldNotBeNil)
			}
		})
	})
}
