package session_test

import (
	"errors"
	"testing"

	"github.com/okian/rosterquiz/internal/domain/model"
	"github.com/okian/rosterquiz/internal/domain/session"
	"github.com/smartystreets/goconvey/convey"
)

func lakers() []model.Player {
	return []model.Player{
		{Name: "A", Team: "Lakers"},
		{Name: "B", Team: "Lakers"},
		{Name: "C", Team: "Lakers"},
	}
}

func names(players []model.Player) []string {
	out := make([]string, 0, len(players))
	for _, p := range players {
		out = append(out, p.Name)
	}
	return out
}

func TestSession_Walkthrough(t *testing.T) {
	convey.Convey("Given a Lakers session with three misses allowed", t, func() {
		s := session.ForRoster(lakers(), 3)
		convey.So(s.Status(), convey.ShouldEqual, model.StatusActive)
		convey.So(s.Total(), convey.ShouldEqual, 3)

		convey.Convey("Then the walkthrough should play out step by step", func() {
			out, err := s.Submit("a")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out.Kind, convey.ShouldEqual, model.OutcomeCorrect)
			convey.So(out.Player.Name, convey.ShouldEqual, "A")
			convey.So(out.Complete, convey.ShouldBeFalse)

			out, _ = s.Submit("A")
			convey.So(out.Kind, convey.ShouldEqual, model.OutcomeDuplicate)
			convey.So(s.GuessedCount(), convey.ShouldEqual, 1)
			convey.So(s.Misses(), convey.ShouldEqual, 0)

			out, _ = s.Submit("zzz")
			convey.So(out.Kind, convey.ShouldEqual, model.OutcomeMiss)
			convey.So(out.Misses, convey.ShouldEqual, 1)

			out, _ = s.Submit("b")
			convey.So(out.Kind, convey.ShouldEqual, model.OutcomeCorrect)
			convey.So(out.Player.Name, convey.ShouldEqual, "B")

			out, _ = s.Submit("zzz")
			convey.So(out.Kind, convey.ShouldEqual, model.OutcomeMiss)
			convey.So(out.Misses, convey.ShouldEqual, 2)

			out, _ = s.Submit("zzz")
			convey.So(out.Kind, convey.ShouldEqual, model.OutcomeFailed)
			convey.So(names(out.Revealed), convey.ShouldResemble, []string{"C"})
			convey.So(s.Status(), convey.ShouldEqual, model.StatusFailed)
			convey.So(s.Misses(), convey.ShouldEqual, 3)

			_, err = s.Submit("c")
			convey.So(errors.Is(err, model.ErrSessionClosed), convey.ShouldBeTrue)
			convey.So(s.Misses(), convey.ShouldEqual, 3)
			convey.So(s.GuessedCount(), convey.ShouldEqual, 2)
		})

		convey.Convey("When every player is guessed without a miss", func() {
			var last model.Outcome
			for _, n := range []string{"c", " B ", "a"} {
				out, err := s.Submit(n)
				convey.So(err, convey.ShouldBeNil)
				last = out
			}

			convey.Convey("Then the last correct guess should win the session", func() {
				convey.So(last.Kind, convey.ShouldEqual, model.OutcomeCorrect)
				convey.So(last.Complete, convey.ShouldBeTrue)
				convey.So(s.Status(), convey.ShouldEqual, model.StatusWon)
				convey.So(s.Misses(), convey.ShouldEqual, 0)
				convey.So(s.GuessedCount(), convey.ShouldEqual, s.Total())
				convey.So(names(s.Guessed()), convey.ShouldResemble, []string{"C", "B", "A"})
				convey.So(s.Remaining(), convey.ShouldBeEmpty)
			})

			convey.Convey("And further guesses should be rejected", func() {
				_, err := s.Submit("a")
				convey.So(errors.Is(err, model.ErrSessionClosed), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the input is blank", func() {
			out, err := s.Submit("   \t")

			convey.Convey("Then it should be an empty-input outcome with no state change", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.Kind, convey.ShouldEqual, model.OutcomeEmptyInput)
				convey.So(s.Misses(), convey.ShouldEqual, 0)
				convey.So(s.GuessedCount(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When a guess has surrounding spaces", func() {
			out, _ := s.Submit("  zzz  ")
			convey.So(out.Input, convey.ShouldEqual, "zzz")
		})

		convey.Convey("When a player is guessed, revealed players should exclude them", func() {
			_, _ = s.Submit("b")
			convey.So(names(s.Remaining()), convey.ShouldResemble, []string{"A", "C"})
		})
	})
}

func TestSession_MissLimits(t *testing.T) {
	convey.Convey("Given sessions with different miss limits", t, func() {
		convey.Convey("When the limit is one", func() {
			s := session.ForRoster(lakers(), 1)
			out, _ := s.Submit("nobody")

			convey.Convey("Then the first miss should fail the session", func() {
				convey.So(out.Kind, convey.ShouldEqual, model.OutcomeFailed)
				convey.So(names(out.Revealed), convey.ShouldResemble, []string{"A", "B", "C"})
				convey.So(s.Misses(), convey.ShouldEqual, s.MaxMisses())
			})
		})

		convey.Convey("When the limit is unbounded", func() {
			s := session.ForRoster(lakers(), 0)
			for i := 0; i < 50; i++ {
				out, err := s.Submit("nobody")
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.Kind, convey.ShouldEqual, model.OutcomeMiss)
			}

			convey.Convey("Then the session should stay active", func() {
				convey.So(s.Status(), convey.ShouldEqual, model.StatusActive)
				convey.So(s.Misses(), convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When a duplicate follows a miss", func() {
			s := session.ForRoster(lakers(), 3)
			_, _ = s.Submit("a")
			_, _ = s.Submit("x")
			out, _ := s.Submit("a")

			convey.Convey("Then misses should not change", func() {
				convey.So(out.Kind, convey.ShouldEqual, model.OutcomeDuplicate)
				convey.So(out.Misses, convey.ShouldEqual, 1)
				convey.So(s.Misses(), convey.ShouldEqual, 1)
			})
		})
	})
}

func TestSession_Reverse(t *testing.T) {
	convey.Convey("Given a reverse card for a Celtics player", t, func() {
		p := model.Player{Name: "Jayson Tatum", Team: "Boston Celtics"}
		s := session.ForTeamOf(p, 1)
		convey.So(s.Total(), convey.ShouldEqual, 1)

		convey.Convey("When the team is guessed in another case", func() {
			out, err := s.Submit("BOSTON celtics")

			convey.Convey("Then it should be correct and complete", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.Kind, convey.ShouldEqual, model.OutcomeCorrect)
				convey.So(out.Complete, convey.ShouldBeTrue)
				convey.So(out.Player.Name, convey.ShouldEqual, "Jayson Tatum")
				convey.So(s.Status(), convey.ShouldEqual, model.StatusWon)
			})
		})

		convey.Convey("When the player's own name is guessed", func() {
			out, _ := s.Submit("Jayson Tatum")

			convey.Convey("Then it should fail and reveal the player", func() {
				convey.So(out.Kind, convey.ShouldEqual, model.OutcomeFailed)
				convey.So(names(out.Revealed), convey.ShouldResemble, []string{"Jayson Tatum"})
			})
		})
	})
}

func TestSession_Targets(t *testing.T) {
	convey.Convey("Given targets that share an answer", t, func() {
		s := session.New([]session.Target{
			{Answer: "Heat", Player: model.Player{Name: "X"}},
			{Answer: "heat", Player: model.Player{Name: "Y"}},
		}, 3)

		convey.Convey("Then they should collapse to the first one", func() {
			convey.So(s.Total(), convey.ShouldEqual, 1)
			out, _ := s.Submit("HEAT")
			convey.So(out.Player.Name, convey.ShouldEqual, "X")
			convey.So(s.Status(), convey.ShouldEqual, model.StatusWon)
		})
	})

	convey.Convey("Given names that differ only by Unicode case", t, func() {
		s := session.ForRoster([]model.Player{{Name: "Nikola Jokić"}}, 3)

		convey.Convey("Then a folded guess should match", func() {
			out, _ := s.Submit("NIKOLA JOKIĆ")
			convey.So(out.Kind, convey.ShouldEqual, model.OutcomeCorrect)
		})
	})
}
