package ingest_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/frostline/restcurve/internal/adapters/ingest"
	"github.com/frostline/restcurve/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const teamCSV = `playerTeam,season,gameDate,home_or_away,playoffGame,position,situation,goalsFor,goalsAgainst,xGoalsFor,xGoalsAgainst
TOR,2023,20230101,HOME,0,Team Level,all,4,2,3.1,2.2
TOR,2023,20230101,HOME,0,Team Level,5on5,2,1,1.4,0.9
TOR,2023,20230102,AWAY,0,Team Level,all,1,3,2.0,2.8
BOS,2023,2023-01-05,HOME,1,Team Level,all,2,2,2.5,2.5
`

const goalieCSV = `name,season,gameDate,situation,goals,xOnGoal,xGoals,games_played,lowDangerShots,lowDangerGoals,mediumDangerShots,mediumDangerGoals,highDangerShots,highDangerGoals
Igor Shesterkin,2023,20230101,all,2,30,2.4,1,15,0,10,1,5,1
Igor Shesterkin,2023,20230101,5on5,1,20,1.5,1,10,0,7,1,3,0
Igor Shesterkin,2023,20230103,all,3,28,2.1,2,12,1,11,1,5,1
Juuse Saros,2023,,all,1,25,2.0,1,14,0,8,0,3,1
`

func TestReadTeamGames(t *testing.T) {
	ctx := context.Background()

	Convey("Given a team game log with mixed situations", t, func() {
		res, err := ingest.ReadTeamGames(ctx, strings.NewReader(teamCSV))

		Convey("Then only all-strength team-level rows survive", func() {
			So(err, ShouldBeNil)
			So(res.Records, ShouldHaveLength, 3)
			So(res.Records[0].EntityID, ShouldEqual, "TOR")
			So(res.Records[2].EntityID, ShouldEqual, "BOS")
		})

		Convey("And stat columns come through as numbers", func() {
			first := res.Records[0]
			So(*first.GoalsFor, ShouldEqual, 4)
			So(*first.GoalsAgainst, ShouldEqual, 2)
			So(*first.XGoalsFor, ShouldAlmostEqual, 3.1, 1e-9)
			So(first.Location, ShouldEqual, model.LocationHome)
			So(first.Playoff, ShouldBeFalse)
		})

		Convey("And both date layouts parse to the same calendar day shape", func() {
			So(res.Records[0].GameDate.Format("2006-01-02"), ShouldEqual, "2023-01-01")
			So(res.Records[2].GameDate.Format("2006-01-02"), ShouldEqual, "2023-01-05")
			So(res.Records[2].Playoff, ShouldBeTrue)
		})

		Convey("And every record gets a unique id", func() {
			ids := map[string]struct{}{}
			for _, r := range res.Records {
				ids[r.RecordID] = struct{}{}
			}
			So(ids, ShouldHaveLength, len(res.Records))
		})
	})

	Convey("Given a repeated row in the same stream", t, func() {
		csv := "playerTeam,gameDate,home_or_away\nTOR,20230101,HOME\nTOR,20230101,HOME\nTOR,20230101,AWAY\n"
		res, err := ingest.ReadTeamGames(ctx, strings.NewReader(csv))

		Convey("Then the duplicate is suppressed and counted", func() {
			So(err, ShouldBeNil)
			So(res.Records, ShouldHaveLength, 2)
			So(res.Duplicates, ShouldEqual, 1)
		})
	})

	Convey("Given a row with an unparsable date", t, func() {
		csv := "playerTeam,gameDate\nTOR,yesterday\nTOR,20230101\n"
		res, err := ingest.ReadTeamGames(ctx, strings.NewReader(csv))

		Convey("Then the record is kept with a zero date and counted", func() {
			So(err, ShouldBeNil)
			So(res.Records, ShouldHaveLength, 2)
			So(res.UnparsableDates, ShouldEqual, 1)
			So(res.Records[0].HasDate(), ShouldBeFalse)
			So(res.Records[1].HasDate(), ShouldBeTrue)
		})
	})

	Convey("Given a log missing the entity column", t, func() {
		csv := "team,gameDate\nTOR,20230101\n"
		_, err := ingest.ReadTeamGames(ctx, strings.NewReader(csv))

		Convey("Then the whole batch fails", func() {
			So(errors.Is(err, ingest.ErrMissingColumn), ShouldBeTrue)
		})
	})

	Convey("Given an empty stream", t, func() {
		_, err := ingest.ReadTeamGames(ctx, strings.NewReader(""))

		Convey("Then it fails as an empty dataset", func() {
			So(errors.Is(err, ingest.ErrEmptyDataset), ShouldBeTrue)
		})
	})
}

func TestReadGoalieGames(t *testing.T) {
	ctx := context.Background()

	Convey("Given a goalie log with mixed situations", t, func() {
		res, err := ingest.ReadGoalieGames(ctx, strings.NewReader(goalieCSV))

		Convey("Then only all-strength rows survive", func() {
			So(err, ShouldBeNil)
			So(res.Records, ShouldHaveLength, 3)
			So(res.Records[0].EntityID, ShouldEqual, "Igor Shesterkin")
			So(res.Records[2].EntityID, ShouldEqual, "Juuse Saros")
		})

		Convey("And workload and danger-tier columns come through", func() {
			first := res.Records[0]
			So(*first.GoalsAllowed, ShouldEqual, 2)
			So(*first.ShotsFaced, ShouldEqual, 30)
			So(*first.XGoalsFaced, ShouldAlmostEqual, 2.4, 1e-9)
			So(*first.CumulativeGames, ShouldEqual, 1)
			So(*first.HighDangerShots, ShouldEqual, 5)
			So(*first.HighDangerGoals, ShouldEqual, 1)
		})

		Convey("And a missing date is tolerated, not fatal", func() {
			So(res.Records[2].HasDate(), ShouldBeFalse)
			So(res.UnparsableDates, ShouldEqual, 0)
		})
	})

	Convey("Given sentinel NA values in a stat column", t, func() {
		csv := "name,season,goals,xOnGoal\nSaros,2023,NA,nan\n"
		res, err := ingest.ReadGoalieGames(ctx, strings.NewReader(csv))

		Convey("Then the fields stay undefined instead of zero", func() {
			So(err, ShouldBeNil)
			So(res.Records, ShouldHaveLength, 1)
			So(res.Records[0].GoalsAllowed, ShouldBeNil)
			So(res.Records[0].ShotsFaced, ShouldBeNil)
		})
	})

	Convey("Given a log missing the season column", t, func() {
		csv := "name,goals\nSaros,2\n"
		_, err := ingest.ReadGoalieGames(ctx, strings.NewReader(csv))

		Convey("Then the whole batch fails", func() {
			So(errors.Is(err, ingest.ErrMissingColumn), ShouldBeTrue)
		})
	})
}

func TestLoadFileErrors(t *testing.T) {
	Convey("Given a dataset path that does not exist", t, func() {
		_, err := ingest.LoadTeamFile(context.Background(), "/nonexistent/teams.csv")

		Convey("Then opening fails with the dataset error", func() {
			So(errors.Is(err, ingest.ErrOpenDataset), ShouldBeTrue)
		})
	})
}
