package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/frostline/restcurve/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoadDefaults(t *testing.T) {
	Convey("Given no file and no env overrides", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then defaults are returned", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9090")
			So(cfg.TargetMetric, ShouldEqual, "win")
		})
	})
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("RESTCURVE_ADDR", ":8181")
	t.Setenv("RESTCURVE_LOG_LEVEL", "debug")
	t.Setenv("RESTCURVE_TARGET_METRIC", "xg_share")

	Convey("Given environment overrides", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then env values win over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":8181")
			So(cfg.LogLevel, ShouldEqual, "debug")
			So(cfg.TargetMetric, ShouldEqual, "xg_share")
		})
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "restcurve.yaml")
	yaml := "addr: \":7070\"\nmax_ranking_limit: 25\nlow_rest_buckets:\n  - back-to-back\n  - short\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RESTCURVE_CONFIG", path)

	Convey("Given a YAML config file", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then file values layer over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.MaxRankingLimit, ShouldEqual, 25)
			So(cfg.LowRestBuckets, ShouldResemble, []string{"back-to-back", "short"})
		})
	})
}

func TestLoadFileEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "restcurve.yaml")
	if err := os.WriteFile(path, []byte("addr: \":7070\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RESTCURVE_CONFIG", path)
	t.Setenv("RESTCURVE_ADDR", ":6060")

	Convey("Given both a config file and an env override", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then env wins over the file", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":6060")
		})
	})
}

func TestLoadInvalidMetric(t *testing.T) {
	t.Setenv("RESTCURVE_TARGET_METRIC", "corsi")

	Convey("Given an invalid target metric", t, func() {
		_, err := config.Load(context.Background())

		Convey("Then loading fails with an invalid-config error", func() {
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}

func TestLoadInvalidBucket(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "restcurve.yaml")
	if err := os.WriteFile(path, []byte("high_rest_buckets:\n  - weekend\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RESTCURVE_CONFIG", path)

	Convey("Given an unknown rest bucket name", t, func() {
		_, err := config.Load(context.Background())

		Convey("Then loading fails with an invalid-config error", func() {
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
