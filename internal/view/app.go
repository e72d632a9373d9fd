package view

import (
	"flag"
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/Garsondee/Temptress/internal/game"
	"github.com/Garsondee/Temptress/internal/logger"
)

// Options are the command-line settings the front ends share. Empty paths
// select the built-in demo and the stock tuning.
type Options struct {
	Rooms   string
	Config  string
	Strings string
	Seed    int64
}

// Register adds the options to fs.
func (o *Options) Register(fs *flag.FlagSet) {
	fs.StringVar(&o.Rooms, "rooms", "", "room fixture YAML (default: built-in demo)")
	fs.StringVar(&o.Config, "config", "", "tuning YAML (default: built-in tuning)")
	fs.StringVar(&o.Strings, "strings", "", "message text YAML")
	fs.Int64Var(&o.Seed, "seed", 1, "RNG seed")
}

// Session is a world ready to show, with what it was built from.
type Session struct {
	World      *game.World
	Transcript *Transcript
	Log        *logrus.Logger
	Config     game.Config
}

// Build loads everything o names, logs to out and enters the player's room.
func Build(o Options, out io.Writer) (*Session, error) {
	cfg := game.DefaultConfig()
	if o.Config != "" {
		var err error
		if cfg, err = game.LoadConfig(o.Config); err != nil {
			return nil, err
		}
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat, out)

	res := game.DemoResources()
	if o.Rooms != "" {
		var err error
		if res, err = game.LoadRoomFixtures(o.Rooms); err != nil {
			return nil, err
		}
	}
	strs := DefaultStrings()
	if o.Strings != "" {
		var err error
		if strs, err = LoadStrings(o.Strings); err != nil {
			return nil, err
		}
	}

	var w *game.World
	tr := NewTranscript(strs, 8, func(id game.HotspotID) string {
		if d := w.Data(id); d != nil {
			return d.Name
		}
		return ""
	})
	w = game.NewWorld(res, game.Deps{
		Config:   cfg,
		Log:      log,
		Scripts:  game.DemoScripts(),
		Dialogue: tr,
		Seed:     o.Seed,
	})
	tr.Clock(w.CurrentTick)

	room, err := startRoom(res)
	if err != nil {
		return nil, err
	}
	if err := w.EnterRoom(room); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"rooms": len(res.Rooms), "hotspots": len(res.Hotspots), "room": room}).Info("world ready")
	return &Session{World: w, Transcript: tr, Log: log, Config: cfg}, nil
}

// startRoom is the player's room, or the lowest room when there is no player.
func startRoom(res *game.Resources) (game.RoomID, error) {
	for _, d := range res.Hotspots {
		if d.ID == game.PlayerID && d.Room != 0 {
			return d.Room, nil
		}
	}
	ids := make([]game.RoomID, 0, len(res.Rooms))
	for id := range res.Rooms {
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("build: %w: no rooms", game.ErrUnknownRoom)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids[0], nil
}
