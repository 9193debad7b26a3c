package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/moffa90/go-model2450/config"
	"github.com/moffa90/go-model2450/driver"
	"github.com/moffa90/go-model2450/logging"
	"github.com/moffa90/go-model2450/telemetry"
	"github.com/moffa90/go-model2450/transport"
)

const usage = `usage: model2450 [flags] <command> [args]

commands:
  sn                  read the serial number
  version             read the firmware and hardware version
  color               read the current color
  read                read the ambient light level
  level [n]           read, or set, the blank-frame detection level
  set red|green|blue  store a calibration reference
  status              print the device status (text mode)
  run <duration>      count blank frames for duration, e.g. 10s
  stop                stop a blank-frame run
  stream              print the continuous reading stream until interrupted
  reset               soft-reset the device
  boot                reset the device into its bootloader

flags:
`

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to a TOML config file")
	port := flag.String("port", "", "serial port, e.g. /dev/ttyACM0 or COM3")
	baud := flag.Int("baud", 0, "baud rate (default 115200)")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return 2
	}

	cfg, err := loadConfig(*configPath, *port, *baud)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger := setupLogging(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serial, err := transport.OpenSerial(cfg.Serial())
	if err != nil {
		log.Error().Err(err).Msg("open device")
		return 1
	}

	dev := driver.New(serial,
		driver.WithLogger(logger),
		driver.WithCommandTimeout(cfg.CommandTimeout),
		driver.WithPollInterval(cfg.PollInterval),
		driver.WithTextWait(cfg.TextWait),
		driver.WithSequenceCheck(cfg.SequenceCheck),
	)
	defer dev.Close()

	app := &cli{
		dev:    dev,
		device: cfg.Port,
		out:    os.Stdout,
	}
	if cfg.NATS.URL != "" {
		pub, err := telemetry.Connect(cfg.NATS.URL, cfg.NATS.Subject, logger)
		if err != nil {
			log.Error().Err(err).Msg("connect nats")
			return 1
		}
		defer pub.Close()
		app.sink = pub
	}

	if err := app.execute(ctx, flag.Args()); err != nil {
		log.Error().Err(err).Str("command", flag.Arg(0)).Msg("command failed")
		return 1
	}
	return 0
}

func loadConfig(path, port string, baud int) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return config.Config{}, err
	}
	if port != "" {
		cfg.Port = port
	}
	if baud > 0 {
		cfg.BaudRate = baud
	}
	return cfg, cfg.Validate()
}

func setupLogging(lc config.LogConfig) zerolog.Logger {
	lcfg := logging.DefaultConfig(logging.ProfileRuntime)
	if lvl, ok := logging.ParseLevel(lc.Level); ok {
		lcfg.Level = lvl
	}
	lcfg.NoColor = lc.NoColor
	lcfg.Timestamp = lc.Timestamp
	logging.ApplyEnv(&lcfg)
	return logging.Apply(lcfg, os.Stderr, "model2450")
}
