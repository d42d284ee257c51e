package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/shaunagostinho/eboard-vesc-sim/internal/battery"
	"github.com/shaunagostinho/eboard-vesc-sim/internal/config"
	"github.com/shaunagostinho/eboard-vesc-sim/internal/kinematics"
	"github.com/shaunagostinho/eboard-vesc-sim/internal/kinstate"
	"github.com/shaunagostinho/eboard-vesc-sim/internal/monitor"
	"github.com/shaunagostinho/eboard-vesc-sim/internal/motor"
	"github.com/shaunagostinho/eboard-vesc-sim/internal/physics"
	"github.com/shaunagostinho/eboard-vesc-sim/internal/recorder"
	"github.com/shaunagostinho/eboard-vesc-sim/internal/vesc"
)

func main() {
	configPath := flag.String("config", "/etc/eboardsim/config.yaml", "Path to config file")
	demo := flag.Bool("demo", false, "Run with an in-process loopback transport instead of a real serial port")
	listenAddr := flag.String("monitor-addr", "", "Override the monitor's WebSocket listen address")
	flag.Parse()

	log := newLogger()
	defer log.Sync()
	log.Info("eboardsim starting")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalw("config load failed", "error", err)
	}
	if *listenAddr != "" {
		cfg.Monitor.ListenAddr = *listenAddr
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infow("received signal, shutting down", "signal", sig)
		cancel()
	}()

	eks := kinstate.NewStore()
	bat := battery.NewIntegrator(cfg.Board.BatteryNominalVoltageV)

	fdm := physics.NewFrictionDragModel(cfg.Sim.MuRolling, cfg.Sim.CDrag, cfg.Board.FrontalAreaM2, cfg.Board.TotalMassKg)
	pm := physics.NewPushModel(cfg.Board.TotalMassKg)

	kinLoop := kinematics.New(kinematics.Config{
		FixedStepMs:         cfg.Sim.FixedStepMs,
		PushPeriodSec:       cfg.Sim.PushPeriodSec,
		ThetaSlopePeriodSec: cfg.Sim.ThetaSlopePeriodSec,
		SlopeRangeBoundDeg:  cfg.Sim.SlopeRangeBoundDeg,
		InitialSlopeDeg:     cfg.Sim.InitialSlopeDeg,
		TotalMassKg:         cfg.Board.TotalMassKg,
		GearRatio:           cfg.Board.GearRatio,
		WheelDiameterM:      cfg.Board.WheelDiameterM,
		MotorPolePairs:      cfg.Board.MotorPolePairs,
	}, eks, fdm, pm, log)
	go kinLoop.Run()
	defer kinLoop.Stop()

	mc := motor.New(cfg.Board, eks, cfg.Sim.ControlTimeStepMs, fdm, log)
	mc.Start()
	defer mc.Stop()

	go bat.Run(ctx, eks, cfg.Sim.ControlTimeStepMs)

	rec := recorder.New(recorder.Config{
		Enabled:    cfg.Record.Enabled,
		Path:       cfg.Record.Path,
		IntervalMs: cfg.Record.IntervalMs,
	}, eks, log)
	rec.Start()
	defer rec.Stop()

	if cfg.Monitor.Enabled {
		mon := monitor.New(cfg.Monitor.ListenAddr, eks, bat, log)
		go func() {
			if err := mon.Run(ctx); err != nil {
				log.Errorw("monitor exited", "error", err)
			}
		}()
	}

	variant := vesc.FW602
	if cfg.Serial.Firmware == "6.00" {
		variant = vesc.FW600
	}

	var xport vesc.Transport
	if *demo {
		xport = newLoopbackTransport()
		log.Infow("using loopback transport (demo mode)")
	} else {
		port, err := connectSerialWithRetry(ctx, cfg.Serial.PortPath, cfg.Serial.BaudRate, log, 10)
		if err != nil {
			log.Fatalw("serial connect failed", "error", err)
		}
		defer port.Close()
		xport = port
	}

	cmp := vesc.New(variant, xport, eks, cfg.Board, bat, mc, log)
	if err := cmp.Run(); err != nil {
		log.Errorw("vesc cmp exited", "error", err)
	}
}

func newLogger() *zap.SugaredLogger {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return l.Sugar()
}

// connectSerialWithRetry opens the configured serial port with exponential
// backoff, starting at 1s and doubling up to a 60s cap, matching the
// dashboard's provider connection retry loop.
func connectSerialWithRetry(ctx context.Context, portPath string, baudRate int, log *zap.SugaredLogger, maxAttempts int) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	delay := 1 * time.Second
	maxDelay := 60 * time.Second
	attempt := 0

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		port, err := serial.Open(portPath, mode)
		if err == nil {
			log.Infow("serial connected", "port", portPath, "attempt", attempt+1)
			return port, nil
		}

		attempt++
		log.Warnw("serial connect attempt failed", "attempt", attempt, "error", err, "retry_in", delay)
		if attempt >= maxAttempts {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}
