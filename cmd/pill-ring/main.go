// Command pill-ring runs the medication-reminder ring: it watches a push
// button and tilt sensor on GPIO, renders a dose countdown on a WS2812
// ring, serves an interval-config page over HTTP, persists the last-dose
// timestamp, and publishes telemetry to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/pill-ring/internal/clock"
	"github.com/sweeney/pill-ring/internal/config"
	"github.com/sweeney/pill-ring/internal/display"
	"github.com/sweeney/pill-ring/internal/dose"
	"github.com/sweeney/pill-ring/internal/input"
	"github.com/sweeney/pill-ring/internal/led"
	"github.com/sweeney/pill-ring/internal/mqtt"
	"github.com/sweeney/pill-ring/internal/status"
	"github.com/sweeney/pill-ring/internal/store"
	"github.com/sweeney/pill-ring/internal/web"
)

const ntpRetryDelay = 2 * time.Second

type options struct {
	poll        time.Duration
	hold        time.Duration
	wakeWindow  time.Duration
	sleepWindow time.Duration
	interval    time.Duration
	heartbeat   time.Duration
	ringSize    int
	brightness  int
	pinTilt     int
	pinButton   int
	spiDev      string
	broker      string
	httpAddr    string
	dbPath      string
	ntpServer   string
	ntpAttempts int
	printState  bool
}

func main() {
	cfg := config.Load()

	var o options
	flag.DurationVar(&o.poll, "poll", cfg.Poll, "polling interval")
	flag.DurationVar(&o.hold, "hold", cfg.Hold, "button hold required to confirm a dose")
	flag.DurationVar(&o.wakeWindow, "wake-window", cfg.WakeWindow, "bright-display window after activity")
	flag.DurationVar(&o.sleepWindow, "sleep-window", cfg.SleepWindow, "dim-display window after activity")
	flag.DurationVar(&o.interval, "interval", cfg.Interval, "default dose interval (not persisted)")
	flag.DurationVar(&o.heartbeat, "heartbeat", cfg.Heartbeat, "heartbeat interval (0 to disable)")
	flag.IntVar(&o.ringSize, "ring", cfg.RingSize, "number of pixels on the ring")
	flag.IntVar(&o.brightness, "brightness", cfg.Brightness, "global brightness cap (0-255)")
	flag.IntVar(&o.pinTilt, "pin-tilt", cfg.PinTilt, "BCM pin number for the tilt sensor")
	flag.IntVar(&o.pinButton, "pin-button", cfg.PinButton, "BCM pin number for the push button")
	flag.StringVar(&o.spiDev, "spi", cfg.SPIDev, `SPI device for the ring ("" for first available)`)
	flag.StringVar(&o.broker, "broker", cfg.Broker, "MQTT broker address (empty to disable)")
	flag.StringVar(&o.httpAddr, "http", cfg.HTTPAddr, "HTTP config address (empty to disable)")
	flag.StringVar(&o.dbPath, "db", cfg.DBPath, `SQLite path for the lastpill timestamp ("" for in-memory)`)
	flag.StringVar(&o.ntpServer, "ntp", cfg.NTPServer, "NTP server for time sync")
	flag.IntVar(&o.ntpAttempts, "ntp-attempts", cfg.NTPAttempts, "NTP sync attempts before degrading")
	flag.BoolVar(&o.printState, "print-state", false, "print current input state and exit")
	flag.Parse()

	if err := run(o); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(o options) error {
	// The corrected clock is the single time base: press timestamps, hold
	// measurement and the persisted lastpill all read it, so an NTP offset
	// cannot skew the hold duration.
	clk := clock.New()

	// Initialize GPIO edge handling
	events := &input.Events{}
	reader, err := input.NewRealReader(o.pinTilt, o.pinButton, events, clk.Now)
	if err != nil {
		return fmt.Errorf("init input: %w", err)
	}
	defer reader.Close()

	// Print state mode
	if o.printState {
		pressed, err := reader.ButtonPressed()
		if err != nil {
			return fmt.Errorf("read button: %w", err)
		}
		fmt.Printf("button: %s\n", pressedString(pressed))
		return nil
	}

	// Initialize the ring
	if o.brightness < 0 || o.brightness > 255 {
		return fmt.Errorf("brightness %d out of range 0-255", o.brightness)
	}
	strip, err := led.NewRealStrip(o.spiDev, o.ringSize, uint8(o.brightness))
	if err != nil {
		return fmt.Errorf("init led: %w", err)
	}
	defer strip.Close()
	renderer := display.New(strip)

	// Time sync, with the result signalled once on the ring. Failure is
	// not fatal: the countdown runs on device-relative time.
	renderer.Render(dose.DisplayState{Mode: dose.ModeNetConnecting, Segments: o.ringSize})
	if err := clk.Sync(o.ntpServer, o.ntpAttempts, ntpRetryDelay); err != nil {
		log.Printf("time sync failed, continuing with device-relative time: %v", err)
		renderer.Render(dose.DisplayState{Mode: dose.ModeNetFailure, Segments: o.ringSize})
	} else {
		renderer.Render(dose.DisplayState{Mode: dose.ModeNetSuccess, Segments: o.ringSize})
	}

	// Durable store. Unavailable storage falls back to memory: the dose
	// baseline then resets on reboot, but the device still runs.
	var st store.Store
	if o.dbPath == "" {
		st = store.NewMemoryStore()
	} else if sq, err := store.OpenSQLite(o.dbPath); err != nil {
		log.Printf("store unavailable (%v), dose baseline will not survive reboot", err)
		st = store.NewMemoryStore()
	} else {
		st = sq
	}
	defer st.Close()

	bootTime := clk.Now()
	lastDose, err := st.LoadLastDose(bootTime)
	if err != nil {
		log.Printf("load %s: %v (using boot time)", store.KeyLastPill, err)
	}
	if lastDose.After(bootTime) {
		// A stored timestamp ahead of the (possibly unsynced) clock
		// would break the elapsed-time math.
		log.Printf("stored %s is in the future, clamping to boot time", store.KeyLastPill)
		lastDose = bootTime
	}

	timer := dose.NewTimer(dose.Config{
		Interval:    o.interval,
		RingSize:    o.ringSize,
		WakeWindow:  o.wakeWindow,
		SleepWindow: o.sleepWindow,
	}, lastDose, bootTime)

	// MQTT telemetry (optional)
	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if o.broker != "" {
		p := mqtt.NewRealPublisher(o.broker)
		defer p.Close()
		publisher = p
		mqttStatus = p
	}

	tracker := status.NewTracker(bootTime, status.Config{
		PollMs:      o.poll.Milliseconds(),
		HoldMs:      o.hold.Milliseconds(),
		WakeMs:      o.wakeWindow.Milliseconds(),
		SleepMs:     o.sleepWindow.Milliseconds(),
		HeartbeatMs: o.heartbeat.Milliseconds(),
		RingSize:    o.ringSize,
		Broker:      o.broker,
		HTTPAddr:    o.httpAddr,
		DBPath:      o.dbPath,
		NTPServer:   o.ntpServer,
	}, clk.Now)
	tracker.SetTimeSynced(clk.Synced())
	tracker.Update(dose.DisplayState{Mode: dose.ModeOff}, timer.LastDose(), timer.Interval(), false, timer.Counts())

	if publisher != nil {
		snap := tracker.Snapshot()
		startup := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startup); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	// HTTP config server
	intervals := make(chan time.Duration, 1)
	if o.httpAddr != "" {
		srv := web.New(o.httpAddr, tracker, intervals)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http config server listening on %s", o.httpAddr)
	}

	log.Printf("started: poll=%v hold=%v interval=%v ring=%d lastpill=%v synced=%v",
		o.poll, o.hold, o.interval, o.ringSize, lastDose.UTC().Format(time.RFC3339), clk.Synced())

	ticker := time.NewTicker(o.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(loopDeps{
		events:    events,
		button:    reader,
		timer:     timer,
		renderer:  renderer,
		store:     st,
		publisher: publisher,
		mqtt:      mqttStatus,
		tracker:   tracker,
		intervals: intervals,
		hold:      o.hold,
		heartbeat: o.heartbeat,
	}, clk.Now, ticker.C, sigCh)
}

// loopDeps carries the poll loop's collaborators so tests can substitute
// fakes for every one of them.
type loopDeps struct {
	events    *input.Events
	button    input.Reader
	timer     *dose.Timer
	renderer  *display.Renderer
	store     store.Store
	publisher mqtt.Publisher
	mqtt      mqtt.ConnectionStatus
	tracker   *status.Tracker
	intervals <-chan time.Duration
	hold      time.Duration
	heartbeat time.Duration
}

// runLoop is the single thread of control: every tick it folds the edge
// flags into the timer, derives the display state and renders it. The only
// other writers are the edge handlers (atomic flags) and the web handler
// (the intervals channel, drained here between ticks).
func runLoop(d loopDeps, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			if d.publisher != nil {
				event := mqtt.SystemEvent{
					Timestamp: now(),
					Event:     "SHUTDOWN",
					Reason:    signalName,
					Retained:  true,
				}
				if d.tracker != nil {
					if d.mqtt != nil {
						d.tracker.SetMQTTConnected(d.mqtt.IsConnected())
					}
					snap := d.tracker.Snapshot()
					event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
				}
				if err := d.publisher.PublishSystem(event); err != nil {
					log.Printf("failed to publish shutdown event: %v", err)
				} else {
					log.Printf("published shutdown event")
				}
			}
			return nil

		case <-tick:
			t := now()

			// Apply a pending interval change between ticks.
			select {
			case iv := <-d.intervals:
				if ev, err := d.timer.SetInterval(iv, t); err != nil {
					log.Printf("interval change rejected: %v", err)
				} else {
					log.Printf("interval changed to %v (segment %v)", iv, d.timer.Segment())
					publish(d.publisher, ev)
				}
			default:
			}

			if d.events.TakeTilt() {
				d.timer.Activity(t)
			}

			// Hold detection: press still active, pin still high, and
			// the threshold elapsed. Clearing the press immediately
			// guarantees one confirmation per press-release cycle.
			if since, ok := d.events.PressedSince(); ok && t.Sub(since) >= d.hold {
				pressed, err := d.button.ButtonPressed()
				if err != nil {
					log.Printf("button read error: %v", err)
				} else if pressed {
					d.events.ClearPress()
					ev := d.timer.ConfirmDose(t)
					if err := d.store.SetLastDose(t); err != nil {
						log.Printf("persist %s: %v", store.KeyLastPill, err)
					}
					log.Printf("dose confirmed at %v", t.UTC().Format(time.RFC3339))
					publish(d.publisher, ev)
				}
			}

			st, events := d.timer.Tick(t)
			for _, ev := range events {
				log.Printf("event: %s", ev.Type)
				publish(d.publisher, ev)
			}

			// Animations run to completion here; styles are short enough
			// that the next tick is never far behind.
			if err := d.renderer.Render(st); err != nil {
				log.Printf("render error: %v", err)
			}

			if d.tracker != nil {
				d.tracker.Update(st, d.timer.LastDose(), d.timer.Interval(), d.timer.Awake(t), d.timer.Counts())
				if d.mqtt != nil {
					d.tracker.SetMQTTConnected(d.mqtt.IsConnected())
				}
			}

			if hb := d.timer.CheckHeartbeat(t, d.heartbeat); hb != nil && d.publisher != nil {
				log.Printf("heartbeat: uptime=%v doses=%d tilts=%d",
					hb.Uptime, hb.Counts.Doses, hb.Counts.Tilts)
				hbEvent := mqtt.SystemEvent{
					Timestamp: hb.Timestamp,
					Event:     "HEARTBEAT",
				}
				if d.tracker != nil {
					snap := d.tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := d.publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

func publish(p mqtt.Publisher, ev dose.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ev); err != nil {
		log.Printf("publish error: %v", err)
	}
}

func pressedString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}
