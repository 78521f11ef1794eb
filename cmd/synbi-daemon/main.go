package main

import (
	"context"
	"net/http"
	"os"
	"sync"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	"synbi/internal/assistant"
	"synbi/internal/audio"
	"synbi/internal/bridge"
	"synbi/internal/camera"
	"synbi/internal/chat"
	"synbi/internal/desktop"
	"synbi/internal/fileops"
	"synbi/internal/gesture"
	"synbi/internal/ipc"
	"synbi/internal/netcheck"
	"synbi/internal/procs"
	"synbi/internal/proxy"
	"synbi/internal/spotify"
	"synbi/internal/sysinfo"
	"synbi/internal/tasks"
	"synbi/internal/tts"
	"synbi/internal/voice"
	"synbi/internal/weather"
	"synbi/internal/whatsapp"
	"synbi/internal/wiki"
	"synbi/pkg/stt"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

// daemon owns the active session. One session runs at a time; wake starts
// it, sleep or the session's own exit stops it.
type daemon struct {
	mu      sync.Mutex
	cancel  context.CancelFunc
	session *assistant.Session

	newSession func() *assistant.Session
}

func (d *daemon) wake() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.session = d.newSession()

	go func(s *assistant.Session) {
		if err := s.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("Session ended with error", "err", err)
		}
		d.mu.Lock()
		if d.session == s {
			d.cancel = nil
			d.session = nil
		}
		d.mu.Unlock()
	}(d.session)

	return true
}

func (d *daemon) sleep() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel == nil {
		return false
	}
	d.cancel()
	d.cancel = nil
	d.session = nil
	return true
}

func (d *daemon) status() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session == nil {
		return "idle"
	}
	return d.session.State().String()
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	proxyAddr := cli.StringP("proxy", "p", "", "Socks proxy address for outbound APIs")
	hubURL := cli.StringP("hub", "u", "", "Websocket hub URL (empty disables the bridge)")
	modelPath := cli.StringP("model", "m", "third_party/whisper.cpp/models/ggml-base.en.bin", "Whisper model path")
	tasksPath := cli.StringP("tasks", "t", "", "Tasks file path")
	earcon := cli.String("earcon", "beep.mp3", "Listening earcon path")
	strictStore := cli.Bool("strict-store", false, "Fail on corrupt tasks file instead of resetting")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	log.Info("Booting up")

	godotenv.Load(*envFile)

	httpClient, err := proxy.NewSocksClient(*proxyAddr)
	if err != nil {
		log.Error("Failed to dial socks proxy", "proxy", *proxyAddr, "err", err)
		os.Exit(1)
	}

	path := *tasksPath
	if path == "" {
		home, _ := os.UserHomeDir()
		path = home + "/.synbi/tasks.json"
	}
	policy := tasks.ResetToEmpty
	if *strictStore {
		policy = tasks.Fail
	}
	store, err := tasks.Open(path, policy)
	if err != nil {
		log.Error("Failed to open task store", "path", path, "err", err)
		os.Exit(1)
	}

	log.Debug("Loaded task store", "path", path)

	rec := audio.NewRecorder()
	if err := rec.Init(); err != nil {
		log.Error("Failed to init audio", "err", err)
		os.Exit(1)
	}
	defer rec.Close()

	whisper, err := stt.NewTranscriber(*modelPath)
	if err != nil {
		log.Error("Failed to init whisper", "model", *modelPath, "err", err)
		os.Exit(1)
	}
	defer whisper.Close()

	log.Debug("Loaded whisper", "model", *modelPath)

	ducker := audio.NewDucker([]string{"synbi"}, 20)
	speaker := tts.NewSpeaker(ducker)
	source := voice.New(rec, whisper, *earcon, "en")

	act := buildActuators(httpClient, speaker)

	d := &daemon{
		newSession: func() *assistant.Session {
			return assistant.NewSession(source, speaker, store, act)
		},
	}

	if *hubURL != "" {
		go runBridge(*hubURL, whisper, store, act)
	}

	err = ipc.StartServer(func(msg ipc.ControlMessage) ipc.Reply {
		switch msg.Cmd {
		case "wake":
			if d.wake() {
				return ipc.Reply{OK: true, Detail: "listening"}
			}
			return ipc.Reply{OK: true, Detail: "already awake"}
		case "sleep":
			if d.sleep() {
				return ipc.Reply{OK: true, Detail: "sleeping"}
			}
			return ipc.Reply{OK: true, Detail: "already asleep"}
		case "trigger":
			s := assistant.NewSession(source, speaker, store, act)
			if msg.Arg != "" {
				s.HandleUtterance(context.Background(), msg.Arg)
			} else {
				handleTrigger(s, source)
			}
			return ipc.Reply{OK: true}
		case "status":
			return ipc.Reply{OK: true, Detail: d.status()}
		default:
			log.Warn("Unknown command", "cmd", msg.Cmd)
			return ipc.Reply{OK: false, Detail: "unknown command"}
		}
	})
	if err != nil {
		log.Error("Failed ipc server", "err", err)
		os.Exit(1)
	}

	log.Info("Boot up - successful")

	select {}
}

// handleTrigger captures and handles exactly one spoken utterance.
func handleTrigger(s *assistant.Session, source *voice.Source) {
	ctx := context.Background()

	text, err := source.Capture(ctx)
	if err != nil || text == "" {
		log.Info("Nothing captured on trigger", "err", err)
		return
	}

	log.Info("Triggered", "utterance", text)
	s.HandleUtterance(ctx, text)
}

func runBridge(hubURL string, whisper *stt.Transcriber, store *tasks.Store, act assistant.Actuators) {
	b, err := bridge.Dial(hubURL, "synbi", whisper)
	if err != nil {
		log.Error("Failed to connect to hub", "url", hubURL, "err", err)
		return
	}
	defer b.Close()

	ctx := context.Background()
	go func() {
		if err := b.Run(ctx); err != nil {
			log.Error("Hub connection lost", "err", err)
		}
	}()

	s := assistant.NewSession(b, b, store, act)
	for {
		if err := s.Run(ctx); err != nil {
			return
		}
		if s.State() == assistant.StateStopped {
			return
		}
		// remote side said sleep; stay parked until an explicit wake
		// phrase comes over the hub
		if !assistant.WaitForWake(ctx, b) {
			return
		}
	}
}

// buildActuators wires every external capability. API-backed ones come up
// nil when their key is missing, which disables just those commands.
func buildActuators(httpClient *http.Client, speaker *tts.Speaker) assistant.Actuators {
	desk := desktop.New()

	act := assistant.Actuators{
		Files:    fileops.New(""),
		Procs:    procs.New(),
		Desktop:  desk,
		Camera:   camera.New(""),
		Speed:    netcheck.New(),
		System:   sysinfo.New(),
		WhatsApp: whatsapp.New(whatsapp.NewX11Driver()),
		Wiki:     wiki.New(httpClient),
	}

	feedback := assistant.NewThrottledSink(speaker, 0)
	act.Gesture = gesture.NewWorker(func() (gesture.Recognizer, error) {
		return gesture.OpenCommand("synbi-gesture")
	}, desk, feedback)

	if key := os.Getenv("OPENWEATHER_API_KEY"); key != "" {
		act.Weather = weather.New(key, httpClient)
	} else {
		log.Warn("OPENWEATHER_API_KEY not set, weather disabled")
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		act.Chat = chat.New(key, os.Getenv("OPENAI_MODEL"), httpClient)
	} else {
		log.Warn("OPENAI_API_KEY not set, questions disabled")
	}

	id, secret := os.Getenv("SPOTIFY_CLIENT_ID"), os.Getenv("SPOTIFY_CLIENT_SECRET")
	if id != "" && secret != "" {
		act.Spotify = spotify.New(context.Background(), spotify.Credentials{
			ClientID:     id,
			ClientSecret: secret,
			RefreshToken: os.Getenv("SPOTIFY_REFRESH_TOKEN"),
		})
	} else {
		log.Warn("Spotify credentials not set, Spotify disabled")
	}

	return act
}
