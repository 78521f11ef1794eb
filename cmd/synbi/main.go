// Console mode: the same assistant over stdin and stdout, for use without
// a microphone and for trying out commands.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	"synbi/internal/assistant"
	"synbi/internal/camera"
	"synbi/internal/chat"
	"synbi/internal/desktop"
	"synbi/internal/fileops"
	"synbi/internal/netcheck"
	"synbi/internal/procs"
	"synbi/internal/proxy"
	"synbi/internal/sysinfo"
	"synbi/internal/tasks"
	"synbi/internal/weather"
	"synbi/internal/whatsapp"
	"synbi/internal/wiki"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

type stdinSource struct {
	scanner *bufio.Scanner
}

func (s *stdinSource) Capture(context.Context) (string, error) {
	fmt.Print("> ")
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil && err != io.EOF {
			return "", err
		}
		return "", assistant.ErrSourceClosed
	}
	return s.scanner.Text(), nil
}

type stdoutSink struct{}

func (stdoutSink) Say(text string) error {
	fmt.Println(text)
	return nil
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	logLevel := cli.StringP("log", "l", "warn", "Log level")
	proxyAddr := cli.StringP("proxy", "p", "", "Socks proxy address for outbound APIs")
	tasksPath := cli.StringP("tasks", "t", "", "Tasks file path")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

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
	store, err := tasks.Open(path, tasks.ResetToEmpty)
	if err != nil {
		log.Error("Failed to open task store", "path", path, "err", err)
		os.Exit(1)
	}

	act := assistant.Actuators{
		Files:    fileops.New(""),
		Procs:    procs.New(),
		Desktop:  desktop.New(),
		Camera:   camera.New(""),
		Speed:    netcheck.New(),
		System:   sysinfo.New(),
		WhatsApp: whatsapp.New(whatsapp.NewX11Driver()),
		Wiki:     wiki.New(httpClient),
	}
	if key := os.Getenv("OPENWEATHER_API_KEY"); key != "" {
		act.Weather = weather.New(key, httpClient)
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		act.Chat = chat.New(key, os.Getenv("OPENAI_MODEL"), httpClient)
	}

	source := &stdinSource{scanner: bufio.NewScanner(os.Stdin)}
	session := assistant.NewSession(source, stdoutSink{}, store, act)

	if err := session.Run(context.Background()); err != nil {
		log.Error("Session failed", "err", err)
		os.Exit(1)
	}
}
