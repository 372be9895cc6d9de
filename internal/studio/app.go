package studio

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"audioverse/internal/audio"
	"audioverse/internal/cli/scheme/colours"
	"audioverse/internal/config"
	"audioverse/internal/player"
	"audioverse/internal/script"
	"audioverse/internal/speech"
	"audioverse/internal/storage"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// App backs the command line: one session, one player, one root context
type App struct {
	cfg     config.Config
	Session *Session
	Player  *player.Controller
	synth   speech.Synthesizer
	ctx     context.Context
	Cancel  context.CancelFunc
}

func NewApp(cfg config.Config) (*App, error) {
	synth, err := speech.NewSynthesizer(cfg.Speech)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech engine: %w", err)
	}

	ctl := player.NewController(cfg.Player.Volume)
	session := NewSession(
		script.NewRequester(cfg.Script),
		synth,
		ctl,
		storage.NewFileStore(cfg.Output.Dir),
		cfg.Speech.MaxChars,
	)
	session.SetCredential(speech.DefaultCredential(synth, cfg.Speech))

	if cfg.Speech.Voice != "" {
		if _, err := session.SelectVoice(cfg.Speech.Voice); err != nil {
			logrus.WithError(err).WithField("voice", cfg.Speech.Voice).Warn("Configured voice not in catalog")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		cfg:     cfg,
		Session: session,
		Player:  ctl,
		synth:   synth,
		ctx:     ctx,
		Cancel:  cancel,
	}, nil
}

func (a *App) Close() {
	a.Cancel()
	if err := a.Session.Close(); err != nil {
		logrus.WithError(err).Debug("Failed to close session")
	}
}

func (a *App) ShowWelcome(cmd *cobra.Command, args []string) {
	fmt.Println()
	colours.Title.Println("🎙️ Welcome to AudioVerse! 🎙️")
	fmt.Println()
	colours.Info.Println("📚 Available commands:")
	fmt.Println("  • audioverse script <topic>  - Write a podcast script")
	fmt.Println("  • audioverse speak <topic>   - Write and voice a podcast")
	fmt.Println("  • audioverse voices          - List voices")
	fmt.Println("  • audioverse play <file>     - Play a saved episode")
	fmt.Println("  • audioverse studio          - Interactive studio")
	fmt.Println("  • audioverse settings        - Show current settings")
	fmt.Println()
	colours.Prompt.Println("✨ What shall we talk about today? ✨")
}

// GenerateScript prints a script for the topic in args
func (a *App) GenerateScript(cmd *cobra.Command, args []string) {
	save, _ := cmd.Flags().GetBool("save")
	out, _ := cmd.Flags().GetString("out")

	colours.Info.Println("✍️  Generating script...")
	sc, err := a.Session.SubmitTopic(a.ctx, strings.Join(args, " "))
	if err != nil {
		colours.Error.Printf("❌ %v\n", err)
		return
	}

	fmt.Println()
	colours.Title.Printf("📄 %s\n", sc.Title)
	fmt.Println()
	fmt.Println(sc.Content)

	if save || out != "" {
		path, err := a.Session.SaveScript(out)
		if err != nil {
			colours.Error.Printf("❌ Failed to save script: %v\n", err)
			return
		}
		colours.Success.Printf("💾 Script saved to %s\n", path)
	}
}

// Speak runs the whole pipeline: script, audio, download and optional playback
func (a *App) Speak(cmd *cobra.Command, args []string) {
	voice, _ := cmd.Flags().GetString("voice")
	key, _ := cmd.Flags().GetString("key")
	out, _ := cmd.Flags().GetString("out")
	play, _ := cmd.Flags().GetBool("play")

	if key != "" {
		a.Session.SetCredential(key)
	}
	if voice != "" {
		if _, err := a.Session.SelectVoice(voice); err != nil {
			colours.Error.Printf("❌ %v\n", err)
			return
		}
	} else if _, ok := a.Session.Voice(); !ok {
		a.Session.SelectVoice("1")
	}

	colours.Info.Println("✍️  Generating script...")
	sc, err := a.Session.SubmitTopic(a.ctx, strings.Join(args, " "))
	if err != nil {
		colours.Error.Printf("❌ %v\n", err)
		return
	}
	colours.Title.Printf("📄 %s\n", sc.Title)

	v, _ := a.Session.Voice()
	fmt.Print("🎧 Generating audio with ")
	colours.Voice.Printf("%s", v.Name)
	fmt.Println("...")

	if _, err := a.Session.GenerateAudio(a.ctx); err != nil {
		colours.Error.Printf("❌ Error generating audio: %v\n", err)
		return
	}

	for _, save := range []func(string) (string, error){a.Session.SaveScript, a.Session.SaveAudio} {
		path, err := save(out)
		if err != nil {
			colours.Error.Printf("❌ Failed to save: %v\n", err)
			return
		}
		colours.Success.Printf("💾 Saved %s\n", path)
	}

	if play {
		a.playLoaded()
	}
}

func (a *App) ListVoices(cmd *cobra.Command, args []string) {
	fmt.Println()
	colours.Title.Printf("🎤 Voices for %s\n", a.synth.Name())
	fmt.Println()

	for i, v := range a.Session.Voices() {
		fmt.Printf("  %d. ", i+1)
		colours.Voice.Printf("%s", v.Name)
		colours.Info.Printf("  ID: %s\n", v.ID)
	}

	fmt.Println()
	engines := make([]string, 0)
	for _, e := range speech.GetAvailableEngines() {
		engines = append(engines, e.String())
	}
	colours.Info.Printf("💡 Engines available here: %s\n", strings.Join(engines, ", "))
}

// PlayFile plays a previously saved mp3 or wav file
func (a *App) PlayFile(cmd *cobra.Command, args []string) {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		colours.Error.Printf("❌ %v\n", err)
		return
	}

	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if err := a.Player.Open(audio.NewResource(title, format, data)); err != nil {
		colours.Error.Printf("❌ %v\n", err)
		return
	}
	colours.Title.Printf("📻 %s\n", strings.ReplaceAll(title, "_", " "))
	a.playLoaded()
}

func (a *App) RunStudio(cmd *cobra.Command, args []string) {
	if err := NewPrompt(a.Session, os.Stdin, os.Stdout).Run(a.ctx); err != nil {
		colours.Error.Printf("❌ %v\n", err)
	}
}

func (a *App) ConfigureSettings(cmd *cobra.Command, args []string) {
	fmt.Println()
	colours.Title.Println("⚙️ Settings ⚙️")
	fmt.Println()

	if file := viper.ConfigFileUsed(); file != "" {
		colours.Info.Printf("📁 Config file: %s\n", file)
	} else {
		colours.Info.Println("📁 No config file, using defaults and AUDIOVERSE_* environment")
	}
	fmt.Println()

	colours.Prompt.Println("✍️  Script:")
	fmt.Printf("  • Endpoint: %s\n", a.cfg.Script.Endpoint)
	fmt.Printf("  • Model: %s\n", a.cfg.Script.Model)
	fmt.Printf("  • API key: %s\n", keyState(a.cfg.Script.APIKey))
	fmt.Println()

	colours.Prompt.Println("🎤 Speech:")
	fmt.Printf("  • Engine: %s\n", a.synth.Name())
	if a.Session.HasCredential() {
		fmt.Println("  • API key: set")
	} else {
		fmt.Println("  • API key: not set")
	}
	if v, ok := a.Session.Voice(); ok {
		fmt.Printf("  • Voice: %s\n", v.Name)
	} else {
		fmt.Println("  • Voice: not selected")
	}
	fmt.Printf("  • Max characters: %d\n", a.cfg.Speech.MaxChars)
	fmt.Println()

	colours.Prompt.Println("🔊 Player:")
	fmt.Printf("  • Volume: %d%%\n", a.cfg.Player.Volume)
	fmt.Printf("  • Output dir: %s\n", a.cfg.Output.Dir)
}

// playLoaded starts the loaded audio and follows it until it ends, the
// user stops it or the context is cancelled
func (a *App) playLoaded() {
	if err := a.Player.Play(); err != nil {
		colours.Error.Printf("❌ %v\n", err)
		return
	}
	fmt.Println("💡 Enter 'p' to pause/resume, 's' to stop")

	done := make(chan struct{})
	defer close(done)
	controls := readControls(done)

	lastSecond := -1
	for {
		select {
		case <-a.ctx.Done():
			return

		case st := <-a.Player.Updates():
			if st.State == player.StateEnded {
				fmt.Println()
				colours.Success.Println("✅ Episode finished!")
				return
			}
			if sec := int(st.Elapsed.Seconds()); sec != lastSecond {
				lastSecond = sec
				fmt.Printf("\r🔊 %s / %s  ", player.FormatTime(st.Elapsed), player.FormatTime(st.Duration))
			}

		case in, ok := <-controls:
			if !ok {
				controls = nil
				continue
			}
			switch in {
			case "p", "pause":
				if err := a.Player.Toggle(); err != nil {
					colours.Error.Printf("\n❌ %v\n", err)
				}
				if a.Player.State() == player.StatePaused {
					colours.Warning.Println("⏸️  Paused")
				} else {
					colours.Success.Println("▶️  Resumed")
				}
			case "s", "stop":
				a.Player.Pause()
				colours.Warning.Println("⏹️  Stopped")
				return
			}
		}
	}
}

func readControls(done <-chan struct{}) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		reader := bufio.NewReader(os.Stdin)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			select {
			case out <- strings.TrimSpace(strings.ToLower(line)):
			case <-done:
				return
			}
		}
	}()
	return out
}

func keyState(key string) string {
	if strings.TrimSpace(key) == "" {
		return "not set"
	}
	return "set"
}
